// {{RIPER-5-Enhanced:
//   Action: "Modified"
//   Task_ID: "Main Application Entry Point"
//   Timestamp: "2026-10-18T13:00:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Moved startup wiring from main into the serve command"
//   Principle_Applied: "Aether-Engineering-SOLID-S, Clean Architecture"
//   Quality_Check: "Graceful shutdown, signal handling, component initialization"
// }}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/imhuimie/string-analyzer-go/internal/nlquery"
	"github.com/imhuimie/string-analyzer-go/internal/notifier"
	"github.com/imhuimie/string-analyzer-go/internal/server"
	"github.com/imhuimie/string-analyzer-go/internal/service"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

// setupLogging applies the configured level, falling back to info
func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("无效的日志级别 %q，使用 info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// loadConfig reads the dotenv file and the config file, in that order
func loadConfig(opts *RootOptions) (*config.Manager, *config.Config, error) {
	// Load .env file first (before reading any environment variables)
	if err := godotenv.Load(opts.EnvFile); err != nil {
		log.Warnf("无法加载 %s 文件: %v (将使用系统环境变量或默认值)", opts.EnvFile, err)
	}

	cfgMgr := config.NewManager(opts.ConfigPath)
	if err := cfgMgr.Load(); err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	cfg := cfgMgr.Get()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return cfgMgr, cfg, nil
}

func runServe(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	setupLogging("info")
	log.Info("启动 String-Analyzer-Go...")

	cfgMgr, cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	log.Infof("使用 %s 数据库: %s", cfg.DBType, cfg.ConnectionString())
	db, err := database.NewDatabase(database.DatabaseType(cfg.DBType), cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	defer db.Disconnect()

	interp, err := nlquery.NewInterpreterFromConfig(cfg)
	if err != nil {
		log.Warnf("创建 AI 解析器失败: %v，AI 回退将被禁用", err)
		interp = nil
	}
	parser := nlquery.NewParser(interp)

	ntf, err := notifier.NewNotifier(cfg)
	if err != nil {
		return fmt.Errorf("创建通知器失败: %w", err)
	}

	var publisher service.Publisher
	if ntf != nil {
		dispatcher := notifier.NewDispatcher(ntf, notifier.DefaultQueueSize)
		dispatcher.Start()
		defer dispatcher.Stop()
		publisher = dispatcher
	}

	svc := service.New(db, parser, publisher)
	srv := server.NewServer(cfgMgr, svc, db, cfg.AccessToken, cfg.Port)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("收到关闭信号，正在优雅关闭...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("服务器关闭错误: %v", err)
	}

	log.Info("应用已关闭")
	return nil
}
