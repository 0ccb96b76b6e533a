// {{RIPER-5-Enhanced:
//   Action: "Added"
//   Task_ID: "Asynchronous Notification Dispatch"
//   Timestamp: "2026-10-18T12:20:00Z"
//   Authoring_Role: "LD"
//   Analysis_Performed: "Moved notification delivery off the request path onto one background worker"
//   Principle_Applied: "Aether-Engineering-SOLID-S, High Cohesion"
//   Quality_Check: "Publish never blocks, Stop drains what is already queued"
// }}

package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/database"
	log "github.com/sirupsen/logrus"
)

// DefaultQueueSize is the number of events buffered ahead of the worker
const DefaultQueueSize = 64

// EventType names a record lifecycle change
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

// Event is one record lifecycle change
type Event struct {
	Type   EventType
	Record *database.StringRecord
	At     time.Time
}

// Dispatcher delivers events to a Notifier on a background goroutine
type Dispatcher struct {
	notifier Notifier
	events   chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a queue of the given size
func NewDispatcher(n Notifier, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		notifier: n,
		events:   make(chan Event, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the delivery loop
func (d *Dispatcher) Start() {
	log.Info("启动通知分发...")

	d.wg.Add(1)
	go d.loop()
}

// Stop stops the delivery loop after flushing queued events
func (d *Dispatcher) Stop() {
	log.Info("停止通知分发...")
	d.cancel()
	d.wg.Wait()
	log.Info("通知分发已停止")
}

// Publish queues an event. A full queue drops the event.
func (d *Dispatcher) Publish(event Event) {
	select {
	case d.events <- event:
	default:
		log.WithField("event", event.Type).Warn("通知队列已满，丢弃事件")
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			d.drain()
			return
		case event := <-d.events:
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	var err error
	switch event.Type {
	case EventCreated:
		err = d.notifier.SendCreated(event.Record)
	case EventDeleted:
		err = d.notifier.SendDeleted(event.Record, event.At)
	default:
		log.Warnf("未知的事件类型: %s", event.Type)
		return
	}
	if err != nil {
		log.WithField("event", event.Type).Warnf("发送通知失败: %v", err)
	}
}
