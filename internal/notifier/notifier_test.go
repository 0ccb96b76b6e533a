package notifier

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/imhuimie/string-analyzer-go/internal/config"
	"github.com/imhuimie/string-analyzer-go/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		noticeType string
		want       interface{}
	}{
		{"telegram", &TelegramNotifier{}},
		{"wechat", &WeChatNotifier{}},
		{"custom", &CustomNotifier{}},
	}
	for _, tt := range tests {
		n, err := NewNotifier(&config.Config{NoticeType: tt.noticeType})
		require.NoError(t, err)
		assert.IsType(t, tt.want, n)
	}

	for _, off := range []string{"", "none"} {
		n, err := NewNotifier(&config.Config{NoticeType: off})
		require.NoError(t, err)
		assert.Nil(t, n)
	}

	_, err := NewNotifier(&config.Config{NoticeType: "pigeon"})
	assert.Error(t, err)
}

func TestTelegramNotifier_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		assert.Equal(t, "hi there", r.PostForm.Get("text"))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42")
	n.baseURL = srv.URL
	assert.NoError(t, n.Send("hi there"))
}

func TestTelegramNotifier_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", "42")
	n.baseURL = srv.URL
	assert.ErrorContains(t, n.Send("x"), "400")
}

func TestWeChatNotifier_SendCreated(t *testing.T) {
	record := database.NewStringRecord("level", time.Now())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/key.send", r.URL.Path)
		assert.Equal(t, "字符串变更通知", r.URL.Query().Get("title"))
		assert.Contains(t, r.URL.Query().Get("content"), "内容：level")
	}))
	defer srv.Close()

	n := NewWeChatNotifier("key")
	n.baseURL = srv.URL
	assert.NoError(t, n.SendCreated(record))
}

func TestCustomNotifier_EscapesMessage(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query().Get("text")
	}))
	defer srv.Close()

	n := NewCustomNotifier(srv.URL + "/push?text=" + MessagePlaceholder)
	require.NoError(t, n.Send("a&b c\n#d"))
	assert.Equal(t, "a&b c\n#d", <-got)
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (r *recordingNotifier) Send(message string) error { return nil }

func (r *recordingNotifier) SendCreated(record *database.StringRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, record.Value)
	return nil
}

func (r *recordingNotifier) SendDeleted(record *database.StringRecord, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, record.Value)
	return nil
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, 8)
	d.Start()

	d.Publish(Event{Type: EventCreated, Record: database.NewStringRecord("one", time.Now())})
	d.Publish(Event{Type: EventCreated, Record: database.NewStringRecord("two", time.Now())})
	d.Publish(Event{Type: EventDeleted, Record: database.NewStringRecord("one", time.Now()), At: time.Now()})
	d.Stop()

	assert.Equal(t, []string{"one", "two"}, rec.created)
	assert.Equal(t, []string{"one"}, rec.deleted)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	rec := &recordingNotifier{}
	// not started, so nothing consumes the queue
	d := NewDispatcher(rec, 1)

	d.Publish(Event{Type: EventCreated, Record: database.NewStringRecord("kept", time.Now())})
	d.Publish(Event{Type: EventCreated, Record: database.NewStringRecord("dropped", time.Now())})

	d.Start()
	d.Stop()

	assert.Equal(t, []string{"kept"}, rec.created)
}
