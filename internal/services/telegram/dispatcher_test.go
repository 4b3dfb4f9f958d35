package telegram

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

type recordingHandler struct {
	mu       sync.Mutex
	handled  []string
	errors   []error
	inFlight int32
	peak     int32
	delay    time.Duration
}

func (h *recordingHandler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	current := atomic.AddInt32(&h.inFlight, 1)
	defer atomic.AddInt32(&h.inFlight, -1)

	for {
		peak := atomic.LoadInt32(&h.peak)
		if current <= peak || atomic.CompareAndSwapInt32(&h.peak, peak, current) {
			break
		}
	}

	if msg.Text == "panic" {
		panic("boom")
	}
	time.Sleep(h.delay)

	h.mu.Lock()
	h.handled = append(h.handled, msg.Text)
	h.mu.Unlock()
}

func (h *recordingHandler) HandleError(ctx context.Context, msg *tgbotapi.Message, err error) {
	h.mu.Lock()
	h.errors = append(h.errors, err)
	h.mu.Unlock()
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			Text:      text,
			Chat:      &tgbotapi.Chat{ID: 42},
		},
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	handler := &recordingHandler{delay: 20 * time.Millisecond}
	d := NewDispatcher(handler, 2)

	updates := make(chan tgbotapi.Update, 10)
	for i := 0; i < 6; i++ {
		updates <- textUpdate("msg")
	}
	// Updates without a message are skipped
	updates <- tgbotapi.Update{UpdateID: 99}
	close(updates)

	d.Serve(context.Background(), updates)
	if err := d.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if len(handler.handled) != 6 {
		t.Errorf("handled %d messages, want 6", len(handler.handled))
	}
	if peak := atomic.LoadInt32(&handler.peak); peak > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", peak)
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	handler := &recordingHandler{}
	d := NewDispatcher(handler, 4)

	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate("panic")
	updates <- textUpdate("fine")
	close(updates)

	d.Serve(context.Background(), updates)
	if err := d.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if len(handler.errors) != 1 || !strings.Contains(handler.errors[0].Error(), "boom") {
		t.Errorf("expected one recovered panic, got %v", handler.errors)
	}
	if len(handler.handled) != 1 || handler.handled[0] != "fine" {
		t.Errorf("other messages should still be handled, got %v", handler.handled)
	}
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	d := NewDispatcher(&recordingHandler{}, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Serve(ctx, make(chan tgbotapi.Update))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestDispatcherShutdownTimeout(t *testing.T) {
	handler := &recordingHandler{delay: 200 * time.Millisecond}
	d := NewDispatcher(handler, 1)

	updates := make(chan tgbotapi.Update, 1)
	updates <- textUpdate("slow")
	close(updates)

	d.Serve(context.Background(), updates)
	if err := d.Shutdown(10 * time.Millisecond); err != ErrShutdownTimeout {
		t.Errorf("Shutdown() error = %v, want ErrShutdownTimeout", err)
	}
}

func TestNewIncomingRequest(t *testing.T) {
	ctx := utils.WithRequestID(context.Background(), "req_test")
	msg := &tgbotapi.Message{
		MessageID: 7,
		Text:      "  https://youtu.be/abc  ",
		Date:      1700000000,
		Chat:      &tgbotapi.Chat{ID: 42},
		From:      &tgbotapi.User{ID: 9, UserName: "alice"},
	}

	req := NewIncomingRequest(ctx, msg)

	if req.ID != "req_test" {
		t.Errorf("ID = %q", req.ID)
	}
	if req.Text != "https://youtu.be/abc" {
		t.Errorf("Text = %q", req.Text)
	}
	if req.Sender.ChatID != 42 || req.Sender.MessageID != 7 || req.Sender.UserID != 9 || req.Sender.Username != "alice" {
		t.Errorf("unexpected sender %+v", req.Sender)
	}
	if req.ReceivedAt.Unix() != 1700000000 {
		t.Errorf("ReceivedAt = %v", req.ReceivedAt)
	}

	if NewIncomingRequest(context.Background(), &tgbotapi.Message{}).ID == "" {
		t.Error("expected a generated request ID")
	}
}
