package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// ErrShutdownTimeout is returned when in-flight messages don't finish in time.
var ErrShutdownTimeout = errors.New("dispatcher shutdown timed out")

// Dispatcher runs one task per inbound message, at most maxConcurrent at a
// time. Tasks share nothing but the handler.
type Dispatcher struct {
	handler MessageHandler
	sem     *semaphore.Weighted

	wg          sync.WaitGroup
	taskCtx     context.Context
	cancelTasks context.CancelFunc
}

func NewDispatcher(handler MessageHandler, maxConcurrent int) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	taskCtx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		handler:     handler,
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		taskCtx:     taskCtx,
		cancelTasks: cancel,
	}
}

// Serve consumes updates until ctx is cancelled or the channel closes.
// In-flight tasks keep running; call Shutdown to wait for them.
func (d *Dispatcher) Serve(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	utils.LogInfo(ctx, "Dispatcher started")

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo(ctx, "Dispatcher stopping")
			return
		case update, ok := <-updates:
			if !ok {
				utils.LogInfo(ctx, "Update channel closed")
				return
			}
			if update.Message == nil {
				continue
			}

			// Back-pressure: wait for a free slot before taking the next update
			if err := d.sem.Acquire(ctx, 1); err != nil {
				return
			}
			d.wg.Add(1)
			go d.run(update.Message)
		}
	}
}

func (d *Dispatcher) run(msg *tgbotapi.Message) {
	defer d.wg.Done()
	defer d.sem.Release(1)

	ctx := d.taskCtx
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while handling message: %v", r)
			utils.LogError(ctx, "Recovered from panic", err, utils.Fields{
				"stack": string(debug.Stack()),
			})
			d.handler.HandleError(ctx, msg, err)
		}
	}()

	d.handler.HandleMessage(ctx, msg)
}

// Shutdown waits up to timeout for in-flight tasks, then cancels them.
func (d *Dispatcher) Shutdown(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelTasks()
		return nil
	case <-time.After(timeout):
		d.cancelTasks()
		return ErrShutdownTimeout
	}
}
