package middleware

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

type rateLimiter struct {
	requests    map[int64][]time.Time
	mu          sync.Mutex
	limit       int
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests:    make(map[int64][]time.Time),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// cleanup drops chats with no requests inside the window. Callers hold mu.
func (rl *rateLimiter) cleanup(now time.Time) {
	for key, times := range rl.requests {
		validTimes := rl.recent(times, now)
		if len(validTimes) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = validTimes
		}
	}
	rl.lastCleanup = now
}

func (rl *rateLimiter) recent(times []time.Time, now time.Time) []time.Time {
	validTimes := times[:0]
	for _, t := range times {
		if now.Sub(t) <= rl.window {
			validTimes = append(validTimes, t)
		}
	}
	return validTimes
}

func (rl *rateLimiter) isAllowed(key int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > rl.window {
		rl.cleanup(now)
	}

	// Count requests within window
	validTimes := rl.recent(rl.requests[key], now)

	// Check if limit exceeded
	if len(validTimes) >= rl.limit {
		rl.requests[key] = validTimes
		return false
	}

	// Add new request
	rl.requests[key] = append(validTimes, now)
	return true
}

// RateLimit caps how many messages a chat may send per window. A limit of 0
// disables it.
func RateLimit(cfg *config.APIConfig, messenger telegram.Messenger) telegram.Middleware {
	if cfg.RateLimitRequests <= 0 {
		return func(next telegram.HandlerFunc) telegram.HandlerFunc {
			return next
		}
	}

	limiter := newRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	return func(next telegram.HandlerFunc) telegram.HandlerFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) {
			if msg.Chat == nil {
				next(ctx, msg)
				return
			}

			if !limiter.isAllowed(msg.Chat.ID) {
				appErr := utils.NewRateLimitError()
				utils.LogWarn(ctx, "Rate limit exceeded", utils.Fields{
					"chat_id": msg.Chat.ID,
					"limit":   cfg.RateLimitRequests,
					"window":  cfg.RateLimitWindow.String(),
				})

				req := telegram.NewIncomingRequest(ctx, msg)
				if err := messenger.Reply(ctx, req, appErr.Message, ""); err != nil {
					utils.LogError(ctx, "Failed to send rate limit reply", err)
				}
				return
			}

			next(ctx, msg)
		}
	}
}
