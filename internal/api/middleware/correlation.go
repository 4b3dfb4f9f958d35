package middleware

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// RequestID tags every message with a correlation and request ID and logs its
// start and end.
func RequestID() telegram.Middleware {
	return func(next telegram.HandlerFunc) telegram.HandlerFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) {
			correlationID := utils.GetCorrelationID(ctx)
			if correlationID == "" {
				correlationID = utils.GenerateCorrelationID()
			}
			requestID := utils.GenerateRequestID()

			// Create context with IDs for logging
			ctx = utils.WithCorrelationID(ctx, correlationID)
			ctx = utils.WithRequestID(ctx, requestID)

			fields := utils.Fields{
				"message_id": msg.MessageID,
			}
			if msg.Chat != nil {
				fields["chat_id"] = msg.Chat.ID
			}
			if msg.IsCommand() {
				fields["command"] = msg.Command()
			}

			// Log request
			utils.LogInfo(ctx, "Incoming message", fields)
			start := time.Now()

			next(ctx, msg)

			// Log response
			fields["duration_ms"] = time.Since(start).Milliseconds()
			utils.LogInfo(ctx, "Message handled", fields)
		}
	}
}
