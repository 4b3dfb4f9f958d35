package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const genericErrorText = "❌ An error occurred. Please try again."

// ErrorHandler is the last stop for failures no other handler dealt with.
type ErrorHandler struct {
	messenger telegram.Messenger
}

func NewErrorHandler(messenger telegram.Messenger) *ErrorHandler {
	return &ErrorHandler{
		messenger: messenger,
	}
}

func (h *ErrorHandler) Handle(ctx context.Context, msg *tgbotapi.Message, err error) {
	fields := utils.Fields{}
	if msg != nil && msg.Chat != nil {
		fields["chat_id"] = msg.Chat.ID
	}
	utils.LogError(ctx, "Unhandled error while processing update", err, fields)

	if msg == nil || msg.Chat == nil {
		return
	}

	req := telegram.NewIncomingRequest(ctx, msg)
	if replyErr := h.messenger.Reply(ctx, req, genericErrorText, ""); replyErr != nil {
		utils.LogError(ctx, "Failed to send error reply", replyErr, fields)
	}
}
