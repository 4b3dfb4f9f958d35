package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// RequestHandler runs one request to a terminal state.
type RequestHandler interface {
	Handle(ctx context.Context, req *models.IncomingRequest) models.RequestState
}

type MediaHandler struct {
	orchestrator RequestHandler
}

func NewMediaHandler(orchestrator RequestHandler) *MediaHandler {
	return &MediaHandler{
		orchestrator: orchestrator,
	}
}

// HandleLink treats any non-command text as a video link.
func (h *MediaHandler) HandleLink(ctx context.Context, msg *tgbotapi.Message) {
	req := telegram.NewIncomingRequest(ctx, msg)

	state := h.orchestrator.Handle(ctx, req)

	utils.LogDebug(ctx, "Request finished", utils.Fields{
		"chat_id": req.Sender.ChatID,
		"state":   string(state),
	})
}
