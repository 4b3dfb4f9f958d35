package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// NewIncomingRequest snapshots msg into the transport-neutral request model.
func NewIncomingRequest(ctx context.Context, msg *tgbotapi.Message) *models.IncomingRequest {
	req := &models.IncomingRequest{
		ID:         utils.GetRequestID(ctx),
		Text:       strings.TrimSpace(msg.Text),
		ReceivedAt: time.Now(),
		Sender: models.Sender{
			MessageID: msg.MessageID,
		},
	}

	if req.ID == "" {
		req.ID = utils.GenerateRequestID()
	}
	if msg.Chat != nil {
		req.Sender.ChatID = msg.Chat.ID
	}
	if msg.From != nil {
		req.Sender.UserID = msg.From.ID
		req.Sender.Username = msg.From.UserName
	}
	if msg.Date != 0 {
		req.ReceivedAt = msg.Time()
	}

	return req
}
