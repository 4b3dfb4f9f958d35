package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

// Messenger is the outbound side of the transport as the request pipeline
// sees it.
type Messenger interface {
	Reply(ctx context.Context, req *models.IncomingRequest, text string, parseMode string) error
	SendStatus(ctx context.Context, req *models.IncomingRequest, text string) (*models.StatusHandle, error)
	EditStatus(ctx context.Context, handle *models.StatusHandle, text string) error
	DeleteStatus(ctx context.Context, handle *models.StatusHandle) error
	SendVideo(ctx context.Context, req *models.IncomingRequest, filePath string, caption string) error
}

// HandlerFunc handles one inbound message.
type HandlerFunc func(ctx context.Context, msg *tgbotapi.Message)

// ErrorHandlerFunc receives failures that escaped a HandlerFunc.
type ErrorHandlerFunc func(ctx context.Context, msg *tgbotapi.Message, err error)

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// MessageHandler is what the Dispatcher feeds updates into.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *tgbotapi.Message)
	HandleError(ctx context.Context, msg *tgbotapi.Message, err error)
}
