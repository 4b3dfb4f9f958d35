package router

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/api/handlers"
	"github.com/denisAlshanov/vidgrab/internal/api/middleware"
	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// Router maps inbound messages to handlers: commands by name, everything else
// to the text handler.
type Router struct {
	commands    map[string]telegram.HandlerFunc
	unknown     telegram.HandlerFunc
	text        telegram.HandlerFunc
	onError     telegram.ErrorHandlerFunc
	middlewares []telegram.Middleware
}

func New() *Router {
	return &Router{
		commands: make(map[string]telegram.HandlerFunc),
	}
}

func NewRouter(cfg *config.Config, messenger telegram.Messenger, commandHandler *handlers.CommandHandler, mediaHandler *handlers.MediaHandler, errorHandler *handlers.ErrorHandler) *Router {
	r := New()

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimit(&cfg.API, messenger))

	// Commands
	r.OnCommand("start", commandHandler.Start)
	r.OnCommand("help", commandHandler.Help)
	r.OnUnknownCommand(commandHandler.Unknown)

	// Links
	r.OnText(mediaHandler.HandleLink)

	r.OnError(errorHandler.Handle)

	return r
}

// Use appends middleware. Middleware registered first runs outermost.
func (r *Router) Use(mw ...telegram.Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Router) OnCommand(name string, h telegram.HandlerFunc) {
	r.commands[strings.ToLower(name)] = h
}

func (r *Router) OnUnknownCommand(h telegram.HandlerFunc) {
	r.unknown = h
}

func (r *Router) OnText(h telegram.HandlerFunc) {
	r.text = h
}

func (r *Router) OnError(h telegram.ErrorHandlerFunc) {
	r.onError = h
}

// HandleMessage runs msg through the middleware chain and into its handler.
func (r *Router) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h := r.route
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	h(ctx, msg)
}

// HandleError forwards failures that escaped a handler to the error handler.
func (r *Router) HandleError(ctx context.Context, msg *tgbotapi.Message, err error) {
	if r.onError == nil {
		utils.LogError(ctx, "Unhandled error", err)
		return
	}
	r.onError(ctx, msg, err)
}

func (r *Router) route(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		if h, ok := r.commands[strings.ToLower(msg.Command())]; ok {
			h(ctx, msg)
			return
		}
		if r.unknown != nil {
			r.unknown(ctx, msg)
		}
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		utils.LogDebug(ctx, "Ignoring message without text")
		return
	}
	if r.text != nil {
		r.text(ctx, msg)
	}
}
