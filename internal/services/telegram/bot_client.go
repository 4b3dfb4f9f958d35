package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// BotClient uses Telegram Bot API (requires bot token)
type BotClient struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
}

func NewBotClient(cfg *config.TelegramConfig) (*BotClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = cfg.Debug

	return &BotClient{
		bot:         bot,
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// Username returns the bot's account name.
func (c *BotClient) Username() string {
	return c.bot.Self.UserName
}

// Updates starts long polling.
func (c *BotClient) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	return c.bot.GetUpdatesChan(u)
}

// StopUpdates stops long polling. Must be called at most once.
func (c *BotClient) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

func (c *BotClient) Reply(ctx context.Context, req *models.IncomingRequest, text string, parseMode string) error {
	msg := tgbotapi.NewMessage(req.Sender.ChatID, text)
	msg.ReplyToMessageID = req.Sender.MessageID
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (c *BotClient) SendStatus(ctx context.Context, req *models.IncomingRequest, text string) (*models.StatusHandle, error) {
	msg := tgbotapi.NewMessage(req.Sender.ChatID, text)
	msg.ReplyToMessageID = req.Sender.MessageID
	msg.DisableWebPagePreview = true

	sent, err := c.bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send status: %w", err)
	}

	return &models.StatusHandle{
		ChatID:    sent.Chat.ID,
		MessageID: sent.MessageID,
	}, nil
}

func (c *BotClient) EditStatus(ctx context.Context, handle *models.StatusHandle, text string) error {
	edit := tgbotapi.NewEditMessageText(handle.ChatID, handle.MessageID, text)
	if _, err := c.bot.Send(edit); err != nil {
		return fmt.Errorf("failed to edit status: %w", err)
	}
	return nil
}

func (c *BotClient) DeleteStatus(ctx context.Context, handle *models.StatusHandle) error {
	// deleteMessage answers with a bare boolean, so Request instead of Send
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(handle.ChatID, handle.MessageID)); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

func (c *BotClient) SendVideo(ctx context.Context, req *models.IncomingRequest, filePath string, caption string) error {
	action := tgbotapi.NewChatAction(req.Sender.ChatID, tgbotapi.ChatUploadVideo)
	if _, err := c.bot.Request(action); err != nil {
		utils.LogDebug(ctx, "Failed to send chat action", utils.Fields{"error": err.Error()})
	}

	video := tgbotapi.NewVideo(req.Sender.ChatID, tgbotapi.FilePath(filePath))
	video.Caption = caption
	video.SupportsStreaming = true
	video.ReplyToMessageID = req.Sender.MessageID

	if _, err := c.bot.Send(video); err != nil {
		return fmt.Errorf("failed to send video: %w", err)
	}
	return nil
}
