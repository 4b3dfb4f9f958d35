package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const welcomeText = `🤖 *Video Downloader Bot*

Send me a link to a video from:
• YouTube 📺
• TikTok 🎵
• Instagram 📷

I'll download it and send the video back to you!

⚠️ _Note:_ Please respect copyright!`

const helpText = `📖 *How to use the bot:*

1. Copy a video link from:
   - YouTube: share the video and copy the link
   - TikTok: tap "Share" and copy the link
   - Instagram: copy the link of a post with a video

2. Send the link to this bot

3. Wait for the download and receive your video

🔧 _Supported formats:_ MP4, WEBM`

const unknownCommandText = "🤔 Unknown command. Send /help to see how to use the bot."

type CommandHandler struct {
	messenger telegram.Messenger
}

func NewCommandHandler(messenger telegram.Messenger) *CommandHandler {
	return &CommandHandler{
		messenger: messenger,
	}
}

// Start handles /start.
func (h *CommandHandler) Start(ctx context.Context, msg *tgbotapi.Message) {
	h.reply(ctx, msg, welcomeText, tgbotapi.ModeMarkdown)
}

// Help handles /help.
func (h *CommandHandler) Help(ctx context.Context, msg *tgbotapi.Message) {
	h.reply(ctx, msg, helpText, tgbotapi.ModeMarkdown)
}

func (h *CommandHandler) Unknown(ctx context.Context, msg *tgbotapi.Message) {
	utils.LogDebug(ctx, "Unknown command", utils.Fields{"command": msg.Command()})
	h.reply(ctx, msg, unknownCommandText, "")
}

func (h *CommandHandler) reply(ctx context.Context, msg *tgbotapi.Message, text, parseMode string) {
	req := telegram.NewIncomingRequest(ctx, msg)
	if err := h.messenger.Reply(ctx, req, text, parseMode); err != nil {
		utils.LogError(ctx, "Failed to send reply", err, utils.Fields{
			"chat_id": req.Sender.ChatID,
		})
	}
}
