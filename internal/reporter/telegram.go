package reporter

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram posts events to one chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects to the Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramWithEndpoint connects to a Bot API compatible endpoint; the
// endpoint is a format string taking the token and the method.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

var markdownReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// appliedMessage renders a MarkdownV2 notification.
func appliedMessage(url, company string) string {
	if company == "" {
		company = "Unknown company"
	}
	msg := fmt.Sprintf("✅ Applied to *%s*\n", escapeMarkdown(company))
	// inside a link target only ) and \ need escaping
	link := strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(url)
	msg += fmt.Sprintf("🔗 [View Job](%s)", link)
	return msg
}

func (t *Telegram) send(text, parseMode string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	return err
}

func (t *Telegram) Applied(_ context.Context, url, company string) error {
	return t.send(appliedMessage(url, company), tgbotapi.ModeMarkdownV2)
}

func (t *Telegram) Status(_ context.Context, message string) error {
	return t.send("ℹ️ "+message, "")
}

func (t *Telegram) Error(_ context.Context, err error) error {
	return t.send(fmt.Sprintf("❌ Error: %v", err), "")
}
