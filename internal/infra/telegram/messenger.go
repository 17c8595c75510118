// Package telegram implements the messaging gateway over the Telegram Bot API.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"storebot/config"
	"storebot/internal/domain/service"
	"storebot/internal/errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the messenger needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBotAPI authenticates against the Bot API with the configured token.
func NewBotAPI(cfg *config.Config, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Telegram.Token == "" {
		return nil, errors.New("telegram.token is empty")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}
	bot.Debug = cfg.Telegram.Debug

	logger.Info("Authorized on Telegram", slog.String("account", bot.Self.UserName))

	return bot, nil
}

// captionLimit is the Bot API maximum length of a photo caption.
const captionLimit = 1024

// Messenger implements service.Messenger.
type Messenger struct {
	bot BotAPI
}

var _ service.Messenger = (*Messenger)(nil)

// NewMessenger wraps a Bot API client.
func NewMessenger(bot BotAPI) *Messenger {
	return &Messenger{bot: bot}
}

func baseChat(to service.Recipient) tgbotapi.BaseChat {
	if to.ChatID != 0 {
		return tgbotapi.BaseChat{ChatID: to.ChatID}
	}

	return tgbotapi.BaseChat{ChannelUsername: to.Channel}
}

func parseMode(msg service.Message) string {
	if msg.HTML {
		return tgbotapi.ModeHTML
	}

	return ""
}

func fileData(ref string) tgbotapi.RequestFileData {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tgbotapi.FileURL(ref)
	}

	return tgbotapi.FileID(ref)
}

func inlineKeyboard(rows [][]service.Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		keyboard = append(keyboard, buttons)
	}

	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func replyMarkup(m *service.Markup) any {
	switch {
	case m == nil:
		return nil
	case m.RemoveReply:
		return tgbotapi.NewRemoveKeyboard(true)
	case len(m.Inline) > 0:
		return inlineKeyboard(m.Inline)
	case len(m.Reply) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Reply))
		for _, r := range m.Reply {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(r))
			for _, b := range r {
				switch {
				case b.RequestLocation:
					buttons = append(buttons, tgbotapi.NewKeyboardButtonLocation(b.Text))
				case b.RequestContact:
					buttons = append(buttons, tgbotapi.NewKeyboardButtonContact(b.Text))
				default:
					buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
				}
			}
			rows = append(rows, buttons)
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.ResizeKeyboard = true

		return keyboard
	}

	return nil
}

// Send delivers a text, or a photo with msg.Text as caption. A caption over
// the Bot API limit is sent as a bare photo followed by the text, which
// carries the keyboard; the text's message id is returned.
func (m *Messenger) Send(ctx context.Context, to service.Recipient, msg service.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if to.IsZero() {
		return 0, errors.New("telegram: empty recipient")
	}
	if msg.Photo != "" && utf8.RuneCountInString(msg.Text) > captionLimit {
		if _, err := m.Send(ctx, to, service.Message{Photo: msg.Photo}); err != nil {
			return 0, err
		}
		msg.Photo = ""

		return m.Send(ctx, to, msg)
	}

	var chattable tgbotapi.Chattable
	if msg.Photo != "" {
		photo := tgbotapi.PhotoConfig{BaseFile: tgbotapi.BaseFile{BaseChat: baseChat(to), File: fileData(msg.Photo)}}
		photo.Caption = msg.Text
		photo.ParseMode = parseMode(msg)
		photo.ReplyMarkup = replyMarkup(msg.Markup)
		chattable = photo
	} else {
		text := tgbotapi.MessageConfig{BaseChat: baseChat(to), Text: msg.Text, DisableWebPagePreview: true}
		text.ParseMode = parseMode(msg)
		text.ReplyMarkup = replyMarkup(msg.Markup)
		chattable = text
	}

	sent, err := m.bot.Send(chattable)
	if err != nil {
		return 0, errors.Wrap(err, "telegram send")
	}

	return sent.MessageID, nil
}

// Edit replaces the text, or the caption when msg.Photo is set, and the
// inline keyboard of a sent message.
func (m *Messenger) Edit(ctx context.Context, to service.Recipient, messageID int, msg service.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edit := tgbotapi.BaseEdit{
		ChatID:          to.ChatID,
		ChannelUsername: to.Channel,
		MessageID:       messageID,
	}
	if msg.Markup != nil && len(msg.Markup.Inline) > 0 {
		keyboard := inlineKeyboard(msg.Markup.Inline)
		edit.ReplyMarkup = &keyboard
	}

	var chattable tgbotapi.Chattable
	if msg.Photo != "" {
		chattable = tgbotapi.EditMessageCaptionConfig{BaseEdit: edit, Caption: msg.Text, ParseMode: parseMode(msg)}
	} else {
		chattable = tgbotapi.EditMessageTextConfig{BaseEdit: edit, Text: msg.Text, ParseMode: parseMode(msg)}
	}

	if _, err := m.bot.Request(chattable); err != nil {
		return errors.Wrap(err, "telegram edit")
	}

	return nil
}

// AnswerCallback acknowledges a button press.
func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	if _, err := m.bot.Request(answer); err != nil {
		return errors.Wrap(err, "telegram answer callback")
	}

	return nil
}

// SendLocation sends a map pin.
func (m *Messenger) SendLocation(ctx context.Context, to service.Recipient, lat, lon float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	location := tgbotapi.LocationConfig{BaseChat: baseChat(to), Latitude: lat, Longitude: lon}
	if _, err := m.bot.Send(location); err != nil {
		return errors.Wrap(err, "telegram send location")
	}

	return nil
}
