// Package service declares ports to external collaborators.
package service

import "context"

// Recipient addresses a private chat, group or channel.
type Recipient struct {
	ChatID  int64
	Channel string // Channel username such as "@orders"; used when ChatID is zero.
}

// ChatRecipient addresses a chat by id.
func ChatRecipient(chatID int64) Recipient {
	return Recipient{ChatID: chatID}
}

// IsZero reports whether the recipient has no address.
func (r Recipient) IsZero() bool {
	return r.ChatID == 0 && r.Channel == ""
}

// Button is an inline keyboard button carrying an encoded callback payload.
type Button struct {
	Text string
	Data string
}

// ReplyButton is a reply keyboard button.
type ReplyButton struct {
	Text            string
	RequestLocation bool
	RequestContact  bool
}

// Markup is the keyboard attached to an outgoing message.
type Markup struct {
	Inline      [][]Button
	Reply       [][]ReplyButton
	RemoveReply bool
}

// Message is an outgoing text or photo.
type Message struct {
	Text   string
	Photo  string // File id or URL; when set Text is the caption.
	HTML   bool
	Markup *Markup
}

// Messenger is the outbound side of the messaging gateway.
type Messenger interface {
	// Send delivers a text or photo message and returns its message id.
	Send(ctx context.Context, to Recipient, msg Message) (int, error)

	// Edit replaces the text and inline keyboard of a sent message.
	Edit(ctx context.Context, to Recipient, messageID int, msg Message) error

	// AnswerCallback acknowledges a button press, optionally as an alert.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error

	// SendLocation sends a map pin.
	SendLocation(ctx context.Context, to Recipient, lat, lon float64) error
}
