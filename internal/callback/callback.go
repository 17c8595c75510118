// Package callback encodes inline button actions into Telegram callback data.
//
// A payload is the action tag followed by its arguments, separated by '|'.
// Arguments are percent-escaped so they may contain the separator.
package callback

import (
	"strings"

	"storebot/internal/errors"
)

// MaxLen is the Telegram limit for callback data in bytes.
const MaxLen = 64

const separator = "|"

// Tag identifies a button action.
type Tag string

// Known actions.
const (
	TagMainMenu      Tag = "menu"
	TagProducts      Tag = "list"
	TagProduct       Tag = "med"
	TagOrder         Tag = "order"
	TagMonths        Tag = "months"
	TagMonthsOther   Tag = "months_other"
	TagUploadReceipt Tag = "receipt"
	TagDelivery      Tag = "delivery"
	TagConfirm       Tag = "confirm"
	TagCancel        Tag = "cancel"
	TagBasketAdd     Tag = "add"
	TagBasket        Tag = "basket"
	TagBasketClear   Tag = "basket_clear"
	TagCheckout      Tag = "checkout"

	TagAdminMenu       Tag = "adm"
	TagAdminOrders     Tag = "adm_orders"
	TagAdminOrder      Tag = "adm_order"
	TagAdminStatus     Tag = "adm_status"
	TagAdminNote       Tag = "adm_note"
	TagAdminProducts   Tag = "adm_products"
	TagAdminAdd        Tag = "adm_add"
	TagAdminEdit       Tag = "adm_edit"
	TagAdminField      Tag = "adm_field"
	TagAdminDelete     Tag = "adm_del"
	TagAdminDeleteOK   Tag = "adm_del_ok"
	TagAdminSkipPhoto  Tag = "adm_skip_photo"
	TagAdminStats      Tag = "adm_stats"
	TagAdminCancelEdit Tag = "adm_cancel"
)

var (
	// ErrEmpty is returned for empty payloads.
	ErrEmpty = errors.New("empty callback payload")
	// ErrTooLong is returned when the encoded payload exceeds MaxLen.
	ErrTooLong = errors.New("callback payload exceeds 64 bytes")
	// ErrMalformed is returned when an argument has a broken escape sequence.
	ErrMalformed = errors.New("malformed callback payload")
)

var escaper = strings.NewReplacer("%", "%25", separator, "%7C")

// Action is a decoded button action.
type Action struct {
	Tag  Tag
	Args []string
}

// New builds an action.
func New(tag Tag, args ...string) Action {
	return Action{Tag: tag, Args: args}
}

// Arg returns the i-th argument or "" when absent.
func (a Action) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}

	return a.Args[i]
}

// Encode serializes the action.
func Encode(a Action) (string, error) {
	if a.Tag == "" {
		return "", ErrEmpty
	}

	var b strings.Builder
	b.WriteString(escaper.Replace(string(a.Tag)))
	for _, arg := range a.Args {
		b.WriteString(separator)
		b.WriteString(escaper.Replace(arg))
	}

	out := b.String()
	if len(out) > MaxLen {
		return "", errors.Wrapf(ErrTooLong, "tag %s", a.Tag)
	}

	return out, nil
}

// MustEncode is Encode for payloads known to fit.
func MustEncode(tag Tag, args ...string) string {
	out, err := Encode(New(tag, args...))
	if err != nil {
		panic(err)
	}

	return out
}

// Decode parses a payload produced by Encode.
func Decode(data string) (Action, error) {
	if data == "" {
		return Action{}, ErrEmpty
	}
	if len(data) > MaxLen {
		return Action{}, ErrTooLong
	}

	parts := strings.Split(data, separator)
	decoded := make([]string, 0, len(parts))
	for _, p := range parts {
		v, err := unescape(p)
		if err != nil {
			return Action{}, err
		}
		decoded = append(decoded, v)
	}

	return Action{Tag: Tag(decoded[0]), Args: decoded[1:]}, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", errors.Wrapf(ErrMalformed, "truncated escape in %q", s)
		}
		switch s[i+1 : i+3] {
		case "25":
			b.WriteByte('%')
		case "7C":
			b.WriteByte('|')
		default:
			return "", errors.Wrapf(ErrMalformed, "unknown escape %q", s[i:i+3])
		}
		i += 2
	}

	return b.String(), nil
}
