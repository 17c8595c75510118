// Package render builds the outgoing texts and keyboards of the bot.
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"storebot/config"
	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/service"
)

// Main menu reply buttons. The update loop matches incoming text against them.
const (
	MenuAddress  = "📍 Manzil"
	MenuPhone    = "☎️ Telefon raqami"
	MenuProducts = "🌿 Mahsulotlar"
	MenuBasket   = "🛒 Savat"
	MenuOrders   = "📦 Buyurtmalarim"
	MenuCancel   = "🔙 Bekor qilish"
	MenuLocation = "📍 Joylashuv ulashish"
)

// Renderer formats messages with the storefront settings.
type Renderer struct {
	Store        config.StoreConfig
	PresetMonths []int
}

// New creates a renderer from the application config.
func New(cfg *config.Config) *Renderer {
	return &Renderer{
		Store:        cfg.Store,
		PresetMonths: cfg.Checkout.PresetMonths,
	}
}

func btn(text string, tag callback.Tag, args ...string) service.Button {
	return service.Button{Text: text, Data: callback.MustEncode(tag, args...)}
}

func row(buttons ...service.Button) []service.Button {
	return buttons
}

func inline(rows ...[]service.Button) *service.Markup {
	return &service.Markup{Inline: rows}
}

func text(s string) service.Message {
	return service.Message{Text: s}
}

func htmlText(s string) service.Message {
	return service.Message{Text: s, HTML: true}
}

// esc escapes user supplied text for HTML messages.
func esc(s string) string {
	return html.EscapeString(s)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}

	return s
}

// MainMenu is the persistent reply keyboard.
func (r *Renderer) MainMenu() *service.Markup {
	return &service.Markup{Reply: [][]service.ReplyButton{
		{{Text: MenuAddress}, {Text: MenuPhone}},
		{{Text: MenuProducts}, {Text: MenuBasket}},
		{{Text: MenuOrders}},
	}}
}

// Welcome greets the user.
func (r *Renderer) Welcome(firstName string) service.Message {
	msg := text(fmt.Sprintf(
		"Assalomu alaykum, %s! 🌿\n%s do'koniga xush kelibsiz.\n\nQuyidagi menyudan kerakli bo'limni tanlang:",
		orDash(firstName), r.Store.Name,
	))
	msg.Markup = r.MainMenu()

	return msg
}

// Address shows the store address.
func (r *Renderer) Address() service.Message {
	return text("📍 Bizning manzilimiz:\n" + r.Store.Address)
}

// Phone shows the store phone.
func (r *Renderer) Phone() service.Message {
	return text("☎️ Bizning telefon raqamimiz:\n" + r.Store.Phone)
}

// Hint is sent when an input does not fit the current step.
func (r *Renderer) Hint() service.Message {
	msg := text("ℹ️ Iltimos, menyudagi tugmalardan foydalaning.")
	msg.Markup = r.MainMenu()

	return msg
}

// Failure turns an application error message into a reply with the main menu.
func (r *Renderer) Failure(message string) service.Message {
	msg := text(message)
	msg.Markup = r.MainMenu()

	return msg
}

// Products lists the catalog.
func (r *Renderer) Products(products []*entity.Product) service.Message {
	if len(products) == 0 {
		return text("🌿 Hozircha mahsulotlar yo'q.")
	}

	rows := make([][]service.Button, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, row(btn(p.Name, callback.TagProduct, p.ID)))
	}
	rows = append(rows, row(btn("🔙 Asosiy menyuga qaytish", callback.TagMainMenu)))

	msg := text("🌿 Mavjud mahsulotlar:")
	msg.Markup = inline(rows...)

	return msg
}

// Product shows a catalog entry with order and basket actions.
func (r *Renderer) Product(p *entity.Product) service.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", esc(p.Name))
	fmt.Fprintf(&b, "💊 <b>Foydali xususiyatlari:</b>\n%s\n\n", esc(orDash(p.Summary())))
	if p.Contraindications != "" {
		fmt.Fprintf(&b, "⚠️ <b>Qarshi ko'rsatmalar:</b>\n%s\n\n", esc(p.Contraindications))
	}
	fmt.Fprintf(&b, "💰 <b>Narxi:</b> %s", esc(p.Price))

	msg := htmlText(b.String())
	msg.Photo = p.Photo
	msg.Markup = inline(
		row(btn("🛒 Hozir buyurtma berish", callback.TagOrder, p.ID)),
		row(btn("➕ Savatga qo'shish", callback.TagBasketAdd, p.ID)),
		row(btn("🔙 Ro'yxatga qaytish", callback.TagProducts)),
	)

	return msg
}

// Cancelled acknowledges a cancelled checkout.
func (r *Renderer) Cancelled() service.Message {
	msg := text("❌ Buyurtma bekor qilindi.")
	msg.Markup = r.MainMenu()

	return msg
}

func months(n int) string {
	return strconv.Itoa(n) + " oy"
}
