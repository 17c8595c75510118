package render

import (
	"fmt"
	"strconv"
	"strings"

	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/service"
	"storebot/internal/fsm"
	"storebot/internal/pricing"
)

// Checkout renders a checkout effect for the session it was emitted with.
// EffectCommit renders nothing; the committed order is shown by Confirmed.
func (r *Renderer) Checkout(effect fsm.Effect, s entity.Session) (service.Message, bool) {
	switch effect {
	case fsm.EffectPromptDuration:
		return r.durationPrompt(s), true
	case fsm.EffectPromptCustomDuration:
		return text("✍️ Necha oy davolanmoqchisiz? Sonini kiriting:"), true
	case fsm.EffectInvalidDuration:
		return text("❌ Iltimos, to'g'ri oy sonini kiriting (1 yoki undan ko'p)."), true
	case fsm.EffectPaymentDetails:
		return r.paymentDetails(s), true
	case fsm.EffectPromptReceipt:
		return text("📤 Iltimos, to'lov chekingizning suratini yuklang."), true
	case fsm.EffectPromptDeliveryChoice:
		msg := text("📍 Buyurtmangizni qayerga yetkazib beramiz?")
		msg.Markup = inline(
			row(
				btn("📍 "+r.capital(s), callback.TagDelivery, "capital"),
				btn("📍 Boshqa viloyat", callback.TagDelivery, "other"),
			),
			row(btn(MenuCancel, callback.TagCancel)),
		)
		return msg, true
	case fsm.EffectPromptCapitalLocation:
		msg := text(fmt.Sprintf(
			"📍 %s bo'ylab yetkazib berish uchun joylashuvingizni ulashing, so'ng telefon raqamingizni yozing:",
			r.capital(s),
		))
		msg.Markup = &service.Markup{Reply: [][]service.ReplyButton{
			{{Text: MenuLocation, RequestLocation: true}},
			{{Text: MenuCancel}},
		}}
		return msg, true
	case fsm.EffectPromptRegion:
		msg := text("🌍 Iltimos, viloyatingizni kiriting:")
		msg.Markup = &service.Markup{RemoveReply: true}
		return msg, true
	case fsm.EffectPromptDistrict:
		return text("🏘️ Iltimos, tumaningizni kiriting:"), true
	case fsm.EffectPromptPhone:
		return text("📱 Iltimos, telefon raqamingizni kiriting:"), true
	case fsm.EffectLocationReceived:
		return text("✅ Joylashuv qabul qilindi. Endi telefon raqamingizni yozing:"), true
	case fsm.EffectShowSummary:
		return r.summary(s), true
	case fsm.EffectCancelled:
		return r.Cancelled(), true
	}

	return service.Message{}, false
}

func (r *Renderer) capital(s entity.Session) string {
	if s.Capital && s.Region != "" {
		return s.Region
	}

	return r.Store.CapitalRegion
}

func (r *Renderer) durationPrompt(s entity.Session) service.Message {
	presets := make([][]service.Button, 0, len(r.PresetMonths)+2)
	for _, m := range r.PresetMonths {
		presets = append(presets, row(btn(months(m), callback.TagMonths, strconv.Itoa(m))))
	}
	presets = append(presets,
		row(btn("Boshqa", callback.TagMonthsOther)),
		row(btn(MenuCancel, callback.TagCancel)),
	)

	msg := htmlText(fmt.Sprintf("💊 <b>%s</b>\n\n❓ Necha oylik davolanishni xohlaysiz?", esc(s.ProductName)))
	msg.Markup = inline(presets...)

	return msg
}

func (r *Renderer) paymentDetails(s entity.Session) service.Message {
	var b strings.Builder
	b.WriteString("💳 <b>To'lov ma'lumotlari</b>\n\n")
	if s.FromBasket {
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "🔹 %s x %d\n", esc(l.Name), l.Quantity)
		}
	} else {
		fmt.Fprintf(&b, "🔹 Mahsulot: %s\n", esc(s.ProductName))
		fmt.Fprintf(&b, "🔹 Muddat: %s\n", months(s.Months))
	}
	fmt.Fprintf(&b, "🔹 Umumiy summa: %s\n\n", esc(s.Total))
	b.WriteString("Iltimos, summani bizning kartaga o'tkazing:\n")
	fmt.Fprintf(&b, "<code>%s</code>\n\n", esc(r.Store.PaymentCard))
	b.WriteString("❗️ To'lovdan keyin, iltimos to'lov chekining suratini yuklang.")

	msg := htmlText(b.String())
	msg.Markup = inline(
		row(btn("📤 Chek yuklash", callback.TagUploadReceipt)),
		row(btn(MenuCancel, callback.TagCancel)),
	)

	return msg
}

func (r *Renderer) summary(s entity.Session) service.Message {
	var b strings.Builder
	b.WriteString("📋 <b>Buyurtma xulosasi</b>\n\n")
	if s.FromBasket {
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "💊 %s x %d (%s)\n", esc(l.Name), l.Quantity, esc(l.UnitPrice))
		}
	} else {
		fmt.Fprintf(&b, "💊 <b>Mahsulot:</b> %s\n", esc(s.ProductName))
		fmt.Fprintf(&b, "⏳ <b>Muddat:</b> %s\n", months(s.Months))
	}
	fmt.Fprintf(&b, "💰 <b>Umumiy summa:</b> %s\n\n", esc(s.Total))

	d := s.Delivery()
	if s.Capital && d.HasLocation() {
		fmt.Fprintf(&b, "📍 <b>Yetkazib berish:</b> %s (ulashilgan joylashuv)\n", esc(d.Region))
	} else {
		fmt.Fprintf(&b, "📍 <b>Yetkazib berish:</b> %s\n", esc(d.Address))
	}
	fmt.Fprintf(&b, "📱 <b>Telefon:</b> %s\n\n", esc(d.Phone))
	b.WriteString("Buyurtmani tasdiqlaysizmi?")

	msg := htmlText(b.String())
	msg.Markup = inline(row(
		btn("✅ Tasdiqlash", callback.TagConfirm),
		btn("❌ Bekor qilish", callback.TagCancel),
	))

	return msg
}

// Confirmed tells the customer the order was accepted.
func (r *Renderer) Confirmed(o *entity.Order) service.Message {
	msg := htmlText(fmt.Sprintf(
		"✅ <b>Buyurtmangiz qabul qilindi!</b>\n\n🆔 Buyurtma raqami: <code>%s</code>\n💰 Summa: %s\n\nTez orada operatorimiz siz bilan bog'lanadi.",
		esc(o.ID), esc(o.Price),
	))
	msg.Markup = r.MainMenu()

	return msg
}

// Basket shows the basket contents with checkout actions.
func (r *Renderer) Basket(lines []entity.OrderLine) service.Message {
	if len(lines) == 0 {
		msg := text("🛒 Savatingiz bo'sh.")
		msg.Markup = inline(row(btn("🌿 Mahsulotlar", callback.TagProducts)))
		return msg
	}

	var b strings.Builder
	b.WriteString("🛒 <b>Savatingiz:</b>\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s x %d = %s\n", esc(l.Name), l.Quantity, esc(pricing.Total(l.UnitPrice, l.Quantity).Display))
	}
	fmt.Fprintf(&b, "\n💰 <b>Jami:</b> %s", esc(pricing.Sum(lines).Display))

	msg := htmlText(b.String())
	msg.Markup = inline(
		row(btn("💳 To'lov", callback.TagCheckout)),
		row(btn("🗑 Savatni tozalash", callback.TagBasketClear)),
		row(btn("🏠 Bosh menyu", callback.TagMainMenu)),
	)

	return msg
}

// BasketAdded acknowledges an added product.
func (r *Renderer) BasketAdded(name string) string {
	return "✅ " + name + " savatga qo'shildi"
}
