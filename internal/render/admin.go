package render

import (
	"fmt"
	"strings"

	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/service"
	"storebot/internal/fsm"
	"storebot/internal/usecase"
)

var fieldLabels = map[entity.ProductField]string{
	entity.ProductFieldName:              "Nomi",
	entity.ProductFieldPrice:             "Narxi",
	entity.ProductFieldBenefits:          "Foydali xususiyatlari",
	entity.ProductFieldContraindications: "Qarshi ko'rsatmalar",
	entity.ProductFieldPhoto:             "Rasm",
}

// AdminMenu is the operator console entry point.
func (r *Renderer) AdminMenu() service.Message {
	msg := text("👨‍💼 Admin panel")
	msg.Markup = inline(
		row(btn("📊 Buyurtmalarni ko'rish", callback.TagAdminOrders)),
		row(btn("📦 Mahsulotlarni ko'rish", callback.TagAdminProducts)),
		row(btn("➕ Mahsulot qo'shish", callback.TagAdminAdd), btn("📈 Statistika", callback.TagAdminStats)),
	)

	return msg
}

// AdminOrders lists orders with a status filter row.
func (r *Renderer) AdminOrders(orders []*entity.Order, filter *entity.OrderStatus) service.Message {
	var b strings.Builder
	b.WriteString("📊 <b>Buyurtmalar</b>")
	if filter != nil {
		fmt.Fprintf(&b, " (%s)", StatusLabel(*filter))
	}
	b.WriteString("\n\n")
	if len(orders) == 0 {
		b.WriteString("Buyurtmalar topilmadi.")
	}

	rows := make([][]service.Button, 0, len(orders)+3)
	for _, o := range orders {
		label := fmt.Sprintf("%s • %s • %s", o.ID, o.CustomerName(), StatusLabel(o.Status))
		rows = append(rows, row(btn(label, callback.TagAdminOrder, o.ID)))
	}

	filters := make([]service.Button, 0, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		filters = append(filters, btn(StatusLabel(s), callback.TagAdminOrders, string(s)))
	}
	rows = append(rows, filters[:2], filters[2:])
	rows = append(rows, row(btn("🔙 Orqaga", callback.TagAdminMenu)))

	msg := htmlText(b.String())
	msg.Markup = inline(rows...)

	return msg
}

// AdminOrder is the order detail with history, notes and actions.
func (r *Renderer) AdminOrder(o *entity.Order) service.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "🆔 <b>Buyurtma:</b> <code>%s</code>\n", esc(o.ID))
	fmt.Fprintf(&b, "👤 <b>Mijoz:</b> %s (@%s)\n", esc(o.CustomerName()), esc(orDash(o.Username)))
	fmt.Fprintf(&b, "📞 <b>Telefon:</b> %s\n", esc(o.Delivery.Phone))
	fmt.Fprintf(&b, "📍 <b>Manzil:</b> %s\n\n", esc(orDash(o.Delivery.Address)))
	orderItems(&b, o)
	fmt.Fprintf(&b, "📌 <b>Holat:</b> %s\n", StatusLabel(o.Status))

	if len(o.StatusHistory) > 0 {
		b.WriteString("\n🕒 <b>Tarix:</b>\n")
		for _, h := range o.StatusHistory {
			fmt.Fprintf(&b, "• %s %s (%s)\n", h.Timestamp.Format(timeLayout), StatusLabel(h.Status), esc(h.Actor))
		}
	}
	if len(o.Notes) > 0 {
		b.WriteString("\n📝 <b>Izohlar:</b>\n")
		for _, n := range o.Notes {
			fmt.Fprintf(&b, "• %s: %s\n", n.Timestamp.Format(timeLayout), esc(n.Text))
		}
	}

	markup := r.statusButtons(o)
	markup.Inline = append(markup.Inline,
		row(btn("📝 Izoh qo'shish", callback.TagAdminNote, o.ID)),
		row(btn("🔙 Orqaga", callback.TagAdminOrders)),
	)

	msg := htmlText(b.String())
	msg.Markup = markup

	return msg
}

// AdminProducts lists products with edit and delete actions.
func (r *Renderer) AdminProducts(products []*entity.Product) service.Message {
	rows := make([][]service.Button, 0, len(products)+2)
	for _, p := range products {
		rows = append(rows, row(
			btn("✏️ "+p.Name, callback.TagAdminEdit, p.ID),
			btn("🗑", callback.TagAdminDelete, p.ID),
		))
	}
	rows = append(rows,
		row(btn("➕ Mahsulot qo'shish", callback.TagAdminAdd)),
		row(btn("🔙 Orqaga", callback.TagAdminMenu)),
	)

	title := "📦 Mahsulotlar"
	if len(products) == 0 {
		title += "\n\nKatalog bo'sh."
	}
	msg := text(title)
	msg.Markup = inline(rows...)

	return msg
}

// FieldChooser asks which product field to edit.
func (r *Renderer) FieldChooser(p *entity.Product) service.Message {
	rows := make([][]service.Button, 0, len(entity.ProductFields)+1)
	for _, f := range entity.ProductFields {
		rows = append(rows, row(btn(fieldLabels[f], callback.TagAdminField, p.ID, string(f))))
	}
	rows = append(rows, row(btn("🔙 Orqaga", callback.TagAdminProducts)))

	msg := htmlText(fmt.Sprintf("✏️ <b>%s</b>\nQaysi maydonni o'zgartirasiz?", esc(p.Name)))
	msg.Markup = inline(rows...)

	return msg
}

// DeleteConfirm asks for deletion confirmation.
func (r *Renderer) DeleteConfirm(p *entity.Product) service.Message {
	msg := htmlText(fmt.Sprintf("🗑 <b>%s</b> o'chirilsinmi?", esc(p.Name)))
	msg.Markup = inline(row(
		btn("✅ Ha", callback.TagAdminDeleteOK, p.ID),
		btn("❌ Yo'q", callback.TagAdminProducts),
	))

	return msg
}

// Deleted acknowledges a removed product.
func (r *Renderer) Deleted(id string) service.Message {
	msg := htmlText(fmt.Sprintf("🗑 <code>%s</code> o'chirildi.", esc(id)))
	msg.Markup = inline(row(btn("🔙 Mahsulotlar", callback.TagAdminProducts)))

	return msg
}

// Stats renders the order book summary.
func (r *Renderer) Stats(st *usecase.Stats) service.Message {
	var b strings.Builder
	b.WriteString("📈 <b>Statistika</b>\n\n")
	fmt.Fprintf(&b, "📦 Mahsulotlar: %d\n", st.Products)
	fmt.Fprintf(&b, "🛒 Jami buyurtmalar: %d\n", st.Orders)
	for _, s := range entity.OrderStatuses {
		fmt.Fprintf(&b, "%s: %d\n", StatusLabel(s), st.ByStatus[s])
	}
	fmt.Fprintf(&b, "\n💰 Yakunlangan buyurtmalar summasi: %s", st.Revenue.String())

	msg := htmlText(b.String())
	msg.Markup = inline(row(btn("🔙 Orqaga", callback.TagAdminMenu)))

	return msg
}

// Admin renders an admin editing effect.
func (r *Renderer) Admin(effect fsm.Effect, reply *usecase.AdminReply) (service.Message, bool) {
	cancel := inline(row(btn(MenuCancel, callback.TagAdminCancelEdit)))
	prompt := func(s string) (service.Message, bool) {
		msg := text(s)
		msg.Markup = cancel
		return msg, true
	}

	switch effect {
	case fsm.EffectPromptProductID:
		return prompt("🆔 Mahsulot identifikatorini kiriting (lotin harflari, raqamlar, _ va -):")
	case fsm.EffectInvalidProductID:
		return prompt("❌ Identifikator noto'g'ri. Faqat kichik lotin harflari, raqamlar, _ va - (32 belgigacha).")
	case fsm.EffectDuplicateProductID:
		return prompt("❌ Bunday identifikatorli mahsulot allaqachon mavjud. Boshqasini kiriting:")
	case fsm.EffectPromptProductName:
		return prompt("📝 Mahsulot nomini kiriting:")
	case fsm.EffectPromptProductPrice:
		return prompt("💰 Narxini kiriting (masalan: 150,000 UZS):")
	case fsm.EffectInvalidProductPrice:
		return prompt("❌ Narx raqam bilan boshlanishi kerak (masalan: 150,000 UZS).")
	case fsm.EffectPromptProductBenefits:
		return prompt("💊 Foydali xususiyatlarini kiriting:")
	case fsm.EffectPromptProductContra:
		return prompt("⚠️ Qarshi ko'rsatmalarni kiriting:")
	case fsm.EffectPromptProductPhoto:
		msg := text("🖼 Mahsulot rasmini yuboring yoki o'tkazib yuboring:")
		msg.Markup = inline(
			row(btn("⏭ O'tkazib yuborish", callback.TagAdminSkipPhoto)),
			row(btn(MenuCancel, callback.TagAdminCancelEdit)),
		)
		return msg, true
	case fsm.EffectPromptEditValue:
		return prompt(fmt.Sprintf("✏️ Yangi qiymatni kiriting (%s):", fieldLabels[reply.Session.EditField]))
	case fsm.EffectPromptNote:
		return prompt(fmt.Sprintf("📝 %s buyurtmasi uchun izoh yozing:", reply.Session.OrderID))
	case fsm.EffectSaveProduct:
		if reply.Product == nil {
			return service.Message{}, false
		}
		msg := htmlText(fmt.Sprintf("✅ <b>%s</b> saqlandi.", esc(reply.Product.Name)))
		msg.Markup = inline(row(btn("🔙 Mahsulotlar", callback.TagAdminProducts)))
		return msg, true
	case fsm.EffectSaveNote:
		if reply.Order == nil {
			return service.Message{}, false
		}
		return r.AdminOrder(reply.Order), true
	case fsm.EffectEditCancelled:
		msg := text("❌ Tahrirlash bekor qilindi.")
		msg.Markup = inline(row(btn("🔙 Admin panel", callback.TagAdminMenu)))
		return msg, true
	}

	return service.Message{}, false
}
