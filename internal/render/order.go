package render

import (
	"fmt"
	"strings"

	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/service"
)

const timeLayout = "2006-01-02 15:04"

var statusLabels = map[entity.OrderStatus]string{
	entity.OrderStatusNew:        "🆕 Yangi",
	entity.OrderStatusProcessing: "⏳ Jarayonda",
	entity.OrderStatusCompleted:  "✅ Yakunlangan",
	entity.OrderStatusCancelled:  "❌ Bekor qilingan",
}

// StatusLabel is the human readable status name.
func StatusLabel(s entity.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}

	return string(s)
}

func orderItems(b *strings.Builder, o *entity.Order) {
	if len(o.Lines) > 0 {
		for _, l := range o.Lines {
			fmt.Fprintf(b, "💊 %s x %d (%s)\n", esc(l.Name), l.Quantity, esc(l.UnitPrice))
		}
	} else {
		fmt.Fprintf(b, "💊 <b>Mahsulot:</b> %s\n", esc(o.Medicine))
		fmt.Fprintf(b, "⏳ <b>Muddat:</b> %s\n", months(o.Months))
	}
	fmt.Fprintf(b, "💰 <b>Summa:</b> %s\n", esc(o.Price))
}

// OrderCard is the operator view of an order with status actions.
func (r *Renderer) OrderCard(o *entity.Order) service.Message {
	var b strings.Builder
	b.WriteString("🛒 <b>Yangi buyurtma</b>\n\n")
	fmt.Fprintf(&b, "🆔 <b>Buyurtma ID:</b> <code>%s</code>\n", esc(o.ID))
	fmt.Fprintf(&b, "👤 <b>Mijoz:</b> %s (@%s)\n", esc(o.CustomerName()), esc(orDash(o.Username)))
	fmt.Fprintf(&b, "📞 <b>Telefon:</b> %s\n\n", esc(o.Delivery.Phone))
	orderItems(&b, o)
	fmt.Fprintf(&b, "\n📍 <b>Yetkazib berish:</b> %s\n", esc(orDash(o.Delivery.Address)))
	fmt.Fprintf(&b, "📌 <b>Holat:</b> %s\n", StatusLabel(o.Status))
	fmt.Fprintf(&b, "🕒 %s", o.CreatedAt.Format(timeLayout))

	msg := htmlText(b.String())
	msg.Photo = o.ReceiptPhotoID
	msg.Markup = r.statusButtons(o)

	return msg
}

// RelayFallback is the card sent to the primary admin when the relay
// target rejected it.
func (r *Renderer) RelayFallback(o *entity.Order) service.Message {
	msg := r.OrderCard(o)
	msg.Photo = ""
	msg.Text = "⚠️ <b>Buyurtma kanalga yuborilmadi</b>\n\n" + msg.Text

	return msg
}

func (r *Renderer) statusButtons(o *entity.Order) *service.Markup {
	buttons := make([]service.Button, 0, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		if s == o.Status {
			continue
		}
		buttons = append(buttons, btn(StatusLabel(s), callback.TagAdminStatus, o.ID, string(s)))
	}

	rows := [][]service.Button{}
	for i := 0; i < len(buttons); i += 2 {
		rows = append(rows, buttons[i:min(i+2, len(buttons))])
	}

	return inline(rows...)
}

// StatusNotice tells the customer about a status change.
func (r *Renderer) StatusNotice(o *entity.Order) service.Message {
	return htmlText(fmt.Sprintf(
		"📦 Buyurtmangiz <code>%s</code> holati o'zgardi: <b>%s</b>",
		esc(o.ID), StatusLabel(o.Status),
	))
}

// UserOrders is the customer's order history.
func (r *Renderer) UserOrders(orders []*entity.Order) service.Message {
	if len(orders) == 0 {
		return text("📦 Sizda hali buyurtmalar yo'q.")
	}

	var b strings.Builder
	b.WriteString("📦 <b>Buyurtmalaringiz:</b>\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "🆔 <code>%s</code> • %s\n%s • %s\n\n",
			esc(o.ID), o.CreatedAt.Format(timeLayout), esc(o.Price), StatusLabel(o.Status))
	}

	return htmlText(strings.TrimRight(b.String(), "\n"))
}
