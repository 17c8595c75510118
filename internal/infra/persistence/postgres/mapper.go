package postgres

import (
	"storebot/internal/domain/entity"
	"storebot/internal/infra/persistence/model"
)

func toProductDomain(data *model.ProductModel) *entity.Product {
	return &entity.Product{
		ID:                data.ID,
		Name:              data.Name,
		Benefits:          data.Benefits,
		Description:       data.Description,
		Contraindications: data.Contraindications,
		Price:             data.Price,
		Photo:             data.Photo,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:                data.ID,
		Name:              data.Name,
		Benefits:          data.Benefits,
		Description:       data.Description,
		Contraindications: data.Contraindications,
		Price:             data.Price,
		Photo:             data.Photo,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	order := &entity.Order{
		ID:        data.ID,
		UserID:    data.UserID,
		ChatID:    data.ChatID,
		Username:  data.Username,
		FullName:  data.FullName,
		ProductID: data.ProductID,
		Medicine:  data.Medicine,
		Months:    data.Months,
		Quantity:  data.Quantity,
		Lines:     data.Lines,
		Price:     data.Price,
		Total:     data.Total,
		Status:    entity.OrderStatus(data.Status),
		Delivery: entity.DeliveryInfo{
			Region:   data.DeliveryRegion,
			District: data.DeliveryDistrict,
			Address:  data.DeliveryAddress,
			Phone:    data.Phone,
			Lat:      data.Lat,
			Lon:      data.Lon,
		},
		ReceiptPhotoID: data.ReceiptPhotoID,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
		ProcessingAt:   data.ProcessingAt,
		CompletedAt:    data.CompletedAt,
		CancelledAt:    data.CancelledAt,
	}

	for _, h := range data.StatusHistory {
		order.StatusHistory = append(order.StatusHistory, entity.StatusChange{
			Status:    entity.OrderStatus(h.Status),
			Timestamp: h.Timestamp,
			Actor:     h.Actor,
		})
	}
	for _, n := range data.Notes {
		order.Notes = append(order.Notes, entity.OrderNote{
			Text:      n.Text,
			Actor:     n.Actor,
			Timestamp: n.Timestamp,
		})
	}

	return order
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	return &model.OrderModel{
		ID:               data.ID,
		UserID:           data.UserID,
		ChatID:           data.ChatID,
		Username:         data.Username,
		FullName:         data.FullName,
		ProductID:        data.ProductID,
		Medicine:         data.Medicine,
		Months:           data.Months,
		Quantity:         data.Quantity,
		Lines:            data.Lines,
		Price:            data.Price,
		Total:            data.Total,
		Status:           string(data.Status),
		DeliveryRegion:   data.Delivery.Region,
		DeliveryDistrict: data.Delivery.District,
		DeliveryAddress:  data.Delivery.Address,
		Phone:            data.Delivery.Phone,
		Lat:              data.Delivery.Lat,
		Lon:              data.Delivery.Lon,
		ReceiptPhotoID:   data.ReceiptPhotoID,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
		ProcessingAt:     data.ProcessingAt,
		CompletedAt:      data.CompletedAt,
		CancelledAt:      data.CancelledAt,
		StatusHistory:    fromStatusHistory(data.ID, data.StatusHistory),
		Notes:            fromNotes(data.ID, data.Notes),
	}
}

func fromStatusHistory(orderID string, history []entity.StatusChange) []model.OrderStatusChangeModel {
	out := make([]model.OrderStatusChangeModel, 0, len(history))
	for i, h := range history {
		out = append(out, model.OrderStatusChangeModel{
			OrderID:   orderID,
			Seq:       i,
			Status:    string(h.Status),
			Actor:     h.Actor,
			Timestamp: h.Timestamp,
		})
	}

	return out
}

func fromNotes(orderID string, notes []entity.OrderNote) []model.OrderNoteModel {
	out := make([]model.OrderNoteModel, 0, len(notes))
	for i, n := range notes {
		out = append(out, model.OrderNoteModel{
			OrderID:   orderID,
			Seq:       i,
			Text:      n.Text,
			Actor:     n.Actor,
			Timestamp: n.Timestamp,
		})
	}

	return out
}
