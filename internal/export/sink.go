package export

import "purchaseScope/internal/model"

// Sink consumes aggregated purchase events.
type Sink interface {
	WriteEvents(events []model.PurchaseEvent) error
}
