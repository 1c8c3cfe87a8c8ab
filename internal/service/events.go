package service

// Lifecycle events pushed to live subscribers.
const (
	EventPurchaseOrderCreated       = "purchase_order.created"
	EventPurchaseOrderStatusChanged = "purchase_order.status_changed"
	EventQCReportCreated            = "qc_report.created"
	EventQCReportUpdated            = "qc_report.updated"
	EventReceiptIssued              = "receipt.issued"
)

// EventPublisher fans lifecycle events out to subscribers. Publish must not block.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

type statusChange struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	PONumber        string `json:"po_number"`
	From            string `json:"from"`
	To              string `json:"to"`
}
