package ports

import (
	"context"

	"retailcrm-gateway/internal/crm"
)

// OrderAPI defines the CRM operations the order endpoints depend on.
// This is a Secondary Port (Driven Port); crm.Client is the production adapter.
type OrderAPI interface {
	// CreateOrder creates an order; a nil site omits the site key upstream.
	CreateOrder(ctx context.Context, order crm.Order, site *string) (*crm.Result, error)
	// ListOrdersByCustomer fetches the orders belonging to one customer.
	ListOrdersByCustomer(ctx context.Context, customerID int, site *string, limit, page int) (*crm.Result, error)
	// CreateOrderPayment attaches an opaque payment payload to an order.
	CreateOrderPayment(ctx context.Context, payment map[string]interface{}, site string) (*crm.Result, error)
}
