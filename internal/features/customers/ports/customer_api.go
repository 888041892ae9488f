package ports

import (
	"context"

	"retailcrm-gateway/internal/crm"
)

// CustomerAPI defines the CRM operations the customer endpoints depend on.
// This is a Secondary Port (Driven Port); crm.Client is the production adapter.
type CustomerAPI interface {
	// ListCustomers fetches a page of customers with filter[<key>] filters.
	ListCustomers(ctx context.Context, limit, page int, filters map[string]string) (*crm.Result, error)
	// CreateCustomer creates a customer in the given site context.
	CreateCustomer(ctx context.Context, customer crm.Customer, site string) (*crm.Result, error)
	// GetCustomer fetches one customer; by selects the identifier namespace.
	GetCustomer(ctx context.Context, customerID, site, by string) (*crm.Result, error)
}
