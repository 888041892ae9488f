package crm

// Customer is the outbound customer payload. Optional fields are omitted
// from the serialized form when empty; the CRM treats absent and empty
// differently for some of them.
type Customer struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CountryISO string `json:"countryIso"`
}

// OrderCustomerRef identifies the customer an order belongs to. Exactly one
// of the identifier namespaces is set; the empty ones are omitted.
type OrderCustomerRef struct {
	ID         int    `json:"id,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
	BrowserID  string `json:"browserId,omitempty"`
}

// OrderOffer references the catalog offer of an order item. Unlike the
// customer reference, every provided identifier is attached simultaneously.
type OrderOffer struct {
	ID         int    `json:"id,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
	XMLID      string `json:"xmlId,omitempty"`
}

// OrderItem is one order line. An item without any offer identifier
// serializes with no offer key at all.
type OrderItem struct {
	Quantity int         `json:"quantity"`
	Offer    *OrderOffer `json:"offer,omitempty"`
}

// Order is the outbound order payload. A nil Customer means the order
// carries no customer reference and the CRM decides whether to accept it.
type Order struct {
	Customer   *OrderCustomerRef `json:"customer,omitempty"`
	ExternalID string            `json:"externalId,omitempty"`
	Items      []OrderItem       `json:"items"`
}
