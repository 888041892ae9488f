package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"retailcrm-gateway/internal/core/validation"
	"retailcrm-gateway/internal/crm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOrderAPI is a mock implementation of OrderAPI capturing call arguments.
type mockOrderAPI struct {
	result *crm.Result
	err    error

	gotOrder crm.Order
	gotSite  *string

	gotCustomerID int
	gotLimit      int
	gotPage       int

	gotPayment     map[string]interface{}
	gotPaymentSite string
}

// CreateOrder implements OrderAPI.
func (m *mockOrderAPI) CreateOrder(ctx context.Context, order crm.Order, site *string) (*crm.Result, error) {
	m.gotOrder, m.gotSite = order, site
	return m.result, m.err
}

// ListOrdersByCustomer implements OrderAPI.
func (m *mockOrderAPI) ListOrdersByCustomer(ctx context.Context, customerID int, site *string, limit, page int) (*crm.Result, error) {
	m.gotCustomerID, m.gotSite, m.gotLimit, m.gotPage = customerID, site, limit, page
	return m.result, m.err
}

// CreateOrderPayment implements OrderAPI.
func (m *mockOrderAPI) CreateOrderPayment(ctx context.Context, payment map[string]interface{}, site string) (*crm.Result, error) {
	m.gotPayment, m.gotPaymentSite = payment, site
	return m.result, m.err
}

func newOrderApp(api *mockOrderAPI) *fiber.App {
	h := NewOrderHandler(api, validation.New(), "testfl")

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Post("/orders", h.CreateOrder)
	app.Post("/orders/payments", h.CreatePayment)
	app.Get("/orders/:customer_id", h.ListOrdersByCustomer)
	return app
}

// TestCreateOrder_CustomerIDPriority verifies the internal id wins over other identifiers.
func TestCreateOrder_CustomerIDPriority(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{"id": float64(456)}}}
	app := newOrderApp(api)

	payload := `{"customerId": 5, "customerExternalId": "ext-9", "externalId": "ORD-1", "items": [{"quantity": 2, "offerId": 10}]}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, api.gotOrder.Customer)
	assert.Equal(t, &crm.OrderCustomerRef{ID: 5}, api.gotOrder.Customer)
	assert.Equal(t, "ORD-1", api.gotOrder.ExternalID)

	require.Len(t, api.gotOrder.Items, 1)
	assert.Equal(t, 2, api.gotOrder.Items[0].Quantity)
	assert.Equal(t, &crm.OrderOffer{ID: 10}, api.gotOrder.Items[0].Offer)

	require.NotNil(t, api.gotSite)
	assert.Equal(t, "testfl", *api.gotSite)
}

// TestCreateOrder_ExternalID verifies the external id namespace is used when no internal id.
func TestCreateOrder_ExternalID(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{}}}
	app := newOrderApp(api)

	payload := `{"customerExternalId": "ext-9", "customerBrowserId": "bro-1", "items": [{"quantity": 1}]}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, &crm.OrderCustomerRef{ExternalID: "ext-9"}, api.gotOrder.Customer)
}

// TestCreateOrder_BrowserID verifies the browser id is the last fallback.
func TestCreateOrder_BrowserID(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{}}}
	app := newOrderApp(api)

	payload := `{"customerBrowserId": "bro-1", "items": [{"quantity": 1}]}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, &crm.OrderCustomerRef{BrowserID: "bro-1"}, api.gotOrder.Customer)
}

// TestCreateOrder_NoCustomer verifies the customer field is omitted, not rejected.
func TestCreateOrder_NoCustomer(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{}}}
	app := newOrderApp(api)

	payload := `{"items": [{"quantity": 1}]}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Nil(t, api.gotOrder.Customer)
}

// TestCreateOrder_OfferIdentifiers verifies that all provided offer identifiers attach.
func TestCreateOrder_OfferIdentifiers(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{}}}
	app := newOrderApp(api)

	payload := `{"items": [
		{"quantity": 2, "offerId": 10, "offerExternalId": "sku-1", "offerXmlId": "xml-1"},
		{"quantity": 3}
	]}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	_, err := app.Test(req)
	require.NoError(t, err)

	require.Len(t, api.gotOrder.Items, 2)
	assert.Equal(t, &crm.OrderOffer{ID: 10, ExternalID: "sku-1", XMLID: "xml-1"}, api.gotOrder.Items[0].Offer)
	assert.Nil(t, api.gotOrder.Items[1].Offer, "an item with no offer identifiers carries no offer")
}

// TestCreateOrder_EmptyItems verifies 422 on an empty items sequence.
func TestCreateOrder_EmptyItems(t *testing.T) {
	api := &mockOrderAPI{}
	app := newOrderApp(api)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"customerId": 5, "items": []}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Detail []validation.FieldError `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, "items", body.Detail[0].Field)
}

// TestCreateOrder_NonPositiveQuantity verifies 422 on a zero quantity.
func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	api := &mockOrderAPI{}
	app := newOrderApp(api)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"items": [{"quantity": 0, "offerId": 10}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

// TestCreateOrder_ExplicitSite verifies the request site wins over the default.
func TestCreateOrder_ExplicitSite(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{}}}
	app := newOrderApp(api)

	payload := `{"items": [{"quantity": 1}], "site": "otherstore"}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	_, err := app.Test(req)
	require.NoError(t, err)

	require.NotNil(t, api.gotSite)
	assert.Equal(t, "otherstore", *api.gotSite)
}

// TestCreateOrder_CRMError verifies the CRM status and body are mirrored.
func TestCreateOrder_CRMError(t *testing.T) {
	crmBody := map[string]interface{}{"success": false, "errorMsg": "Customer not found"}
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 400, Body: crmBody}}
	app := newOrderApp(api)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"items": [{"quantity": 1}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, crmBody, body["detail"])
}

// TestCreateOrder_TransportFailure verifies the 502 mapping.
func TestCreateOrder_TransportFailure(t *testing.T) {
	api := &mockOrderAPI{err: errors.New("dial tcp: connection refused")}
	app := newOrderApp(api)

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"items": [{"quantity": 1}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

// TestListOrdersByCustomer verifies path parsing, defaults and paging.
func TestListOrdersByCustomer(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{"orders": []interface{}{}}}}
	app := newOrderApp(api)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 7, api.gotCustomerID)
	assert.Equal(t, 20, api.gotLimit)
	assert.Equal(t, 1, api.gotPage)
	require.NotNil(t, api.gotSite)
	assert.Equal(t, "testfl", *api.gotSite)
}

// TestListOrdersByCustomer_NonInteger verifies 422 on a non-numeric id.
func TestListOrdersByCustomer_NonInteger(t *testing.T) {
	api := &mockOrderAPI{}
	app := newOrderApp(api)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, api.gotCustomerID)
}

// TestCreatePayment verifies the opaque payload and site pass through.
func TestCreatePayment(t *testing.T) {
	api := &mockOrderAPI{result: &crm.Result{StatusCode: 200, Body: map[string]interface{}{"id": float64(789)}}}
	app := newOrderApp(api)

	payload := `{"payment": {"order": {"id": 1}, "amount": 100}, "site": "testfl"}`
	req := httptest.NewRequest("POST", "/orders/payments", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "testfl", api.gotPaymentSite)
	assert.Equal(t, map[string]interface{}{
		"order":  map[string]interface{}{"id": float64(1)},
		"amount": float64(100),
	}, api.gotPayment)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]interface{}{"id": float64(789)}, body)
}

// TestCreatePayment_MissingFields verifies 422 when payment or site is absent.
func TestCreatePayment_MissingFields(t *testing.T) {
	api := &mockOrderAPI{}
	app := newOrderApp(api)

	req := httptest.NewRequest("POST", "/orders/payments", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Detail []validation.FieldError `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Detail, 2)
	assert.Equal(t, "payment", body.Detail[0].Field)
	assert.Equal(t, "site", body.Detail[1].Field)
}
