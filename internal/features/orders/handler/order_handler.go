package handler

import (
	"net/http"

	"retailcrm-gateway/internal/core/logger"
	"retailcrm-gateway/internal/core/validation"
	"retailcrm-gateway/internal/crm"
	"retailcrm-gateway/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for order and payment operations.
type OrderHandler struct {
	api      ports.OrderAPI
	validate *validation.Validator
	// siteCode is the process-wide default shop code.
	siteCode string
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(api ports.OrderAPI, validate *validation.Validator, siteCode string) *OrderHandler {
	return &OrderHandler{
		api:      api,
		validate: validate,
		siteCode: siteCode,
	}
}

// orderItemRequest is one inbound order line. Offer identifiers are optional
// and independent; every provided one is forwarded.
type orderItemRequest struct {
	Quantity        int    `json:"quantity" validate:"required,min=1"`
	OfferID         int    `json:"offerId"`
	OfferExternalID string `json:"offerExternalId"`
	OfferXMLID      string `json:"offerXmlId"`
}

// createOrderRequest is the inbound body for order creation. The customer
// identifiers are alternatives: the first one present wins. None present
// means the order goes upstream without a customer and the CRM decides.
type createOrderRequest struct {
	CustomerID         *int               `json:"customerId"`
	CustomerExternalID string             `json:"customerExternalId"`
	CustomerBrowserID  string             `json:"customerBrowserId"`
	ExternalID         string             `json:"externalId"`
	Items              []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Site               string             `json:"site"`
}

// createPaymentRequest is the inbound body for payment creation. The payment
// payload is opaque; only "must be a structured object" is enforced here.
type createPaymentRequest struct {
	Payment map[string]interface{} `json:"payment" validate:"required"`
	Site    string                 `json:"site" validate:"required"`
}

// CreateOrder handles POST /orders.
// @Summary Create an order
// @Description Create a new order with a customer reference, items and an optional external number.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body createOrderRequest true "Order details"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/retailCRM/orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return unprocessable(c, []validation.FieldError{{Type: "json_invalid", Msg: err.Error()}})
	}
	if detail := h.validate.Check(req, requestLocale(c)); detail != nil {
		return unprocessable(c, detail)
	}

	order := crm.Order{
		ExternalID: req.ExternalID,
		Items:      make([]crm.OrderItem, 0, len(req.Items)),
	}

	switch {
	case req.CustomerID != nil:
		order.Customer = &crm.OrderCustomerRef{ID: *req.CustomerID}
	case req.CustomerExternalID != "":
		order.Customer = &crm.OrderCustomerRef{ExternalID: req.CustomerExternalID}
	case req.CustomerBrowserID != "":
		order.Customer = &crm.OrderCustomerRef{BrowserID: req.CustomerBrowserID}
	}

	for _, item := range req.Items {
		line := crm.OrderItem{Quantity: item.Quantity}
		if item.OfferID != 0 || item.OfferExternalID != "" || item.OfferXMLID != "" {
			line.Offer = &crm.OrderOffer{
				ID:         item.OfferID,
				ExternalID: item.OfferExternalID,
				XMLID:      item.OfferXMLID,
			}
		}
		order.Items = append(order.Items, line)
	}

	site := req.Site
	if site == "" {
		site = h.siteCode
	}

	res, err := h.api.CreateOrder(c.UserContext(), order, &site)
	if err != nil {
		return upstreamFailure(c, err)
	}
	return relay(c, res)
}

// ListOrdersByCustomer handles GET /orders/:customer_id.
// @Summary List orders of a customer
// @Description Fetch the orders belonging to one customer.
// @Tags Orders
// @Produce json
// @Param customer_id path int true "Customer internal ID"
// @Param by query string false "Identifier namespace" default(id)
// @Param site query string false "Shop code"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/retailCRM/orders/{customer_id} [get]
func (h *OrderHandler) ListOrdersByCustomer(c *fiber.Ctx) error {
	customerID, err := c.ParamsInt("customer_id")
	if err != nil {
		return unprocessable(c, []validation.FieldError{{
			Field: "customer_id",
			Type:  "int_parsing",
			Msg:   "customer_id must be an integer",
		}})
	}

	site := c.Query("site", h.siteCode)

	res, err := h.api.ListOrdersByCustomer(c.UserContext(), customerID, &site, 20, 1)
	if err != nil {
		return upstreamFailure(c, err)
	}
	return relay(c, res)
}

// CreatePayment handles POST /orders/payments.
// @Summary Attach a payment to an order
// @Description Create a payment for an order in the given site context.
// @Tags Orders
// @Accept json
// @Produce json
// @Param payment body createPaymentRequest true "Payment details"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/retailCRM/orders/payments [post]
func (h *OrderHandler) CreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return unprocessable(c, []validation.FieldError{{Type: "json_invalid", Msg: err.Error()}})
	}
	if detail := h.validate.Check(req, requestLocale(c)); detail != nil {
		return unprocessable(c, detail)
	}

	res, err := h.api.CreateOrderPayment(c.UserContext(), req.Payment, req.Site)
	if err != nil {
		return upstreamFailure(c, err)
	}
	return relay(c, res)
}

// requestLocale resolves the validation message locale for a request.
func requestLocale(c *fiber.Ctx) string {
	return validation.Locale(c.Get(fiber.HeaderAcceptLanguage))
}

// relay mirrors a CRM Result: the body as-is on success, the CRM's status
// with the body as detail otherwise.
func relay(c *fiber.Ctx, res *crm.Result) error {
	if !res.Successful() {
		return c.Status(res.StatusCode).JSON(fiber.Map{"detail": res.Body})
	}
	return c.Status(http.StatusOK).JSON(res.Body)
}

// unprocessable renders inbound validation failures before any outbound call.
func unprocessable(c *fiber.Ctx, detail []validation.FieldError) error {
	return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"detail": detail})
}

// upstreamFailure maps a transport-level CRM failure to 502.
func upstreamFailure(c *fiber.Ctx, err error) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	logger.Get().Error("CRM unreachable",
		zap.String("ray_id", rayID),
		zap.Error(err),
	)

	return c.Status(http.StatusBadGateway).JSON(fiber.Map{
		"errorMsg": "CRM unreachable: " + err.Error(),
	})
}
