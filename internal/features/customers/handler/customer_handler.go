package handler

import (
	"net/http"

	"retailcrm-gateway/internal/core/logger"
	"retailcrm-gateway/internal/core/validation"
	"retailcrm-gateway/internal/crm"
	"retailcrm-gateway/internal/features/customers/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	api      ports.CustomerAPI
	validate *validation.Validator
	// siteCode is the process-wide default shop code.
	siteCode string
}

// NewCustomerHandler creates a new instance of CustomerHandler.
func NewCustomerHandler(api ports.CustomerAPI, validate *validation.Validator, siteCode string) *CustomerHandler {
	return &CustomerHandler{
		api:      api,
		validate: validate,
		siteCode: siteCode,
	}
}

// listCustomersQuery is the inbound query shape for the customer list.
type listCustomersQuery struct {
	Name          string `query:"name" json:"name"`
	Email         string `query:"email" json:"email"`
	CreatedAtFrom string `query:"createdAtFrom" json:"createdAtFrom"`
	CreatedAtTo   string `query:"createdAtTo" json:"createdAtTo"`
	Limit         int    `query:"limit" json:"limit" validate:"min=1"`
	Page          int    `query:"page" json:"page" validate:"min=1"`
}

// createCustomerRequest is the inbound body for customer creation.
type createCustomerRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	CountryISO string `json:"countryIso" validate:"required"`
	Site       string `json:"site"`
}

// ListCustomers handles GET /customers.
// @Summary List customers
// @Description Fetch a page of customers from the CRM with optional filters.
// @Tags Customers
// @Produce json
// @Param name query string false "Name filter"
// @Param email query string false "Email filter"
// @Param createdAtFrom query string false "Created-at lower bound"
// @Param createdAtTo query string false "Created-at upper bound"
// @Param limit query int false "Page size" default(20) minimum(1)
// @Param page query int false "Page number" default(1) minimum(1)
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/retailCRM/customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	q := listCustomersQuery{Limit: 20, Page: 1}
	if err := c.QueryParser(&q); err != nil {
		return unprocessable(c, []validation.FieldError{{Type: "type_error", Msg: err.Error()}})
	}
	if detail := h.validate.Check(q, requestLocale(c)); detail != nil {
		return unprocessable(c, detail)
	}

	filters := map[string]string{}
	if q.Name != "" {
		filters["name"] = q.Name
	}
	if q.Email != "" {
		filters["email"] = q.Email
	}
	if q.CreatedAtFrom != "" {
		filters["dateFrom"] = q.CreatedAtFrom
	}
	if q.CreatedAtTo != "" {
		filters["dateTo"] = q.CreatedAtTo
	}

	res, err := h.api.ListCustomers(c.UserContext(), q.Limit, q.Page, filters)
	if err != nil {
		return upstreamFailure(c, err)
	}
	return relay(c, res)
}

// CreateCustomer handles POST /customers.
// @Summary Create a customer
// @Description Create a new customer in the CRM.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer body createCustomerRequest true "Customer details"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/retailCRM/customers [post]
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req createCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return unprocessable(c, []validation.FieldError{{Type: "json_invalid", Msg: err.Error()}})
	}
	if detail := h.validate.Check(req, requestLocale(c)); detail != nil {
		return unprocessable(c, detail)
	}

	site := req.Site
	if site == "" {
		site = h.siteCode
	}

	customer := crm.Customer{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		CountryISO: req.CountryISO,
	}

	res, err := h.api.CreateCustomer(c.UserContext(), customer, site)
	if err != nil {
		return upstreamFailure(c, err)
	}
	return relay(c, res)
}

// GetCustomer handles GET /customers/:id.
// @Summary Get a customer
// @Description Fetch one customer by identifier.
// @Tags Customers
// @Produce json
// @Param id path string true "Customer identifier"
// @Param by query string false "Identifier namespace" default(id)
// @Param site query string false "Shop code"
// @Success 200 {object} map[string]interface{}
// @Router /api/retailCRM/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	customerID := c.Params("id")
	by := c.Query("by", "id")
	site := c.Query("site", h.siteCode)

	res, err := h.api.GetCustomer(c.UserContext(), customerID, site, by)
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
