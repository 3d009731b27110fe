package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"rajpharma.com/api/auth"
	"rajpharma.com/api/catalog"
)

// Handlers provides the order HTTP endpoints.
type Handlers struct {
	orders    Store
	medicines catalog.Store
	tokens    *auth.TokenService
	validate  *validator.Validate
	log       *zap.Logger
}

// NewHandlers creates the order handlers. The token service is used to
// attach an account to orders placed while logged in; checkout itself
// stays open to guests.
func NewHandlers(orders Store, medicines catalog.Store, tokens *auth.TokenService, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		orders:    orders,
		medicines: medicines,
		tokens:    tokens,
		validate:  validator.New(),
		log:       log,
	}
}

// CreateRequest is the checkout payload. Item names and prices are looked
// up server side; the client only names medicines and quantities.
type CreateRequest struct {
	Customer      Customer `json:"customer" validate:"required"`
	Items         []struct {
		MedicineID string `json:"medicine_id" validate:"required"`
		Quantity   int    `json:"quantity" validate:"gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string `json:"payment_method"`
}

// StatusRequest updates an order's status.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// Create places an order. Guests may order; a valid token attaches the
// account to the order but an invalid or absent one is simply ignored.
// POST /api/orders
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	order := &Order{
		Customer:      req.Customer,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "pending",
		UserID:        h.optionalUserID(c),
	}

	// Price every line from the catalog and make sure enough is on hand
	// before anything is written.
	for _, line := range req.Items {
		m, err := h.medicines.Get(c.Context(), line.MedicineID)
		if err != nil {
			if errors.Is(err, catalog.ErrMedicineNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Medicine not found: " + line.MedicineID,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		if m.Stock < line.Quantity {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Insufficient stock for " + m.Name,
			})
		}

		mid, err := primitive.ObjectIDFromHex(line.MedicineID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid medicine id"})
		}
		order.Items = append(order.Items, Item{
			MedicineID: mid,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   line.Quantity,
		})
		order.TotalAmount += m.Price * float64(line.Quantity)
	}

	created, err := h.orders.Create(c.Context(), order)
	if err != nil {
		h.log.Error("could not create order", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	// The decrement is atomic per medicine; a race that drains stock between
	// the check above and here is logged but does not fail the order.
	for _, item := range created.Items {
		if err := h.medicines.DecrementStock(c.Context(), item.MedicineID.Hex(), item.Quantity); err != nil {
			h.log.Warn("could not decrement stock",
				zap.String("order_id", created.ID.Hex()),
				zap.String("medicine_id", item.MedicineID.Hex()),
				zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// optionalUserID resolves the caller's account from a token when one is
// present and valid. Failures are deliberately silent.
func (h *Handlers) optionalUserID(c *fiber.Ctx) *primitive.ObjectID {
	token := c.Cookies(auth.TokenCookieName)
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return nil
	}
	subject, err := h.tokens.Verify(token)
	if err != nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil
	}
	return &id
}

// MyOrders lists the authenticated account's orders.
// GET /api/orders/my-orders
func (h *Handlers) MyOrders(c *fiber.Ctx) error {
	acc, ok := auth.AccountFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, no token"})
	}
	list, err := h.orders.ListByUser(c.Context(), acc.ID)
	if err != nil {
		h.log.Error("could not list orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(list)
}

// Get returns one order, typically for a confirmation page.
// GET /api/orders/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid order id"})
	}
	o, err := h.orders.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(o)
}

// List returns every order. Admin only.
// GET /api/orders
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.orders.List(c.Context())
	if err != nil {
		h.log.Error("could not list orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(list)
}

// UpdateStatus moves an order through its lifecycle. Admin only.
// PUT /api/orders/:id
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid order id"})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if !ValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown status: " + string(req.Status),
		})
	}

	o, err := h.orders.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(o)
}

// Export writes every order into an XLSX workbook. Admin only. The token
// may arrive as a query parameter so the download works as a plain link.
// GET /api/orders/export
func (h *Handlers) Export(c *fiber.Ctx) error {
	list, err := h.orders.List(c.Context())
	if err != nil {
		h.log.Error("could not export orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{
		"Order ID", "Customer Name", "Email", "Phone", "Address",
		"Items", "Total Amount", "Status", "Payment Method", "Payment Status", "Date",
	}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}

	for row, o := range list {
		var lines []string
		for _, item := range o.Items {
			lines = append(lines, fmt.Sprintf("%s x%d @ %.2f", item.Name, item.Quantity, item.Price))
		}
		values := []interface{}{
			o.ID.Hex(), o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Address,
			strings.Join(lines, "; "), o.TotalAmount, string(o.Status),
			o.PaymentMethod, o.PaymentStatus, o.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Send(buf.Bytes())
}

// SetupRoutes mounts the order routes. Checkout and single-order lookup are
// public; listing, status changes and the export sit behind the admin gate.
func SetupRoutes(app *fiber.App, h *Handlers, protect, admin fiber.Handler) {
	group := app.Group("/api/orders")
	group.Post("/", h.Create)
	group.Get("/my-orders", protect, h.MyOrders)
	group.Get("/export", protect, admin, h.Export)
	group.Get("/", protect, admin, h.List)
	group.Get("/:id", h.Get)
	group.Put("/:id", protect, admin, h.UpdateStatus)
}
