package inquiry

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handlers provides the inquiry HTTP endpoints.
type Handlers struct {
	inquiries Store
	validate  *validator.Validate
	log       *zap.Logger
}

// NewHandlers creates the inquiry handlers.
func NewHandlers(inquiries Store, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		inquiries: inquiries,
		validate:  validator.New(),
		log:       log,
	}
}

// StatusRequest updates an inquiry's status.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// Create records a contact-form message. Public.
// POST /api/inquiries
func (h *Handlers) Create(c *fiber.Ctx) error {
	var q Inquiry
	if err := c.BodyParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	q.Status = StatusPending

	created, err := h.inquiries.Create(c.Context(), &q)
	if err != nil {
		h.log.Error("could not create inquiry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// List returns every inquiry. Admin only.
// GET /api/inquiries
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.inquiries.List(c.Context())
	if err != nil {
		h.log.Error("could not list inquiries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(list)
}

// UpdateStatus marks an inquiry pending or resolved. Admin only.
// PUT /api/inquiries/:id
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid inquiry id"})
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

	q, err := h.inquiries.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInquiryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Inquiry not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(q)
}

// Export writes every inquiry into an XLSX workbook. Admin only.
// GET /api/inquiries/export
func (h *Handlers) Export(c *fiber.Ctx) error {
	list, err := h.inquiries.List(c.Context())
	if err != nil {
		h.log.Error("could not export inquiries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inquiries"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Email", "Phone", "Address", "Message", "Status", "Date"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}

	for row, q := range list {
		values := []interface{}{
			q.ID.Hex(), q.Name, q.Email, q.Phone, q.Address,
			q.Message, string(q.Status), q.CreatedAt.Format(time.RFC3339),
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
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inquiries.xlsx"`)
	return c.Send(buf.Bytes())
}

// SetupRoutes mounts the inquiry routes. Submission is public; everything
// else sits behind the admin gate.
func SetupRoutes(app *fiber.App, h *Handlers, protect, admin fiber.Handler) {
	group := app.Group("/api/inquiries")
	group.Post("/", h.Create)
	group.Get("/export", protect, admin, h.Export)
	group.Get("/", protect, admin, h.List)
	group.Put("/:id", protect, admin, h.UpdateStatus)
}
