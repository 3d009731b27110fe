package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handlers provides the catalog HTTP endpoints.
type Handlers struct {
	medicines Store
	uploadDir string
	validate  *validator.Validate
	log       *zap.Logger
}

// NewHandlers creates the catalog handlers. Product photos posted to the
// upload endpoint land in uploadDir; the server serves that directory
// under /uploads.
func NewHandlers(medicines Store, uploadDir string, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		medicines: medicines,
		uploadDir: uploadDir,
		validate:  validator.New(),
		log:       log,
	}
}

// List returns medicines, optionally filtered.
// GET /api/medicines?category=...&search=...
func (h *Handlers) List(c *fiber.Ctx) error {
	category := c.Query("category")
	search := c.Query("search")

	medicines, err := h.medicines.List(c.Context(), category, search)
	if err != nil {
		h.log.Error("could not list medicines", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(medicines)
}

// Get returns a single medicine.
// GET /api/medicines/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	m, err := h.medicines.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Medicine not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(m)
}

// Create adds a medicine. Admin only.
// POST /api/medicines
func (h *Handlers) Create(c *fiber.Ctx) error {
	var m Medicine
	if err := c.BodyParser(&m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.validate.Struct(&m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if !ValidCategory(m.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unknown category: " + m.Category})
	}

	if err := h.medicines.Create(c.Context(), &m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update replaces a medicine's fields. Admin only.
// PUT /api/medicines/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	var m Medicine
	if err := c.BodyParser(&m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.validate.Struct(&m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if !ValidCategory(m.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unknown category: " + m.Category})
	}

	updated, err := h.medicines.Update(c.Context(), c.Params("id"), &m)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Medicine not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(updated)
}

// Delete removes a medicine. Admin only.
// DELETE /api/medicines/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	if err := h.medicines.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Medicine not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Medicine deleted successfully"})
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadImage stores a product photo and returns its public URL. Admin only.
// POST /api/medicines/upload-image
func (h *Handlers) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No image file provided"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only image files are allowed"})
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.log.Error("could not create upload dir", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		h.log.Error("could not save uploaded image", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"imageUrl": "/uploads/" + name})
}

// SetupRoutes mounts the catalog routes. Reads are public; writes sit behind
// the ordinary guard plus the admin role gate.
func SetupRoutes(app *fiber.App, h *Handlers, protect, admin fiber.Handler) {
	group := app.Group("/api/medicines")
	group.Post("/upload-image", protect, admin, h.UploadImage)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Post("/", protect, admin, h.Create)
	group.Put("/:id", protect, admin, h.Update)
	group.Delete("/:id", protect, admin, h.Delete)
}
