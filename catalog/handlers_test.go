package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu   sync.Mutex
	byID map[string]*Medicine
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]*Medicine{}}
}

func (s *memStore) List(_ context.Context, category, search string) ([]Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Medicine
	for _, m := range s.byID {
		if category != "" && m.Category != category {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(m.Name), needle) &&
				!strings.Contains(strings.ToLower(m.Description), needle) {
				continue
			}
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (*Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrMedicineNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) Create(_ context.Context, m *Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	if m.Image == "" {
		m.Image = DefaultImage
	}
	cp := *m
	s.byID[m.ID.Hex()] = &cp
	return nil
}

func (s *memStore) Update(_ context.Context, id string, m *Medicine) (*Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[id]
	if !ok {
		return nil, ErrMedicineNotFound
	}
	m.ID = old.ID
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	s.byID[id] = &cp
	out := cp
	return &out, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrMedicineNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *memStore) DecrementStock(_ context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return ErrMedicineNotFound
	}
	if m.Stock < quantity {
		return ErrInsufficientStock
	}
	m.Stock -= quantity
	return nil
}

func newCatalogApp(t *testing.T) (*fiber.App, *memStore) {
	t.Helper()
	store := newMemStore()
	h := NewHandlers(store, t.TempDir(), nil)

	app := fiber.New()
	pass := func(c *fiber.Ctx) error { return c.Next() }
	SetupRoutes(app, h, pass, pass)
	return app, store
}

func seedMedicine(t *testing.T, store *memStore, name, category string, price float64, stock int) *Medicine {
	t.Helper()
	m := &Medicine{
		Name:         name,
		Description:  name + " description",
		Price:        price,
		Category:     category,
		Manufacturer: "Cipla",
		Stock:        stock,
	}
	require.NoError(t, store.Create(context.Background(), m))
	return m
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestListFiltersByCategoryAndSearch(t *testing.T) {
	app, store := newCatalogApp(t)
	seedMedicine(t, store, "Paracetamol", "Pain Relief", 2.5, 100)
	seedMedicine(t, store, "Amoxicillin", "Antibiotics", 8, 40)
	seedMedicine(t, store, "Ibuprofen", "Pain Relief", 3, 60)

	resp := doJSON(t, app, fiber.MethodGet, "/api/medicines?category=Pain+Relief", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []Medicine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/medicines?search=amox", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Amoxicillin", list[0].Name)
}

func TestGetUnknownMedicineReturnsNotFound(t *testing.T) {
	app, _ := newCatalogApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/medicines/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateMedicineValidation(t *testing.T) {
	app, _ := newCatalogApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/medicines", fiber.Map{
		"name": "Nameless", "price": 1.0,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/medicines", fiber.Map{
		"name":         "Mystery Pills",
		"description":  "does things",
		"price":        1.0,
		"category":     "Quantum",
		"manufacturer": "Acme",
		"stock":        5,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateAndUpdateMedicine(t *testing.T) {
	app, _ := newCatalogApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/medicines", fiber.Map{
		"name":         "Cetirizine",
		"description":  "Antihistamine tablets",
		"price":        1.2,
		"category":     "Cold & Flu",
		"manufacturer": "Sun Pharma",
		"stock":        30,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created Medicine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, DefaultImage, created.Image)

	resp = doJSON(t, app, fiber.MethodPut, "/api/medicines/"+created.ID.Hex(), fiber.Map{
		"name":         "Cetirizine 10mg",
		"description":  "Antihistamine tablets",
		"price":        1.5,
		"category":     "Cold & Flu",
		"manufacturer": "Sun Pharma",
		"stock":        25,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated Medicine
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Cetirizine 10mg", updated.Name)
	assert.Equal(t, 1.5, updated.Price)
}

func TestDeleteMedicine(t *testing.T) {
	app, store := newCatalogApp(t)
	m := seedMedicine(t, store, "Old Stock", "Other", 1, 1)

	resp := doJSON(t, app, fiber.MethodDelete, "/api/medicines/"+m.ID.Hex(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/medicines/"+m.ID.Hex(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDecrementStockGuardsAgainstOverdraw(t *testing.T) {
	_, store := newCatalogApp(t)
	m := seedMedicine(t, store, "Insulin", "Diabetes", 20, 3)

	require.NoError(t, store.DecrementStock(context.Background(), m.ID.Hex(), 2))
	err := store.DecrementStock(context.Background(), m.ID.Hex(), 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := store.Get(context.Background(), m.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func newUploadApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	h := NewHandlers(newMemStore(), dir, nil)

	app := fiber.New()
	pass := func(c *fiber.Ctx) error { return c.Next() }
	SetupRoutes(app, h, pass, pass)
	return app, dir
}

func postImage(t *testing.T, app *fiber.App, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/medicines/upload-image", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestUploadImageStoresFileAndReturnsURL(t *testing.T) {
	app, dir := newUploadApp(t)

	resp := postImage(t, app, "bottle.png", []byte("fake png bytes"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, strings.HasPrefix(out.ImageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(out.ImageURL, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(out.ImageURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), saved)
}

func TestUploadImageRequiresFile(t *testing.T) {
	app, _ := newUploadApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/medicines/upload-image", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadImageRejectsNonImageExtension(t *testing.T) {
	app, dir := newUploadApp(t)

	resp := postImage(t, app, "payload.exe", []byte("not an image"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
