package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"maison/internal/cart"
	"maison/internal/handlers"
	"maison/internal/middleware"
	"maison/internal/models"
	"maison/internal/repositories"
	"maison/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	adminEmail  = "admin@maison.test"
	shippingFee = 500
)

// setupApp wires a full Fiber app against a fresh in-memory SQLite
// database, with uploads going to a temp dir.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}, &models.Order{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	catalogService := services.NewCatalogService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil, shippingFee)
	authService := services.NewAuthService(userRepo, jwtSecret, adminEmail)
	uploadService := services.NewUploadService(t.TempDir(), "/assets")

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	auth := middleware.AuthRequired(authService)
	admin := middleware.AdminRequired()

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api, auth)
	handlers.NewProductHandler(catalogService).RegisterRoutes(api, auth, admin)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth, admin)
	handlers.NewUploadHandler(uploadService).RegisterRoutes(api, auth, admin)

	return app
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doJSON issues a JSON request, optionally with a Bearer token, and
// decodes the response body into out when out is non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	if out != nil {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

// registerAndLogin creates an account and returns its session token.
func registerAndLogin(t *testing.T, app *fiber.App, name, email, password string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"name":     name,
		"username": email,
		"password": password,
	}, "", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var loginResp struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		User    models.User `json:"user"`
	}
	resp = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"username": email,
		"password": password,
	}, "", &loginResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, loginResp.Success)
	assert.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

// createProduct adds a catalog entry through the admin API.
func createProduct(t *testing.T, app *fiber.App, token string, product map[string]interface{}) models.Product {
	t.Helper()

	var createResp struct {
		Success bool           `json:"success"`
		Product models.Product `json:"product"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/products", product, token, &createResp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, createResp.Success)
	return createResp.Product
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := setupApp(t)

	token := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")
	assert.NotEmpty(t, token)

	// Duplicate registration conflicts.
	resp := doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"name":     "Claire",
		"username": "claire@example.com",
		"password": "secret123",
	}, "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password is a 401.
	resp = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"username": "claire@example.com",
		"password": "wrong",
	}, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoleComesFromToken(t *testing.T) {
	app := setupApp(t)

	customerToken := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")

	product := map[string]interface{}{
		"name":     "Premier B01",
		"price":    550000,
		"category": "Watches",
		"variants": []map[string]interface{}{{"color": "Silver/Brown", "stock": 5}},
	}

	// No token: 401. Customer token: 403. Nothing in the request body
	// can grant admin.
	resp := doJSON(t, app, http.MethodPost, "/api/products", product, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/api/products", product, customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	created := createProduct(t, app, adminToken, product)
	assert.Equal(t, 1, created.ID)
}

func TestProductCRUD(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")

	// First product on an empty catalog gets ID 1, variants preserved.
	created := createProduct(t, app, adminToken, map[string]interface{}{
		"name":     "X",
		"price":    100,
		"category": "Watches",
		"variants": []map[string]interface{}{{"color": "Gold", "stock": 5}},
	})
	assert.Equal(t, 1, created.ID)

	var catalog []models.Product
	resp := doJSON(t, app, http.MethodGet, "/api/products", nil, "", &catalog)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, catalog, 1)
	assert.Equal(t, "X", catalog[0].Name)
	assert.Equal(t, []models.Variant{{Color: "Gold", Stock: 5}}, catalog[0].Variants)

	// Partial update touches only the provided fields.
	var updateResp struct {
		Success bool           `json:"success"`
		Product models.Product `json:"product"`
	}
	resp = doJSON(t, app, http.MethodPut, "/api/products/1", map[string]interface{}{
		"price": 150,
	}, adminToken, &updateResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 150, updateResp.Product.Price)
	assert.Equal(t, "X", updateResp.Product.Name)

	// Deleting an unknown id is a 404; deleting the real one empties
	// the catalog.
	resp = doJSON(t, app, http.MethodDelete, "/api/products/99", nil, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/products/1", nil, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	catalog = nil
	doJSON(t, app, http.MethodGet, "/api/products", nil, "", &catalog)
	assert.Len(t, catalog, 0)
}

func TestProductCreateRejectsInvalidVariants(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")

	// A variant needs a color label and a non-negative stock count.
	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "X",
		"price":    100,
		"category": "Watches",
		"variants": []map[string]interface{}{{"color": "", "stock": -5}},
	}, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var catalog []models.Product
	doJSON(t, app, http.MethodGet, "/api/products", nil, "", &catalog)
	assert.Len(t, catalog, 0)
}

func TestCheckoutFlow(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")
	customerToken := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")

	created := createProduct(t, app, adminToken, map[string]interface{}{
		"name":     "Premier B01",
		"price":    550000,
		"category": "Watches",
		"variants": []map[string]interface{}{{"color": "Silver/Brown", "stock": 5}},
	})

	// Build the cart client-side: adding the same (product, variant)
	// twice merges into one entry of quantity 2.
	basket := cart.Open(cart.NewMemoryStore())
	assert.NoError(t, basket.Add(created, "Silver/Brown"))
	assert.NoError(t, basket.Add(created, "Silver/Brown"))
	assert.Equal(t, 1, basket.Len())
	assert.Equal(t, 1100000, basket.Total())

	var placeResp struct {
		Success bool         `json:"success"`
		Order   models.Order `json:"order"`
	}
	resp := doJSON(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"email":            "claire@example.com",
		"customer_name":    "Claire",
		"shipping_address": "12 Rue de la Paix, Paris - 75002",
		"items":            basket.OrderItems(),
		"payment_method":   "prepaid",
		"total":            basket.Total(),
	}, customerToken, &placeResp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, placeResp.Success)
	assert.Equal(t, models.StatusProcessing, placeResp.Order.Status)

	// Successful placement clears the cart.
	assert.NoError(t, basket.Clear())
	assert.Equal(t, 0, basket.Total())

	// The order shows up exactly once, items verbatim.
	var orders []models.Order
	resp = doJSON(t, app, http.MethodGet, "/api/orders?email=claire@example.com", nil, customerToken, &orders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, orders, 1)
	assert.Equal(t, placeResp.Order.ID, orders[0].ID)
	assert.Equal(t, []models.OrderItem{{
		ProductID: created.ID,
		Name:      "Premier B01",
		Variant:   "Silver/Brown",
		Quantity:  2,
		Price:     550000,
	}}, orders[0].Items)

	// Stock was decremented at placement.
	var catalog []models.Product
	doJSON(t, app, http.MethodGet, "/api/products", nil, "", &catalog)
	assert.Equal(t, 3, catalog[0].Variants[0].Stock)
}

func TestCheckoutRejectsBadTotals(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")
	customerToken := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")

	created := createProduct(t, app, adminToken, map[string]interface{}{
		"name":     "Signature Belt",
		"price":    45000,
		"category": "Belts",
		"variants": []map[string]interface{}{{"color": "Black", "stock": 2}},
	})

	resp := doJSON(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"email":            "claire@example.com",
		"customer_name":    "Claire",
		"shipping_address": "somewhere",
		"items": []map[string]interface{}{
			{"id": created.ID, "variant": "Black", "quantity": 1, "price": 1},
		},
		"payment_method": "prepaid",
		"total":          1,
	}, customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Ordering more than the variant holds conflicts.
	resp = doJSON(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"email":            "claire@example.com",
		"customer_name":    "Claire",
		"shipping_address": "somewhere",
		"items": []map[string]interface{}{
			{"id": created.ID, "variant": "Black", "quantity": 3},
		},
		"payment_method": "prepaid",
		"total":          135000,
	}, customerToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestOrderListingAuthorization(t *testing.T) {
	app := setupApp(t)
	registerAndLogin(t, app, "Boss", adminEmail, "secret123")
	customerToken := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")

	// A customer cannot read the whole ledger or someone else's orders.
	resp := doJSON(t, app, http.MethodGet, "/api/orders", nil, customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = doJSON(t, app, http.MethodGet, "/api/orders?email=other@example.com", nil, customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrderStatusUpdates(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")
	customerToken := registerAndLogin(t, app, "Claire", "claire@example.com", "secret123")

	created := createProduct(t, app, adminToken, map[string]interface{}{
		"name":     "Premier B01",
		"price":    550000,
		"category": "Watches",
		"variants": []map[string]interface{}{{"color": "Silver/Brown", "stock": 5}},
	})

	var placeResp struct {
		Order models.Order `json:"order"`
	}
	doJSON(t, app, http.MethodPost, "/api/orders", map[string]interface{}{
		"email":            "claire@example.com",
		"customer_name":    "Claire",
		"shipping_address": "somewhere",
		"items": []map[string]interface{}{
			{"id": created.ID, "variant": "Silver/Brown", "quantity": 1},
		},
		"payment_method": "prepaid",
		"total":          550000,
	}, customerToken, &placeResp)

	// Customers cannot transition status.
	resp := doJSON(t, app, http.MethodPatch, "/api/orders/"+placeResp.Order.ID+"/status",
		map[string]string{"status": models.StatusShipped}, customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin transition succeeds.
	var patchResp struct {
		Success bool `json:"success"`
	}
	resp = doJSON(t, app, http.MethodPatch, "/api/orders/"+placeResp.Order.ID+"/status",
		map[string]string{"status": models.StatusShipped}, adminToken, &patchResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, patchResp.Success)

	// Unknown order id: HTTP 200 with success=false.
	resp = doJSON(t, app, http.MethodPatch, "/api/orders/ORD-0/status",
		map[string]string{"status": models.StatusShipped}, adminToken, &patchResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, patchResp.Success)

	// Arbitrary status strings are rejected.
	resp = doJSON(t, app, http.MethodPatch, "/api/orders/"+placeResp.Order.ID+"/status",
		map[string]string{"status": "Teleported"}, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// uploadImage posts one multipart image payload.
func uploadImage(t *testing.T, app *fiber.App, token, filename string, data []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	assert.NoError(t, err)
	_, err = part.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func TestImageUpload(t *testing.T) {
	app := setupApp(t)
	adminToken := registerAndLogin(t, app, "Boss", adminEmail, "secret123")

	jpeg := make([]byte, 2*1024*1024)
	copy(jpeg, []byte{0xFF, 0xD8, 0xFF, 0xE0})

	resp := uploadImage(t, app, adminToken, "watch.jpg", jpeg)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var uploadResp struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp))
	resp.Body.Close()
	assert.True(t, uploadResp.Success)
	assert.Contains(t, uploadResp.URL, "/assets/")

	// A GIF payload is rejected regardless of its filename.
	gif := append([]byte("GIF89a"), make([]byte, 512)...)
	resp = uploadImage(t, app, adminToken, "sneaky.jpg", gif)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// An oversized PNG is rejected.
	png := make([]byte, 6*1024*1024)
	copy(png, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'})
	resp = uploadImage(t, app, adminToken, "big.png", png)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
