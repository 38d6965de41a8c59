package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"moneta/internal/events"
	"moneta/internal/handlers"
	"moneta/internal/logger"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/services"
	"moneta/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	publisher := events.NopPublisher{}
	categoryService := services.NewCategoryService(db)
	userService := services.NewUserService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, userService, publisher)
	recurringService := services.NewRecurringService(db, transactionService, categoryService, userService, publisher)
	analyticsService := services.NewAnalyticsService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, recurringService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	protected.Use(middleware.Audit(auditService))

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/suggest", categoryHandler.SuggestCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("/bulk-import", transactionHandler.BulkImportTransactions)
	transactions.GET("/analytics/overview", analyticsHandler.GetOverview)
	transactions.GET("/analytics/trends", analyticsHandler.GetTrends)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)
	transactions.POST("/:id/advance", transactionHandler.AdvanceTransaction)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// dataOf returns the data object from a success envelope.
func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, rec)
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object in response, got: %s", rec.Body.String())
	}
	return data
}

// errorCodeOf returns the error code from an error envelope.
func errorCodeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, rec)
	user := data["user"].(map[string]interface{})
	return data["access_token"].(string), data["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, rec)
	return data["access_token"].(string), data["refresh_token"].(string)
}

// findCategory returns the ID of a category by name from the list endpoint.
func (app *testApp) findCategory(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/categories?page_size=100", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list categories failed: %d %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, rec)
	items, ok := data["data"].([]interface{})
	if !ok {
		t.Fatalf("expected category page, got: %s", rec.Body.String())
	}
	for _, raw := range items {
		cat := raw.(map[string]interface{})
		if cat["name"] == name {
			return cat["id"].(string)
		}
	}
	t.Fatalf("category %q not found", name)
	return ""
}

// createTransaction creates a completed expense transaction and returns its ID.
func (app *testApp) createTransaction(t *testing.T, token, categoryID, title string, amount int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"type":"expense","category_id":%q,"amount":%d}`, title, categoryID, amount)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	data := dataOf(t, rec)
	return data["id"].(string)
}
