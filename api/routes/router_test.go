package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/internal/users"
	pkgAuth "github.com/novathreads/storefront-backend/pkg/auth"
	"github.com/novathreads/storefront-backend/pkg/config"
	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/enums"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/metrics"
	"github.com/novathreads/storefront-backend/pkg/ratelimit"
	"github.com/novathreads/storefront-backend/pkg/security"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
	authSvc auth.Service
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", FrontendURL: "http://localhost:5173", RequestTimeout: 5 * time.Second},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "novathreads", ExpirationMinutes: 60},
		RateLimit: config.RateLimitConfig{
			AuthWindow: 15 * time.Minute, AuthLimit: 100,
			NewsletterWindow: time.Hour, NewsletterLimit: 100,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	hasher := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: users.NewRepository(conn), Hasher: hasher, JWTConfig: cfg.JWT})
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), logger.Nop())
	require.NoError(t, err)
	newsletterSvc, err := newsletter.NewService(newsletter.ServiceParams{Repo: newsletter.NewRepository(conn)})
	require.NoError(t, err)

	handler := NewRouter(Dependencies{
		Config:     cfg,
		Logger:     logger.Nop(),
		Metrics:    metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		RateStore:  ratelimit.NewMemoryStore(),
		Catalog:    catalogSvc,
		Auth:       authSvc,
		Newsletter: newsletterSvc,
	})
	return &testServer{handler: handler, cfg: cfg, authSvc: authSvc}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:4000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	created, err := s.authSvc.EnsureAdmin(context.Background(), "admin@novathreads.test", "admin123")
	require.NoError(t, err)
	require.True(t, created)
	rec, env := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@novathreads.test","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data auth.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, enums.UserRoleAdmin, data.User.Role)
	return data.Token
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NovaThreads API is running", env.Message)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec, env = s.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec, env := s.do(t, http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"secret1","firstName":"Ada","lastName":"Lovelace"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var registered auth.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.NotEmpty(t, registered.Token)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"secret1","firstName":"Ada","lastName":"Lovelace"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong!"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/auth/profile", "", registered.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile auth.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "ada@example.com", profile.User.Email)
}

func TestAdminRoutesAreGated(t *testing.T) {
	s := newTestServer(t, nil)
	product := `{"name":"Wool Beanie","description":"Warm knit","price":"19.99","category":"Accessories","imageUrl":"https://img.test/beanie.jpg"}`

	rec, _ := s.do(t, http.MethodPost, "/api/products", product, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Email: "c@example.com", Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	rec, env := s.do(t, http.MethodPost, "/api/products", product, customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Admin privileges required.", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/api/newsletter/subscribers", "", customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.adminToken(t)

	rec, env := s.do(t, http.MethodPost, "/api/products", `{"name":"Wool Beanie","description":"Warm knit","price":"19.99","category":"Accessories","imageUrl":"https://img.test/beanie.jpg","featured":true,"rating":"4.2"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Product catalog.ProductDTO `json:"product"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created.Product.ID.String()
	assert.Equal(t, []string{"XS", "S", "M", "L", "XL"}, created.Product.Sizes)

	rec, env = s.do(t, http.MethodGet, "/api/products?category=Accessories&search=beanie", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list catalog.ProductListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)

	rec, _ = s.do(t, http.MethodGet, "/api/products/featured", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodPut, "/api/products/"+id, `{"category":"Hats"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", env.Message)

	rec, env = s.do(t, http.MethodPut, "/api/products/"+id, `{"stockQuantity":3}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product updated successfully", env.Message)

	rec, _ = s.do(t, http.MethodDelete, "/api/products/"+id, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/products/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/api/products/not-a-uuid", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsletterFlow(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.adminToken(t)

	rec, _ := s.do(t, http.MethodPost, "/api/newsletter/subscribe", `{"email":"reader@example.com"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/newsletter/subscribe", `{"email":"reader@example.com"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"reader@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := s.do(t, http.MethodPost, "/api/newsletter/subscribe", `{"email":"reader@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome back! Your subscription has been reactivated.", env.Message)
	rec, _ = s.do(t, http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"ghost@example.com"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/newsletter/subscribers?active=true", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var list newsletter.SubscriberListResult
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Subscribers, 1)
	assert.True(t, list.Subscribers[0].IsActive)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RateLimit.AuthLimit = 2 })

	for i := 0; i < 2; i++ {
		rec, _ := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, env := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"x@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, authRateLimitMessage, env.Message)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = s.do(t, http.MethodGet, "/api/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/api/products", "", "")

	rec, _ := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
