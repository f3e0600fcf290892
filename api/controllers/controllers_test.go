package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novathreads/storefront-backend/api/middleware"
	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/internal/users"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/pagination"
	"github.com/novathreads/storefront-backend/pkg/types"
)

type stubCatalog struct {
	catalog.Service
	listInput     catalog.ListProductsInput
	featuredLimit int
	gotID         string
	createInput   catalog.CreateProductInput
	updateInput   catalog.UpdateProductInput
	err           error
}

func (s *stubCatalog) ListProducts(_ context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	s.listInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.ProductListResult{Products: []catalog.ProductDTO{}, Pagination: pagination.NewMeta(input.Pagination, 0)}, nil
}

func (s *stubCatalog) FeaturedProducts(_ context.Context, limit int) ([]catalog.ProductDTO, error) {
	s.featuredLimit = limit
	return []catalog.ProductDTO{{Name: "Winter Parka Jacket"}}, s.err
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*catalog.ProductDTO, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.ProductDTO{Name: "Tee", Price: decimal.RequireFromString("29.99")}, nil
}

func (s *stubCatalog) CreateProduct(_ context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	s.createInput = input
	return &catalog.ProductDTO{Name: input.Name}, s.err
}

func (s *stubCatalog) UpdateProduct(_ context.Context, id string, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	s.gotID = id
	s.updateInput = input
	return &catalog.ProductDTO{Name: "patched"}, s.err
}

func (s *stubCatalog) DeleteProduct(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

type stubNewsletter struct {
	outcome   newsletter.Outcome
	listInput newsletter.ListSubscribersInput
	err       error
}

func (s *stubNewsletter) Subscribe(_ context.Context, email string) (*newsletter.SubscribeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &newsletter.SubscribeResult{Outcome: s.outcome, Subscriber: newsletter.SubscriberDTO{Email: email}}, nil
}

func (s *stubNewsletter) Unsubscribe(context.Context, string) error {
	return s.err
}

func (s *stubNewsletter) ListSubscribers(_ context.Context, input newsletter.ListSubscribersInput) (*newsletter.SubscriberListResult, error) {
	s.listInput = input
	return &newsletter.SubscriberListResult{Subscribers: []newsletter.SubscriberDTO{}, Pagination: pagination.NewMeta(input.Pagination, 0)}, s.err
}

type stubAuth struct {
	auth.Service
	profileID uuid.UUID
	err       error
}

func (s *stubAuth) Register(_ context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.AuthResponse{Token: "tok", User: &users.UserDTO{Email: req.Email}}, nil
}

func (s *stubAuth) Login(_ context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.AuthResponse{Token: "tok", User: &users.UserDTO{Email: req.Email}}, nil
}

func (s *stubAuth) Profile(_ context.Context, id uuid.UUID) (*users.UserDTO, error) {
	s.profileID = id
	return &users.UserDTO{ID: id, Email: "ada@example.com"}, s.err
}

type successBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) successBody {
	t.Helper()
	var body successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body
}

func TestListProductsParsesQuery(t *testing.T) {
	svc := &stubCatalog{}
	rec := serve(t, ListProducts(svc, nil), http.MethodGet, "/api/products?category=Men&featured=true&search=denim&sortBy=price&order=asc&page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	in := svc.listInput
	require.NotNil(t, in.Filters.Category)
	assert.Equal(t, "Men", *in.Filters.Category)
	require.NotNil(t, in.Filters.Featured)
	assert.True(t, *in.Filters.Featured)
	assert.Equal(t, "denim", in.Filters.Search)
	assert.Equal(t, catalog.Sort{Field: "price", Desc: false}, in.Sort)
	assert.Equal(t, pagination.Params{Page: 2, Limit: 5}, in.Pagination)

	body := decodeSuccess(t, rec)
	assert.JSONEq(t, `{"products":[],"pagination":{"page":2,"limit":5,"total":0,"pages":0}}`, string(body.Data))
}

func TestListProductsDefaults(t *testing.T) {
	svc := &stubCatalog{}
	rec := serve(t, ListProducts(svc, nil), http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.listInput.Filters.Category)
	assert.Nil(t, svc.listInput.Filters.Featured)
	assert.Equal(t, catalog.Sort{Field: "createdAt", Desc: true}, svc.listInput.Sort)
	assert.Equal(t, pagination.Params{Page: 1, Limit: 12}, svc.listInput.Pagination)
}

func TestListProductsRejectsBadQuery(t *testing.T) {
	for _, target := range []string{
		"/api/products?page=0",
		"/api/products?limit=101",
		"/api/products?featured=maybe",
		"/api/products?sortBy=password",
		"/api/products?order=sideways",
	} {
		rec := serve(t, ListProducts(&stubCatalog{}, nil), http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, decodeFailure(t, rec).Errors, target)
	}
}

func TestFeaturedProducts(t *testing.T) {
	svc := &stubCatalog{}
	rec := serve(t, FeaturedProducts(svc, nil), http.MethodGet, "/api/products/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.DefaultFeaturedLimit, svc.featuredLimit)
	assert.Contains(t, string(decodeSuccess(t, rec).Data), `"products":[`)
}

func TestGetProductNotFound(t *testing.T) {
	svc := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
	rec := serve(t, GetProduct(svc, nil), http.MethodGet, "/api/products/nope", "", map[string]string{"id": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nope", svc.gotID)
	assert.Equal(t, "Product not found", decodeFailure(t, rec).Message)
}

func TestGetProductWrapsInProductKey(t *testing.T) {
	rec := serve(t, GetProduct(&stubCatalog{}, nil), http.MethodGet, "/api/products/x", "", map[string]string{"id": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Product catalog.ProductDTO `json:"product"`
	}
	require.NoError(t, json.Unmarshal(decodeSuccess(t, rec).Data, &data))
	assert.Equal(t, "Tee", data.Product.Name)
}

func TestCreateProduct(t *testing.T) {
	svc := &stubCatalog{}
	payload := `{"name":"Cap","description":"Wool cap","price":15.5,"category":"Accessories","imageUrl":"https://img.test/cap.jpg"}`
	rec := serve(t, CreateProduct(svc, nil), http.MethodPost, "/api/products", payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeSuccess(t, rec)
	assert.Equal(t, "Product created successfully", body.Message)
	require.NotNil(t, svc.createInput.Price)
	assert.True(t, decimal.RequireFromString("15.5").Equal(*svc.createInput.Price))
}

func TestCreateProductValidation(t *testing.T) {
	rec := serve(t, CreateProduct(&stubCatalog{}, nil), http.MethodPost, "/api/products", `{"name":"Cap"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeFailure(t, rec)
	assert.Equal(t, "Validation failed", body.Message)
	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "imageUrl")
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc := &stubCatalog{}
	rec := serve(t, UpdateProduct(svc, nil), http.MethodPut, "/api/products/p1", `{"featured":true}`, map[string]string{"id": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product updated successfully", decodeSuccess(t, rec).Message)
	require.NotNil(t, svc.updateInput.Featured)
	assert.Nil(t, svc.updateInput.Price)

	rec = serve(t, DeleteProduct(svc, nil), http.MethodDelete, "/api/products/p1", "", map[string]string{"id": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", decodeSuccess(t, rec).Message)
	assert.Equal(t, "p1", svc.gotID)
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := serve(t, ListProducts(nil, nil), http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewsletterSubscribeStatuses(t *testing.T) {
	rec := serve(t, NewsletterSubscribe(&stubNewsletter{outcome: newsletter.OutcomeCreated}, nil), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, subscribedMessage, decodeSuccess(t, rec).Message)

	rec = serve(t, NewsletterSubscribe(&stubNewsletter{outcome: newsletter.OutcomeReactivated}, nil), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reactivatedMessage, decodeSuccess(t, rec).Message)

	conflict := pkgerrors.New(pkgerrors.CodeConflict, "This email is already subscribed to our newsletter")
	rec = serve(t, NewsletterSubscribe(&stubNewsletter{err: conflict}, nil), http.MethodPost, "/api/newsletter/subscribe", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, NewsletterSubscribe(&stubNewsletter{}, nil), http.MethodPost, "/api/newsletter/subscribe", `{"email":"not-an-email"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewsletterUnsubscribe(t *testing.T) {
	rec := serve(t, NewsletterUnsubscribe(&stubNewsletter{}, nil), http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, unsubscribedMessage, decodeSuccess(t, rec).Message)

	missing := pkgerrors.New(pkgerrors.CodeNotFound, "Email not found in our newsletter list")
	rec = serve(t, NewsletterUnsubscribe(&stubNewsletter{err: missing}, nil), http.MethodPost, "/api/newsletter/unsubscribe", `{"email":"a@b.co"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Email not found in our newsletter list", decodeFailure(t, rec).Message)
}

func TestNewsletterSubscribersQuery(t *testing.T) {
	svc := &stubNewsletter{}
	rec := serve(t, NewsletterSubscribers(svc, nil), http.MethodGet, "/api/newsletter/subscribers?active=false&page=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listInput.Active)
	assert.False(t, *svc.listInput.Active)
	assert.Equal(t, pagination.Params{Page: 3, Limit: 50}, svc.listInput.Pagination)
	assert.Contains(t, string(decodeSuccess(t, rec).Data), `"subscribers":[]`)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	rec := serve(t, AuthRegister(&stubAuth{}, nil), http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"secret1","firstName":"Ada","lastName":"Lovelace"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var data auth.AuthResponse
	require.NoError(t, json.Unmarshal(decodeSuccess(t, rec).Data, &data))
	assert.Equal(t, "tok", data.Token)
	assert.Equal(t, "ada@example.com", data.User.Email)

	rec = serve(t, AuthRegister(&stubAuth{}, nil), http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"123","firstName":"Ada","lastName":"L"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unauthorized := pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password")
	rec = serve(t, AuthLogin(&stubAuth{err: unauthorized}, nil), http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeFailure(t, rec).Message)
}

func TestAuthProfileUsesContextIdentity(t *testing.T) {
	svc := &stubAuth{}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), id.String(), "ada@example.com", "customer"))
	rec := httptest.NewRecorder()
	AuthProfile(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.profileID)
	assert.Contains(t, string(decodeSuccess(t, rec).Data), `"user":`)

	rec = serve(t, AuthProfile(svc, nil), http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := serve(t, HealthLive(func() time.Time { return fixed }), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"NovaThreads API is running","timestamp":"2026-03-01T12:00:00Z"}`, rec.Body.String())
}

func TestHealthReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := serve(t, HealthReady(map[string]Pinger{"database": ok, "redis": nil}, nil), http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, HealthReady(map[string]Pinger{"database": ok, "redis": down}, nil), http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
