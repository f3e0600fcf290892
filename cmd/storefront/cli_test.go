package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/api/routes"
	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/internal/session"
	"github.com/novathreads/storefront-backend/internal/users"
	"github.com/novathreads/storefront-backend/pkg/client"
	"github.com/novathreads/storefront-backend/pkg/config"
	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/kv"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/ratelimit"
	"github.com/novathreads/storefront-backend/pkg/security"
)

const (
	adminEmail    = "admin@novathreads.test"
	adminPassword = "admin-pass-123"
)

type cliEnv struct {
	store *kv.MemoryStore
	base  *client.Client
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	ctx := context.Background()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", FrontendURL: "http://localhost:5173"},
		JWT: config.JWTConfig{Secret: "cli-secret", Issuer: "novathreads", ExpirationMinutes: 60},
		RateLimit: config.RateLimitConfig{
			AuthWindow: time.Minute, AuthLimit: 100,
			NewsletterWindow: time.Minute, NewsletterLimit: 100,
		},
	}
	hasher := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
	authSvc, err := auth.NewService(auth.ServiceParams{UserRepo: users.NewRepository(conn), Hasher: hasher, JWTConfig: cfg.JWT})
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), logger.Nop())
	require.NoError(t, err)
	newsletterSvc, err := newsletter.NewService(newsletter.ServiceParams{Repo: newsletter.NewRepository(conn)})
	require.NoError(t, err)

	_, err = catalogSvc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	_, err = authSvc.EnsureAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	srv := httptest.NewServer(routes.NewRouter(routes.Dependencies{
		Config:     cfg,
		Logger:     logger.Nop(),
		RateStore:  ratelimit.NewMemoryStore(),
		Catalog:    catalogSvc,
		Auth:       authSvc,
		Newsletter: newsletterSvc,
	}))
	t.Cleanup(srv.Close)

	base, err := client.New(srv.URL + "/api")
	require.NoError(t, err)
	return &cliEnv{store: kv.NewMemoryStore(), base: base}
}

// run executes one CLI invocation against the shared state, the way
// separate processes would.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&app{logg: logger.Nop(), store: e.store, base: e.base})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) productID(t *testing.T, name string) string {
	t.Helper()
	res, err := e.base.ListProducts(context.Background(), client.ProductQuery{Search: name, Limit: 100})
	require.NoError(t, err)
	for _, p := range res.Products {
		if p.Name == name {
			return p.ID.String()
		}
	}
	t.Fatalf("product %q not found", name)
	return ""
}

func TestCLIProductsList(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "products", "list", "--category", "Men", "--sort", "price", "--order", "asc")
	require.NoError(t, err)
	assert.Contains(t, out, "Classic Cotton T-Shirt")
	assert.Contains(t, out, "$29.99")
	assert.Contains(t, out, "Page 1 of 1")

	out, err = env.run(t, "products", "list", "--search", "no-such-garment")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found.")

	_, err = env.run(t, "products", "list", "--sort", "popularity")
	require.Error(t, err)
	assert.Equal(t, 400, client.StatusOf(err))
}

func TestCLICartFlow(t *testing.T) {
	env := newCLIEnv(t)
	tee := env.productID(t, "Classic Cotton T-Shirt")

	out, err := env.run(t, "cart", "add", tee)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 x Classic Cotton T-Shirt (S, Black)")

	out, err = env.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "$29.99")
	assert.Contains(t, out, "$5.00")
	assert.Contains(t, out, "$37.99")
	assert.Contains(t, out, "Add $20.02 more for free shipping.")

	_, err = env.run(t, "cart", "add", tee, "--size", "S", "--color", "Black")
	require.NoError(t, err)
	out, err = env.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "FREE")
	assert.Contains(t, out, "$65.98")

	_, err = env.run(t, "cart", "add", tee, "--size", "XS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `size "XS" is not available`)

	out, err = env.run(t, "cart", "set", tee, "0", "--size", "S", "--color", "Black")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	_, err = env.run(t, "cart", "add", tee, "-q", "3", "--color", "Navy")
	require.NoError(t, err)
	out, err = env.run(t, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart cleared.")
	out, err = env.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCLICheckoutRequiresLogin(t *testing.T) {
	env := newCLIEnv(t)
	tee := env.productID(t, "Classic Cotton T-Shirt")

	_, err := env.run(t, "cart", "add", tee)
	require.NoError(t, err)

	_, err = env.run(t, "checkout")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)

	out, err := env.run(t, "auth", "register",
		"--email", "shopper@novathreads.test", "--password", "secret-123",
		"--first-name", "Sam", "--last-name", "Rivera")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Sam Rivera <shopper@novathreads.test> (customer)")

	out, err = env.run(t, "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Order for Sam Rivera")
	assert.Contains(t, out, "Checkout functionality coming soon!")

	out, err = env.run(t, "auth", "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "shopper@novathreads.test")

	_, err = env.run(t, "auth", "logout")
	require.NoError(t, err)
	_, err = env.run(t, "checkout")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestCLIAdminCommands(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "products", "create", "--name", "Linen Shirt", "--price", "49.00")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)

	_, err = env.run(t, "newsletter", "subscribe", "Reader@Example.com")
	require.NoError(t, err)

	_, err = env.run(t, "auth", "login", "--email", "bad@novathreads.test", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, 401, client.StatusOf(err))

	_, err = env.run(t, "auth", "login", "--email", adminEmail, "--password", adminPassword)
	require.NoError(t, err)

	out, err := env.run(t, "newsletter", "subscribers")
	require.NoError(t, err)
	assert.Contains(t, out, "reader@example.com")
	assert.Contains(t, out, "Page 1 of 1 (1 total)")

	out, err = env.run(t, "newsletter", "unsubscribe", "reader@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully unsubscribed from newsletter")

	out, err = env.run(t, "newsletter", "subscribers", "--active=false")
	require.NoError(t, err)
	assert.Contains(t, out, "reader@example.com")
}

func TestCLINewsletterSubscribeTwice(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "newsletter", "subscribe", "fan@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully subscribed to newsletter!")

	_, err = env.run(t, "newsletter", "subscribe", "fan@example.com")
	require.Error(t, err)
	assert.Equal(t, 409, client.StatusOf(err))
}
