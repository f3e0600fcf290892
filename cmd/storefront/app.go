package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/novathreads/storefront-backend/internal/cart"
	"github.com/novathreads/storefront-backend/internal/session"
	"github.com/novathreads/storefront-backend/pkg/client"
	"github.com/novathreads/storefront-backend/pkg/config"
	"github.com/novathreads/storefront-backend/pkg/env"
	"github.com/novathreads/storefront-backend/pkg/kv"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/redis"
)

const (
	envAPIURL    = "STOREFRONT_API_URL"
	envStateFile = "STOREFRONT_STATE_FILE"
	envTimeout   = "STOREFRONT_CLIENT_TIMEOUT"
	envProfile   = "STOREFRONT_PROFILE"

	defaultAPIURL    = "http://localhost:5000/api"
	profileStateTTL  = 30 * 24 * time.Hour
	defaultStateDir  = ".novathreads"
	defaultStateFile = "state.json"
)

// app carries the flags and the lazily built client-side components shared
// by every command.
type app struct {
	apiURL    string
	statePath string
	profile   string
	timeout   time.Duration
	verbose   bool

	logg    *logger.Logger
	store   kv.Store
	base    *client.Client
	api     *client.Client
	session *session.Holder

	closers []func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the NovaThreads catalog, manage a cart and account from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", env.Get(envAPIURL, defaultAPIURL), "storefront API base URL")
	flags.StringVar(&a.statePath, "state", env.Get(envStateFile, ""), "path of the local state file (default ~/.novathreads/state.json)")
	flags.StringVar(&a.profile, "profile", env.Get(envProfile, ""), "keep cart and session in Redis under this device profile")
	flags.DurationVar(&a.timeout, "timeout", env.Duration(envTimeout, client.DefaultTimeout), "per-request timeout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log client diagnostics to stderr")

	root.AddCommand(
		newProductsCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newAuthCmd(a),
		newNewsletterCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	if a.logg == nil {
		level := "error"
		if a.verbose {
			level = "debug"
		}
		a.logg = logger.New(logger.Options{
			ServiceName: "storefront-cli",
			Level:       logger.ParseLevel(level),
			Output:      os.Stderr,
			Format:      "console",
		})
	}

	if a.store == nil {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		a.store = store
	}

	if a.base == nil {
		base, err := client.New(a.apiURL, client.WithTimeout(a.timeout))
		if err != nil {
			return err
		}
		a.base = base
	}
	a.session = session.New(a.store, a.base, a.logg)
	a.api = a.base.WithTokenSource(a.session)
	return nil
}

func (a *app) openStore(ctx context.Context) (kv.Store, error) {
	if a.profile != "" {
		var cfg config.RedisConfig
		if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
			return nil, fmt.Errorf("parsing redis config: %w", err)
		}
		rc, err := redis.New(ctx, cfg, a.logg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		return kv.NewRedisStore(rc, a.profile, profileStateTTL), nil
	}

	path := a.statePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		path = filepath.Join(home, defaultStateDir, defaultStateFile)
	}
	return kv.NewFileStore(path)
}

func (a *app) close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

func (a *app) cart(ctx context.Context) *cart.Store {
	return cart.Open(ctx, a.store, a.logg)
}
