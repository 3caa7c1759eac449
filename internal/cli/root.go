// Package cli implements the tablectl admin commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/sola-table/internal/auth"
	"github.com/Shivanand-hulikatti/sola-table/internal/config"
	"github.com/Shivanand-hulikatti/sola-table/internal/logger"
	"github.com/Shivanand-hulikatti/sola-table/internal/model"
	"github.com/Shivanand-hulikatti/sola-table/internal/repository"
	"github.com/Shivanand-hulikatti/sola-table/internal/service"
)

// RootOptions holds global flags and the lazily opened backend shared by all commands.
type RootOptions struct {
	Kind string

	// Store overrides the backend selected by the environment (for testing).
	Store *repository.Store
	// Config overrides environment configuration (for testing).
	Config *config.Config
	// Now overrides the service clock (for testing).
	Now func() time.Time
	// NewID overrides record id generation (for testing).
	NewID func() string

	log      *slog.Logger
	ownStore bool
	svc      *service.TableService
}

// NewRootCommand creates the root command for tablectl.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "tablectl",
		Short: "Administer tables and meetups",
		Long:  "Create, join and inspect table and meetup records directly against the configured storage backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseKind(opts.Kind); err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Kind, "kind", string(model.KindTable), "record kind (table|meetup)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewJoinCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func parseKind(s string) (model.Kind, error) {
	kind := model.Kind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid kind %q: must be table or meetup", s)
	}
	return kind, nil
}

func (o *RootOptions) config() (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	o.Config = cfg
	return cfg, nil
}

// service opens the backend on first use and returns a TableService over it.
func (o *RootOptions) service(ctx context.Context, stderr io.Writer) (*service.TableService, error) {
	if o.svc != nil {
		return o.svc, nil
	}

	if o.log == nil {
		level := "warn"
		if o.Config != nil {
			level = o.Config.LogLevel
		}
		o.log = logger.New(stderr, level)
	}

	if o.Store == nil {
		cfg, err := o.config()
		if err != nil {
			return nil, err
		}
		store, err := repository.Open(ctx, cfg, o.log)
		if err != nil {
			return nil, err
		}
		o.Store = store
		o.ownStore = true
	}

	svcOpts := []service.Option{service.WithLogger(o.log)}
	if o.Now != nil {
		svcOpts = append(svcOpts, service.WithClock(o.Now))
	}
	if o.NewID != nil {
		svcOpts = append(svcOpts, service.WithIDGenerator(o.NewID))
	}
	o.svc = service.NewTableService(o.Store.Tables, svcOpts...)
	return o.svc, nil
}

func (o *RootOptions) verifier() (*auth.Verifier, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is not set")
	}
	v := auth.NewVerifier([]byte(cfg.AuthSecret), cfg.AuthIssuer)
	if o.Now != nil {
		v.WithClock(o.Now)
	}
	return v, nil
}

// Close releases a backend opened by the commands. Injected stores are left open.
func (o *RootOptions) Close() error {
	if !o.ownStore {
		return nil
	}
	o.ownStore = false
	o.svc = nil
	store := o.Store
	o.Store = nil
	return store.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
