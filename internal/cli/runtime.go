package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/devpolicy/internal/config"
	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/resolver"
	"github.com/roach88/devpolicy/internal/store"
)

// openStore opens cfg.Database. With mustExist, a missing file is a command
// error rather than a fresh database.
func openStore(cfg config.Config, mustExist bool, opts ...store.Option) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", cfg.Database))
		}
	}
	st, err := store.Open(cfg.Database, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// buildRegistry creates and initializes a registry over st, then resolves
// the configured bindings from cfg.Packages.
func buildRegistry(cfg config.Config, st *store.Store, logger *slog.Logger, opts ...resolver.Option) (*policy.Registry, *resolver.Resolver) {
	reg := policy.New(policy.WithLogger(logger))
	// Placeholders stand in for the managers until the host wires real ones.
	reg.Initialize(policy.PlaceholderCollaborators(st.Settings()))

	opts = append([]resolver.Option{resolver.WithLogger(logger)}, opts...)
	res := resolver.New(reg, cfg.Bindings(), opts...)
	res.ResolveInitial(resolver.StaticLookup(cfg.Packages))

	return reg, res
}
