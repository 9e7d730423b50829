package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/devpolicy/internal/policy"
)

// StatusResult is the registry state rebuilt from config and the store.
type StatusResult struct {
	Database string            `json:"database"`
	Bindings map[string]string `json:"bindings"`
	State    policy.Snapshot   `json:"state"`
}

// RenderText implements TextRenderer.
func (r StatusResult) RenderText(w io.Writer) {
	s := r.State
	fmt.Fprintf(w, "database:          %s\n", r.Database)
	fmt.Fprintf(w, "ready:             %t\n", s.Ready)
	fmt.Fprintf(w, "privileged:        %s uid=%d app=%d\n", orNone(r.Bindings[policy.PrivilegedApp.String()]), s.PrivilegedUID, s.PrivilegedAppID)
	fmt.Fprintf(w, "audio enhancement: %s uid=%d app=%d\n", orNone(r.Bindings[policy.AudioEnhancementApp.String()]), s.AudioUID, s.AudioAppID)
	fmt.Fprintf(w, "hide idle from privileged app:   %t\n", s.HideIdleFromPrivilegedApp)
	fmt.Fprintf(w, "unrestricted network while idle: %t\n", s.UnrestrictedNetworkWhileIdle)
	fmt.Fprintf(w, "aggressive idle:                 %t\n", s.AggressiveIdle)
	fmt.Fprintf(w, "extreme idle:                    %t\n", s.ExtremeIdle)
	fmt.Fprintf(w, "energy save mode:                %t\n", s.EnergySaveMode)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the policy state",
		Long: `Rebuild the registry from the config and the settings database and
print its snapshot. Readiness is not persisted, so a rebuilt registry is
never ready.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, rootOpts)
		},
	}
}

func runStatus(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	logger := newLogger(cmd.ErrOrStderr(), opts, slog.LevelWarn)
	reg, res := buildRegistry(cfg, st, logger)

	bindings := make(map[string]string, len(policy.Bindings))
	for b, pkg := range res.Packages() {
		bindings[b.String()] = pkg
	}

	return newFormatter(cmd, opts).Success(StatusResult{
		Database: cfg.Database,
		Bindings: bindings,
		State:    reg.Snapshot(),
	})
}
