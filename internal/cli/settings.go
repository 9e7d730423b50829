package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/devpolicy/internal/config"
	"github.com/roach88/devpolicy/internal/settings"
	"github.com/roach88/devpolicy/internal/store"
)

// SettingView is one setting as the CLI reports it. Stored is false when
// the value comes from the config defaults.
type SettingView struct {
	Key    settings.Key `json:"key"`
	Value  bool         `json:"value"`
	Stored bool         `json:"stored"`
	Seq    int64        `json:"seq,omitempty"`
}

// SettingsList is the result of "settings list".
type SettingsList []SettingView

// RenderText implements TextRenderer.
func (l SettingsList) RenderText(w io.Writer) {
	for _, v := range l {
		v.RenderText(w)
	}
}

// RenderText implements TextRenderer.
func (v SettingView) RenderText(w io.Writer) {
	origin := "default"
	if v.Stored {
		origin = fmt.Sprintf("seq %d", v.Seq)
	}
	fmt.Fprintf(w, "%-32s %-5t (%s)\n", v.Key, v.Value, origin)
}

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write policy settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List every policy setting",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsList(cmd, rootOpts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "get <key>",
		Short:         "Show one policy setting",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsGet(cmd, rootOpts, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <true|false>",
		Short: "Write one policy setting",
		Long: `Write one policy setting to the database.

A running daemon does not see writes made by this command until it
restarts; use PUT /v1/settings/{key} to change a live daemon.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(cmd, rootOpts, args[0], args[1])
		},
	})

	return cmd
}

func parseKeyArg(arg string) (settings.Key, error) {
	key, ok := settings.ParseKey(arg)
	if !ok {
		return "", NewExitError(ExitCommandError, fmt.Sprintf("unknown setting %q (want one of %v)", arg, settings.Keys()))
	}
	return key, nil
}

// settingView merges the stored row for key with the config default.
func settingView(cmd *cobra.Command, st *store.Store, cfg config.Config, key settings.Key) (SettingView, error) {
	s, err := st.GetSetting(cmd.Context(), key)
	if errors.Is(err, store.ErrNotSet) {
		return SettingView{Key: key, Value: cfg.Settings.Values()[key]}, nil
	}
	if err != nil {
		return SettingView{}, WrapExitError(ExitCommandError, "failed to read setting", err)
	}
	return SettingView{Key: key, Value: s.Value, Stored: true, Seq: s.Seq}, nil
}

func runSettingsList(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	list := make(SettingsList, 0, len(settings.Keys()))
	for _, key := range settings.Keys() {
		v, err := settingView(cmd, st, cfg, key)
		if err != nil {
			return err
		}
		list = append(list, v)
	}
	return newFormatter(cmd, opts).Success(list)
}

func runSettingsGet(cmd *cobra.Command, opts *RootOptions, arg string) error {
	key, err := parseKeyArg(arg)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := settingView(cmd, st, cfg, key)
	if err != nil {
		return err
	}
	return newFormatter(cmd, opts).Success(v)
}

func runSettingsSet(cmd *cobra.Command, opts *RootOptions, arg, rawValue string) error {
	key, err := parseKeyArg(arg)
	if err != nil {
		return err
	}
	value, err := strconv.ParseBool(rawValue)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid value %q: must be true or false", rawValue))
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	seq, err := st.SetSetting(cmd.Context(), key, value, store.SourceCLI)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write setting", err)
	}

	f := newFormatter(cmd, opts)
	f.VerboseLog("wrote %s=%t to %s", key, value, cfg.Database)
	return f.Success(SettingView{Key: key, Value: value, Stored: true, Seq: seq})
}
