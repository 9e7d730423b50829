package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/devpolicy/internal/policy"
)

// UIDInfo is the decomposition of one uid.
type UIDInfo struct {
	UID    int `json:"uid"`
	UserID int `json:"user_id"`
	AppID  int `json:"app_id"`
}

// UIDInfos is the result of the appid command.
type UIDInfos []UIDInfo

// RenderText implements TextRenderer.
func (u UIDInfos) RenderText(w io.Writer) {
	for _, info := range u {
		fmt.Fprintf(w, "uid=%d user=%d app=%d\n", info.UID, info.UserID, info.AppID)
	}
}

// NewAppIDCommand creates the appid command.
func NewAppIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "appid <uid>...",
		Short: "Split uids into user and app IDs",
		Long: `Split each uid into its user ID and per-user app ID.

Examples:
  devpolicy appid 10123 1010123`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make(UIDInfos, 0, len(args))
			for _, arg := range args {
				uid, err := strconv.Atoi(arg)
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid uid %q", arg))
				}
				infos = append(infos, UIDInfo{
					UID:    uid,
					UserID: policy.UserID(uid),
					AppID:  policy.AppID(uid),
				})
			}
			return newFormatter(cmd, rootOpts).Success(infos)
		},
	}
}
