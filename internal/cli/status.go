package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show permission and engine readiness for the current locale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statusFn := app.statusFn
			if statusFn == nil {
				statusFn = app.environmentStatus
			}

			status, err := statusFn(cmd.Context())
			if err != nil {
				return app.reportError(cmd, err)
			}

			return app.renderStatus(cmd, status)
		},
	}
}
