package cli

import (
	"github.com/harktools/hark/internal/speech"
	"github.com/spf13/cobra"
)

func newAuthorizeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "authorize",
		Short:         "Request speech (and optionally microphone) permission and install models",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authorizeFn := app.authorizeFn
			if authorizeFn == nil {
				authorizeFn = app.authorizeEnvironment
			}

			status, err := authorizeFn(cmd.Context(), speech.AuthorizeOptions{
				Locale:            app.locale,
				RequestMicrophone: app.microphone,
				DownloadModel:     app.downloadModel,
			})
			if err != nil {
				return app.reportError(cmd, err)
			}

			return app.renderStatus(cmd, status)
		},
	}

	cmd.Flags().BoolVar(&app.microphone, "microphone", app.microphone, "Also request microphone permission")
	cmd.Flags().BoolVar(&app.downloadModel, "download-model", app.downloadModel, "Download and install the speech model for the locale")
	return cmd
}
