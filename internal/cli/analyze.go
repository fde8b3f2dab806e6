package cli

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <source>",
		Short: "Analyze voice metrics (pitch, tempo, volume, jitter, shimmer) of an audio source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveFn := app.resolveFn
			if resolveFn == nil {
				resolveFn = app.resolveInput
			}

			analyzeFn := app.analyzeFn
			if analyzeFn == nil {
				analyzeFn = app.analyzeAudio
			}

			source := args[0]
			if err := validateSourceFormat(source); err != nil {
				return app.reportError(cmd, err)
			}

			resolved, err := resolveFn(cmd.Context(), source)
			if err != nil {
				return app.reportError(cmd, err)
			}
			defer resolved.Cleanup()

			analysis, err := analyzeFn(cmd.Context(), resolved.Path)
			if err != nil {
				return app.reportError(cmd, err)
			}

			return app.renderAnalysis(cmd, analysis)
		},
	}
}
