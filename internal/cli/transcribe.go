package cli

import (
	"net/url"
	"strings"

	"github.com/harktools/hark/internal/audio"
	"github.com/harktools/hark/internal/input"
	"github.com/spf13/cobra"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <source>",
		Short: "Transcribe an audio source to text",
		Long: "Transcribe an audio source to text. The source may be a local path, " +
			"an http(s) URL, a tg:<id> or telegram://<id> bot file reference, or - for stdin.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveFn := app.resolveFn
			if resolveFn == nil {
				resolveFn = app.resolveInput
			}

			transcribeFn := app.transcribeFn
			if transcribeFn == nil {
				transcribeFn = app.transcribeAudio
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

			text, err := transcribeFn(cmd.Context(), resolved.Path)
			if err != nil {
				return app.reportError(cmd, err)
			}

			return app.renderTranscript(cmd, text)
		},
	}

	cmd.Flags().StringVar(&app.engine, "engine", app.engine, "Transcription engine: auto|legacy|modern")
	return cmd
}

// validateSourceFormat rejects local and file-scheme sources with an
// unsupported extension before the engine ever sees them. Remote sources
// are validated by the resolver ahead of any download, and stdin has no
// extension to check.
func validateSourceFormat(source string) error {
	if source == "-" {
		return nil
	}

	if u, err := url.Parse(source); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "tg", "telegram":
			return nil
		}
	}

	if _, ok := audio.Classify(source); !ok {
		return &input.UnsupportedFormatError{Path: source, Supported: audio.Extensions()}
	}

	return nil
}
