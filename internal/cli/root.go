package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harktools/hark/internal/input"
	"github.com/harktools/hark/internal/logging"
	"github.com/harktools/hark/internal/speech"
	"github.com/harktools/hark/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type appState struct {
	verbose    bool
	logJSON    bool
	noProgress bool
	format     string
	locale     string
	engine     string

	microphone    bool
	downloadModel bool

	logger *zap.Logger
	stdin  io.Reader

	platformFn   func() (speech.Platform, error)
	resolveFn    func(ctx context.Context, source string) (input.Resolved, error)
	transcribeFn func(ctx context.Context, audioPath string) (string, error)
	analyzeFn    func(ctx context.Context, audioPath string) (speech.Analysis, error)
	statusFn     func(ctx context.Context) (speech.EnvironmentStatus, error)
	authorizeFn  func(ctx context.Context, opts speech.AuthorizeOptions) (speech.EnvironmentStatus, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		format: formatText,
		locale: "en-US",
		engine: "auto",
	}

	cmd := &cobra.Command{
		Use:           "hark",
		Short:         "Transcribe and analyze audio with the on-device speech engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if app.format != formatText && app.format != formatJSON {
				return fmt.Errorf("unknown output format %q (expected text or json)", app.format)
			}

			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.logJSON})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.locale = speech.NormalizeLocale(app.locale)
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindOutputFlags(cmd, app)
	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newAnalyzeCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newAuthorizeCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().StringVar(&app.format, "format", app.format, "Output format: text|json")
	cmd.PersistentFlags().StringVar(&app.locale, "locale", app.locale, "BCP 47 locale for transcription and status")
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.logJSON, "log-json", app.logJSON, "Emit logs as JSON")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func (a *appState) platform() (speech.Platform, error) {
	if a.platformFn != nil {
		return a.platformFn()
	}
	return speech.NewHostBridge(a.log())
}

func (a *appState) resolveInput(ctx context.Context, source string) (input.Resolved, error) {
	resolver := &input.Resolver{
		Stdin:      a.stdin,
		NoProgress: !a.progressEnabled(),
		Logger:     a.log(),
	}
	return resolver.Resolve(ctx, source)
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (string, error) {
	selection, err := speech.ParseSelection(a.engine)
	if err != nil {
		return "", err
	}

	platform, err := a.platform()
	if err != nil {
		return "", err
	}

	resolved := selection
	if selection == speech.SelectionAuto {
		resolved = selection.Resolve(speech.Status(ctx, platform, a.locale, a.log()))
	}

	engine, err := speech.NewEngine(resolved, platform, a.log())
	if err != nil {
		return "", err
	}

	a.log().Info("transcribing...",
		zap.String("audio", audioPath),
		zap.String("engine", engine.Name()),
		zap.String("locale", a.locale),
	)
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	text, err := engine.TranscribeFile(ctx, audioPath, a.locale)
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return "", err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)))

	return text, nil
}

func (a *appState) analyzeAudio(ctx context.Context, audioPath string) (speech.Analysis, error) {
	platform, err := a.platform()
	if err != nil {
		return speech.Analysis{}, err
	}

	stopSpinner := startSpinner(a.progressEnabled(), "Analyzing")
	analysis, err := platform.Analyze(ctx, audioPath)
	stopSpinner()
	return analysis, err
}

func (a *appState) environmentStatus(ctx context.Context) (speech.EnvironmentStatus, error) {
	platform, err := a.platform()
	if err != nil {
		return speech.EnvironmentStatus{}, err
	}
	return speech.Status(ctx, platform, a.locale, a.log()), nil
}

func (a *appState) authorizeEnvironment(ctx context.Context, opts speech.AuthorizeOptions) (speech.EnvironmentStatus, error) {
	platform, err := a.platform()
	if err != nil {
		return speech.EnvironmentStatus{}, err
	}
	return speech.Authorize(ctx, platform, opts, a.log())
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress || a.format == formatJSON {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
