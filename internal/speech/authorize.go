package speech

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type AuthorizeOptions struct {
	Locale            string
	RequestMicrophone bool
	DownloadModel     bool
}

// Authorize drives the permission prompts (speech always, microphone on
// request), optionally installs the locale's speech model, and returns a
// fresh status snapshot.
func Authorize(ctx context.Context, platform Platform, opts AuthorizeOptions, logger *zap.Logger) (EnvironmentStatus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	state, err := platform.RequestSpeechAuthorization(ctx)
	if err != nil {
		return EnvironmentStatus{}, fmt.Errorf("request speech permission: %w", err)
	}
	logger.Info("speech permission requested", zap.String("state", string(state)))

	if opts.RequestMicrophone {
		state, err := platform.RequestMicrophoneAuthorization(ctx)
		if err != nil {
			return EnvironmentStatus{}, fmt.Errorf("request microphone permission: %w", err)
		}
		logger.Info("microphone permission requested", zap.String("state", string(state)))
	}

	if opts.DownloadModel {
		if err := ensureModelInstalled(ctx, platform, opts.Locale, logger); err != nil {
			return EnvironmentStatus{}, err
		}
	}

	return Status(ctx, platform, opts.Locale, logger), nil
}

// ensureModelInstalled is idempotent: an already-installed model is a
// successful no-op.
func ensureModelInstalled(ctx context.Context, platform Platform, locale string, logger *zap.Logger) error {
	if !platform.ModernSupported() {
		return ErrTranscriberNotAvailable
	}

	supported, err := platform.SupportedLocales(ctx)
	if err != nil {
		return fmt.Errorf("query supported locales: %w", err)
	}

	resolved, ok := ResolveLocale(locale, supported)
	if !ok {
		return &LocaleUnsupportedError{Locale: locale}
	}

	installed, err := platform.InstalledLocales(ctx)
	if err != nil {
		return fmt.Errorf("query installed models: %w", err)
	}
	if containsLocale(installed, resolved) {
		logger.Info("speech model already installed", zap.String("locale", resolved))
		return nil
	}

	logger.Info("installing speech model", zap.String("locale", resolved))
	if err := platform.InstallModel(ctx, resolved); err != nil {
		return &ModelInstallError{Locale: resolved, Err: err}
	}

	return nil
}
