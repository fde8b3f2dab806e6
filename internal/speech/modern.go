package speech

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ModernEngine adapts the streaming analyzer-based recognizer. It resolves
// the locale against the platform's supported set, requires the locale's
// model to be installed, and folds incremental results into one transcript.
type ModernEngine struct {
	Platform Platform
	Logger   *zap.Logger
}

func (e *ModernEngine) Name() string {
	return "modern"
}

func (e *ModernEngine) TranscribeFile(ctx context.Context, path, locale string) (string, error) {
	if !e.Platform.ModernSupported() {
		return "", ErrTranscriberNotAvailable
	}

	state, err := e.Platform.SpeechAuthorization(ctx)
	if err != nil {
		return "", fmt.Errorf("query speech permission: %w", err)
	}
	if state != AuthorizationAuthorized {
		return "", ErrSpeechNotAuthorized
	}

	supported, err := e.Platform.SupportedLocales(ctx)
	if err != nil {
		return "", fmt.Errorf("query supported locales: %w", err)
	}

	resolved, ok := ResolveLocale(locale, supported)
	if !ok {
		return "", &LocaleUnsupportedError{Locale: locale}
	}

	installed, err := e.Platform.InstalledLocales(ctx)
	if err != nil {
		return "", fmt.Errorf("query installed models: %w", err)
	}
	if !containsLocale(installed, resolved) {
		return "", &ModelNotInstalledError{Locale: resolved}
	}

	session, err := e.Platform.OpenSession(ctx, path, resolved)
	if err != nil {
		return "", fmt.Errorf("open transcription session: %w", err)
	}

	e.log().Debug("streaming session opened", zap.String("path", path), zap.String("locale", resolved))

	// Fold the bounded result stream; the producer finishes automatically
	// once the source file is exhausted.
	var transcript strings.Builder
	for chunk := range session.Results() {
		transcript.WriteString(chunk)
	}

	if err := session.Wait(); err != nil {
		return "", fmt.Errorf("transcription session: %w", err)
	}

	text := strings.TrimSpace(transcript.String())
	if text == "" {
		return "", ErrNoFinalResult
	}

	return text, nil
}

func (e *ModernEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
