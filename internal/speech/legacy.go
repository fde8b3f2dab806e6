package speech

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// LegacyEngine adapts the single-shot platform recognizer. It issues one
// recognition request over the whole file and waits for the first final
// result, preferring on-device processing when the recognizer supports it.
type LegacyEngine struct {
	Platform Platform
	Logger   *zap.Logger
}

func (e *LegacyEngine) Name() string {
	return "legacy"
}

func (e *LegacyEngine) TranscribeFile(ctx context.Context, path, locale string) (string, error) {
	state, err := e.Platform.SpeechAuthorization(ctx)
	if err != nil {
		return "", fmt.Errorf("query speech permission: %w", err)
	}
	if state != AuthorizationAuthorized {
		return "", ErrSpeechNotAuthorized
	}

	probe, err := e.Platform.ProbeLegacy(ctx, locale)
	if err != nil {
		return "", fmt.Errorf("probe recognizer for %s: %w", locale, err)
	}
	if !probe.Available {
		return "", ErrSpeechNotAvailable
	}

	events, err := e.Platform.Recognize(ctx, path, locale, probe.SupportsOnDevice)
	if err != nil {
		return "", fmt.Errorf("start recognition: %w", err)
	}

	e.log().Debug("recognition started",
		zap.String("path", path),
		zap.String("locale", locale),
		zap.Bool("on_device", probe.SupportsOnDevice),
	)

	// The request may fire any number of non-final events before exactly one
	// final result or one error. Errors propagate immediately.
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-events:
			if !ok {
				return "", errors.New("recognition ended without a final result")
			}
			if event.Err != nil {
				return "", event.Err
			}
			if event.Final {
				return event.Text, nil
			}
			e.log().Debug("partial recognition result", zap.Int("chars", len(event.Text)))
		}
	}
}

func (e *LegacyEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
