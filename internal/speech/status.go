package speech

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Permissions struct {
	SpeechRecognition AuthorizationState `json:"speech_recognition"`
	Microphone        AuthorizationState `json:"microphone"`
}

type LegacyEngineStatus struct {
	// Available reports whether the legacy recognizer subsystem could be
	// reached at all.
	Available bool `json:"available"`

	// RecognizerAvailable reports whether a recognizer exists and is marked
	// available for the queried locale.
	RecognizerAvailable bool `json:"recognizer_available"`

	SupportsOnDevice bool `json:"supports_on_device"`
}

type ModernEngineStatus struct {
	// Available reports whether this platform/build ships the streaming
	// transcriber at all.
	Available bool `json:"available"`

	// SupportedLocale is the platform's spelling of the queried locale, or
	// empty when the locale has no equivalent in the supported set.
	SupportedLocale string `json:"supported_locale,omitempty"`

	ModelInstalled bool `json:"model_installed"`
}

type Engines struct {
	Legacy LegacyEngineStatus `json:"legacy"`
	Modern ModernEngineStatus `json:"modern"`
}

// EnvironmentStatus is a point-in-time readiness snapshot. It is recomputed
// on every query and never cached: permissions and models can change
// externally between calls.
type EnvironmentStatus struct {
	OK          bool        `json:"ok"`
	Locale      string      `json:"locale"`
	Permissions Permissions `json:"permissions"`
	Engines     Engines     `json:"engines"`
}

// Status merges four independent facts: speech permission, microphone
// permission, the legacy recognizer probe, and the modern locale/model
// probe. The probes share no mutable state and run concurrently. Probe
// failures degrade to unknown/unavailable with a warning instead of failing
// the query; status reports facts, it is not a health check.
func Status(ctx context.Context, platform Platform, locale string, logger *zap.Logger) EnvironmentStatus {
	if logger == nil {
		logger = zap.NewNop()
	}

	status := EnvironmentStatus{Locale: NormalizeLocale(locale)}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		status.Permissions.SpeechRecognition = queryAuthorization(ctx, platform.SpeechAuthorization, "speech", logger)
	}()

	go func() {
		defer wg.Done()
		status.Permissions.Microphone = queryAuthorization(ctx, platform.MicrophoneAuthorization, "microphone", logger)
	}()

	go func() {
		defer wg.Done()
		status.Engines.Legacy = probeLegacyEngine(ctx, platform, locale, logger)
	}()

	go func() {
		defer wg.Done()
		status.Engines.Modern = probeModernEngine(ctx, platform, locale, logger)
	}()

	wg.Wait()

	status.OK = computeReady(status)
	return status
}

func queryAuthorization(ctx context.Context, query func(context.Context) (AuthorizationState, error), resource string, logger *zap.Logger) AuthorizationState {
	state, err := query(ctx)
	if err != nil {
		logger.Warn("permission query failed", zap.String("resource", resource), zap.Error(err))
		return AuthorizationUnknown
	}
	return state
}

func probeLegacyEngine(ctx context.Context, platform Platform, locale string, logger *zap.Logger) LegacyEngineStatus {
	probe, err := platform.ProbeLegacy(ctx, locale)
	if err != nil {
		logger.Warn("legacy recognizer probe failed", zap.String("locale", locale), zap.Error(err))
		return LegacyEngineStatus{}
	}

	return LegacyEngineStatus{
		Available:           true,
		RecognizerAvailable: probe.Available,
		SupportsOnDevice:    probe.SupportsOnDevice,
	}
}

func probeModernEngine(ctx context.Context, platform Platform, locale string, logger *zap.Logger) ModernEngineStatus {
	if !platform.ModernSupported() {
		return ModernEngineStatus{}
	}

	status := ModernEngineStatus{Available: true}

	supported, err := platform.SupportedLocales(ctx)
	if err != nil {
		logger.Warn("supported locale query failed", zap.Error(err))
		return status
	}

	resolved, ok := ResolveLocale(locale, supported)
	if !ok {
		return status
	}
	status.SupportedLocale = resolved

	installed, err := platform.InstalledLocales(ctx)
	if err != nil {
		logger.Warn("installed model query failed", zap.Error(err))
		return status
	}
	status.ModelInstalled = containsLocale(installed, resolved)

	return status
}

// computeReady: at least one engine is simultaneously permitted, available,
// and (for the modern engine) has its model installed.
func computeReady(status EnvironmentStatus) bool {
	if status.Permissions.SpeechRecognition != AuthorizationAuthorized {
		return false
	}

	legacyReady := status.Engines.Legacy.Available && status.Engines.Legacy.RecognizerAvailable
	modernReady := status.Engines.Modern.Available && status.Engines.Modern.ModelInstalled
	return legacyReady || modernReady
}
