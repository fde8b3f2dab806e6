// Package speech orchestrates the platform speech engines: permission and
// model probing, legacy/modern engine selection, and the transcription and
// voice-analysis capability interfaces.
package speech

import "context"

// AuthorizationState is an opaque permission state reported by the platform.
// No ordering between states is assumed; permissions can be revoked
// externally between any two queries.
type AuthorizationState string

const (
	AuthorizationAuthorized    AuthorizationState = "authorized"
	AuthorizationDenied        AuthorizationState = "denied"
	AuthorizationRestricted    AuthorizationState = "restricted"
	AuthorizationNotDetermined AuthorizationState = "not_determined"
	AuthorizationUnknown       AuthorizationState = "unknown"
)

// RecognitionEvent is one callback of a legacy single-shot recognition
// request. Zero or more non-final events may precede exactly one final
// event or one error.
type RecognitionEvent struct {
	Text  string
	Final bool
	Err   error
}

// Session is a modern streaming transcription session over a single file.
// Results yields incremental text chunks and is closed when the source is
// exhausted; Wait blocks until the session has fully concluded.
type Session interface {
	Results() <-chan string
	Wait() error
}

// LegacyProbe is the result of constructing a legacy recognizer for a
// locale. Available false means no recognizer exists for the locale, which
// is an unavailability fact, not an error.
type LegacyProbe struct {
	Available        bool
	SupportsOnDevice bool
}

// Analysis carries acoustic voice metrics. Every field is nullable because
// the analysis engine may be unimplemented for a given build.
type Analysis struct {
	Pitch   *float64 `json:"pitch"`
	Tempo   *float64 `json:"tempo"`
	Volume  *float64 `json:"volume"`
	Jitter  *float64 `json:"jitter"`
	Shimmer *float64 `json:"shimmer"`
}

// Platform is the narrow capability interface to the on-device speech
// subsystem. The engine itself (inference, acoustics) lives behind it.
type Platform interface {
	SpeechAuthorization(ctx context.Context) (AuthorizationState, error)
	RequestSpeechAuthorization(ctx context.Context) (AuthorizationState, error)
	MicrophoneAuthorization(ctx context.Context) (AuthorizationState, error)
	RequestMicrophoneAuthorization(ctx context.Context) (AuthorizationState, error)

	// Legacy single-shot recognizer.
	ProbeLegacy(ctx context.Context, locale string) (LegacyProbe, error)
	Recognize(ctx context.Context, path, locale string, onDevice bool) (<-chan RecognitionEvent, error)

	// Modern streaming analyzer-based recognizer.
	ModernSupported() bool
	SupportedLocales(ctx context.Context) ([]string, error)
	InstalledLocales(ctx context.Context) ([]string, error)
	InstallModel(ctx context.Context, locale string) error
	OpenSession(ctx context.Context, path, locale string) (Session, error)

	Analyze(ctx context.Context, path string) (Analysis, error)
}
