package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"auto", "legacy", "modern"} {
		sel, err := ParseSelection(value)
		require.NoError(t, err)
		require.Equal(t, Selection(value), sel)
	}

	_, err := ParseSelection("turbo")
	require.Error(t, err)
}

func TestSelectionResolveAuto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modern ModernEngineStatus
		want   Selection
	}{
		{
			name:   "modern supported and installed",
			modern: ModernEngineStatus{Available: true, ModelInstalled: true},
			want:   SelectionModern,
		},
		{
			name:   "modern supported but model missing",
			modern: ModernEngineStatus{Available: true},
			want:   SelectionLegacy,
		},
		{
			name:   "modern unsupported",
			modern: ModernEngineStatus{ModelInstalled: true},
			want:   SelectionLegacy,
		},
		{
			name: "nothing available falls back to legacy",
			want: SelectionLegacy,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status := EnvironmentStatus{Engines: Engines{Modern: tt.modern}}
			require.Equal(t, tt.want, SelectionAuto.Resolve(status))
		})
	}
}

func TestSelectionResolveExplicitBypassesStatus(t *testing.T) {
	t.Parallel()

	// Explicit choices are honored even when the status says otherwise.
	status := EnvironmentStatus{Engines: Engines{Modern: ModernEngineStatus{Available: true, ModelInstalled: true}}}
	require.Equal(t, SelectionLegacy, SelectionLegacy.Resolve(status))
	require.Equal(t, SelectionModern, SelectionModern.Resolve(EnvironmentStatus{}))
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}

	engine, err := NewEngine(SelectionLegacy, platform, nil)
	require.NoError(t, err)
	require.Equal(t, "legacy", engine.Name())

	engine, err = NewEngine(SelectionModern, platform, nil)
	require.NoError(t, err)
	require.Equal(t, "modern", engine.Name())

	_, err = NewEngine(SelectionAuto, platform, nil)
	require.Error(t, err)
}

func TestLegacyEngineWaitsForFinalResult(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		legacyProbe: LegacyProbe{Available: true, SupportsOnDevice: true},
		events: []RecognitionEvent{
			{Text: "hello"},
			{Text: "hello wor"},
			{Text: "hello world", Final: true},
			{Text: "ignored trailing"},
		},
	}

	engine := &LegacyEngine{Platform: platform}
	text, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestLegacyEnginePropagatesErrorImmediately(t *testing.T) {
	t.Parallel()

	recognitionErr := errors.New("audio session interrupted")
	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		legacyProbe: LegacyProbe{Available: true},
		events: []RecognitionEvent{
			{Text: "partial"},
			{Err: recognitionErr},
			{Text: "never seen", Final: true},
		},
	}

	engine := &LegacyEngine{Platform: platform}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, recognitionErr)
}

func TestLegacyEngineNotAuthorized(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{speechState: AuthorizationDenied, legacyProbe: LegacyProbe{Available: true}}
	engine := &LegacyEngine{Platform: platform}

	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, ErrSpeechNotAuthorized)
	require.Zero(t, platform.recognized.Load())
}

func TestLegacyEngineRecognizerUnavailable(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{speechState: AuthorizationAuthorized}
	engine := &LegacyEngine{Platform: platform}

	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, ErrSpeechNotAvailable)
}

func TestModernEngineAccumulatesChunks(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		modern:      true,
		supported:   []string{"en_US"},
		installed:   []string{"en_US"},
		chunks:      []string{"the quick ", "brown fox ", "jumps"},
	}

	engine := &ModernEngine{Platform: platform}
	text, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-us")
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox jumps", text)
}

func TestModernEngineEmptyTranscript(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		modern:      true,
		supported:   []string{"en_US"},
		installed:   []string{"en_US"},
	}

	engine := &ModernEngine{Platform: platform}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, ErrNoFinalResult)
}

func TestModernEngineLocaleUnsupported(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		modern:      true,
		supported:   []string{"en_US"},
	}

	engine := &ModernEngine{Platform: platform}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "ja-JP")

	var localeErr *LocaleUnsupportedError
	require.ErrorAs(t, err, &localeErr)
	require.Equal(t, "ja-JP", localeErr.Locale)
}

func TestModernEngineModelNotInstalled(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		modern:      true,
		supported:   []string{"en_US"},
	}

	engine := &ModernEngine{Platform: platform}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")

	var notInstalled *ModelNotInstalledError
	require.ErrorAs(t, err, &notInstalled)
	require.Equal(t, "en_US", notInstalled.Locale)
}

func TestModernEngineUnsupportedPlatform(t *testing.T) {
	t.Parallel()

	engine := &ModernEngine{Platform: &fakePlatform{speechState: AuthorizationAuthorized}}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, ErrTranscriberNotAvailable)
}

func TestModernEngineSessionFailure(t *testing.T) {
	t.Parallel()

	sessionErr := errors.New("analyzer crashed")
	platform := &fakePlatform{
		speechState: AuthorizationAuthorized,
		modern:      true,
		supported:   []string{"en_US"},
		installed:   []string{"en_US"},
		chunks:      []string{"some text"},
		sessionErr:  sessionErr,
	}

	engine := &ModernEngine{Platform: platform}
	_, err := engine.TranscribeFile(context.Background(), "/tmp/a.wav", "en-US")
	require.ErrorIs(t, err, sessionErr)
}
