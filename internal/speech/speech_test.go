package speech

import (
	"context"
	"errors"
	"sync/atomic"
)

// fakePlatform implements Platform for tests. Zero value: everything denied
// and unavailable.
type fakePlatform struct {
	speechState AuthorizationState
	micState    AuthorizationState
	speechErr   error
	micErr      error

	requestedSpeech atomic.Int64
	requestedMic    atomic.Int64
	requestState    AuthorizationState

	legacyProbe LegacyProbe
	legacyErr   error
	events      []RecognitionEvent
	recognized  atomic.Int64

	modern         bool
	supported      []string
	installed      []string
	supportedErr   error
	installErr     error
	installedCalls atomic.Int64

	chunks     []string
	sessionErr error
	openErr    error

	analysis   Analysis
	analyzeErr error
}

func (f *fakePlatform) SpeechAuthorization(context.Context) (AuthorizationState, error) {
	if f.speechErr != nil {
		return AuthorizationUnknown, f.speechErr
	}
	if f.speechState == "" {
		return AuthorizationNotDetermined, nil
	}
	return f.speechState, nil
}

func (f *fakePlatform) RequestSpeechAuthorization(context.Context) (AuthorizationState, error) {
	f.requestedSpeech.Add(1)
	if f.requestState != "" {
		f.speechState = f.requestState
	}
	return f.speechState, nil
}

func (f *fakePlatform) MicrophoneAuthorization(context.Context) (AuthorizationState, error) {
	if f.micErr != nil {
		return AuthorizationUnknown, f.micErr
	}
	if f.micState == "" {
		return AuthorizationNotDetermined, nil
	}
	return f.micState, nil
}

func (f *fakePlatform) RequestMicrophoneAuthorization(context.Context) (AuthorizationState, error) {
	f.requestedMic.Add(1)
	return f.micState, nil
}

func (f *fakePlatform) ProbeLegacy(context.Context, string) (LegacyProbe, error) {
	if f.legacyErr != nil {
		return LegacyProbe{}, f.legacyErr
	}
	return f.legacyProbe, nil
}

func (f *fakePlatform) Recognize(context.Context, string, string, bool) (<-chan RecognitionEvent, error) {
	f.recognized.Add(1)
	events := make(chan RecognitionEvent, len(f.events))
	for _, event := range f.events {
		events <- event
	}
	close(events)
	return events, nil
}

func (f *fakePlatform) ModernSupported() bool {
	return f.modern
}

func (f *fakePlatform) SupportedLocales(context.Context) ([]string, error) {
	if f.supportedErr != nil {
		return nil, f.supportedErr
	}
	return f.supported, nil
}

func (f *fakePlatform) InstalledLocales(context.Context) ([]string, error) {
	return f.installed, nil
}

func (f *fakePlatform) InstallModel(_ context.Context, locale string) error {
	f.installedCalls.Add(1)
	if f.installErr != nil {
		return f.installErr
	}
	f.installed = append(f.installed, locale)
	return nil
}

func (f *fakePlatform) OpenSession(context.Context, string, string) (Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}

	results := make(chan string, len(f.chunks))
	for _, chunk := range f.chunks {
		results <- chunk
	}
	close(results)

	return &fakeSession{results: results, err: f.sessionErr}, nil
}

func (f *fakePlatform) Analyze(context.Context, string) (Analysis, error) {
	if f.analyzeErr != nil {
		return Analysis{}, f.analyzeErr
	}
	return f.analysis, nil
}

type fakeSession struct {
	results chan string
	err     error
}

func (s *fakeSession) Results() <-chan string {
	return s.results
}

func (s *fakeSession) Wait() error {
	return s.err
}

var errProbeBroken = errors.New("helper unreachable")
