package speech

import (
	"errors"
	"fmt"
)

var (
	// ErrSpeechNotAuthorized indicates the speech recognition permission is
	// not granted for this process.
	ErrSpeechNotAuthorized = errors.New("speech recognition is not authorized; run `hark authorize`")

	// ErrSpeechNotAvailable indicates no legacy recognizer exists or it is
	// currently unavailable for the requested locale.
	ErrSpeechNotAvailable = errors.New("speech recognizer is not available for this locale")

	// ErrNoFinalResult indicates a streaming session concluded without
	// producing any text.
	ErrNoFinalResult = errors.New("transcription finished without producing text")

	// ErrTranscriberNotAvailable indicates the modern streaming transcriber
	// is not supported by this platform or build.
	ErrTranscriberNotAvailable = errors.New("streaming transcriber is not supported on this platform")
)

// LocaleUnsupportedError reports a locale with no equivalent in the modern
// engine's supported set.
type LocaleUnsupportedError struct {
	Locale string
}

func (e *LocaleUnsupportedError) Error() string {
	return fmt.Sprintf("locale %q is not supported by the streaming transcriber", e.Locale)
}

// ModelNotInstalledError reports a resolved locale whose speech model has
// not been installed yet.
type ModelNotInstalledError struct {
	Locale string
}

func (e *ModelNotInstalledError) Error() string {
	return fmt.Sprintf("speech model for %q is not installed; run `hark authorize --download-model`", e.Locale)
}

// ModelInstallError wraps a failed model download/install.
type ModelInstallError struct {
	Locale string
	Err    error
}

func (e *ModelInstallError) Error() string {
	return fmt.Sprintf("install speech model for %q: %v", e.Locale, e.Err)
}

func (e *ModelInstallError) Unwrap() error {
	return e.Err
}
