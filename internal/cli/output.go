package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harktools/hark/internal/fetch"
	"github.com/harktools/hark/internal/input"
	"github.com/harktools/hark/internal/speech"
	"github.com/spf13/cobra"
)

// ErrReported marks an error that has already been rendered to the user in
// the selected output format; main exits non-zero without printing again.
var ErrReported = errors.New("error already reported")

type errorEnvelope struct {
	OK    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type transcriptPayload struct {
	OK     bool   `json:"ok"`
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

type analysisPayload struct {
	OK       bool            `json:"ok"`
	Analysis speech.Analysis `json:"analysis"`
}

func (a *appState) reportError(cmd *cobra.Command, err error) error {
	if a.format == formatJSON {
		var envelope errorEnvelope
		envelope.Error.Code = errorCode(err)
		envelope.Error.Message = err.Error()
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(envelope)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
	}

	return errors.Join(err, ErrReported)
}

func (a *appState) renderTranscript(cmd *cobra.Command, text string) error {
	if a.format == formatJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(transcriptPayload{
			OK:     true,
			Text:   text,
			Locale: a.locale,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func (a *appState) renderAnalysis(cmd *cobra.Command, analysis speech.Analysis) error {
	if a.format == formatJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(analysisPayload{OK: true, Analysis: analysis})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pitch:   %s\n", formatMetric(analysis.Pitch))
	fmt.Fprintf(out, "tempo:   %s\n", formatMetric(analysis.Tempo))
	fmt.Fprintf(out, "volume:  %s\n", formatMetric(analysis.Volume))
	fmt.Fprintf(out, "jitter:  %s\n", formatMetric(analysis.Jitter))
	fmt.Fprintf(out, "shimmer: %s\n", formatMetric(analysis.Shimmer))
	return nil
}

func (a *appState) renderStatus(cmd *cobra.Command, status speech.EnvironmentStatus) error {
	if a.format == formatJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "locale: %s\n", status.Locale)
	fmt.Fprintf(out, "ready: %s\n", yesNo(status.OK))
	fmt.Fprintln(out, "permissions:")
	fmt.Fprintf(out, "  speech recognition: %s\n", status.Permissions.SpeechRecognition)
	fmt.Fprintf(out, "  microphone: %s\n", status.Permissions.Microphone)
	fmt.Fprintln(out, "engines:")
	fmt.Fprintf(out, "  legacy: %s\n", describeLegacy(status.Engines.Legacy))
	fmt.Fprintf(out, "  modern: %s\n", describeModern(status.Engines.Modern))
	return nil
}

func describeLegacy(status speech.LegacyEngineStatus) string {
	switch {
	case !status.Available:
		return "unavailable"
	case !status.RecognizerAvailable:
		return "no recognizer for locale"
	case status.SupportsOnDevice:
		return "ready (on-device)"
	default:
		return "ready"
	}
}

func describeModern(status speech.ModernEngineStatus) string {
	switch {
	case !status.Available:
		return "unsupported on this platform"
	case status.SupportedLocale == "":
		return "locale not supported"
	case !status.ModelInstalled:
		return fmt.Sprintf("model for %s not installed", status.SupportedLocale)
	default:
		return fmt.Sprintf("ready (%s)", status.SupportedLocale)
	}
}

func formatMetric(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func errorCode(err error) string {
	var (
		unsupportedFormat *input.UnsupportedFormatError
		invalidFileID     *input.InvalidFileIDError
		statusErr         *fetch.StatusError
		networkErr        *fetch.NetworkError
		localeErr         *speech.LocaleUnsupportedError
		notInstalledErr   *speech.ModelNotInstalledError
		installErr        *speech.ModelInstallError
	)

	switch {
	case errors.As(err, &unsupportedFormat):
		return "unsupported_audio_format"
	case errors.Is(err, input.ErrStdinEmpty):
		return "stdin_empty"
	case errors.Is(err, input.ErrMissingBotCredential):
		return "missing_bot_credential"
	case errors.As(err, &invalidFileID):
		return "invalid_file_id"
	case errors.Is(err, fetch.ErrInvalidResponse):
		return "invalid_response"
	case errors.As(err, &statusErr):
		return "request_failed"
	case errors.As(err, &networkErr):
		return "network_error"
	case errors.Is(err, speech.ErrSpeechNotAuthorized):
		return "speech_not_authorized"
	case errors.Is(err, speech.ErrSpeechNotAvailable):
		return "speech_not_available"
	case errors.Is(err, speech.ErrTranscriberNotAvailable):
		return "transcriber_not_available"
	case errors.Is(err, speech.ErrNoFinalResult):
		return "no_final_result"
	case errors.As(err, &localeErr):
		return "locale_unsupported"
	case errors.As(err, &notInstalledErr):
		return "model_not_installed"
	case errors.As(err, &installErr):
		return "model_install_failed"
	default:
		return "internal"
	}
}
