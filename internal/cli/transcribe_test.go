package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harktools/hark/internal/input"
	"github.com/harktools/hark/internal/speech"
	"github.com/stretchr/testify/require"
)

func TestTranscribeCommandPrintsTranscript(t *testing.T) {
	t.Parallel()

	cleanups := 0
	app := &appState{format: formatText, locale: "en-us"}
	app.resolveFn = func(_ context.Context, source string) (input.Resolved, error) {
		require.Equal(t, "memo.wav", source)
		return input.Resolved{Path: "/tmp/memo.wav", Cleanup: func() { cleanups++ }}, nil
	}
	app.transcribeFn = func(_ context.Context, audioPath string) (string, error) {
		require.Equal(t, "/tmp/memo.wav", audioPath)
		return "hello world", nil
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"memo.wav"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "hello world\n", out.String())
	require.Equal(t, 1, cleanups)
}

func TestTranscribeCommandJSONPayload(t *testing.T) {
	t.Parallel()

	app := &appState{format: formatJSON, locale: "de-de"}
	app.resolveFn = func(_ context.Context, _ string) (input.Resolved, error) {
		return input.Resolved{Path: "/tmp/memo.wav", Cleanup: func() {}}, nil
	}
	app.transcribeFn = func(context.Context, string) (string, error) {
		return "guten tag", nil
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"memo.wav"})

	require.NoError(t, cmd.Execute())

	var payload struct {
		OK     bool   `json:"ok"`
		Text   string `json:"text"`
		Locale string `json:"locale"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	require.True(t, payload.OK)
	require.Equal(t, "guten tag", payload.Text)
	require.Equal(t, "de-de", payload.Locale)
}

func TestTranscribeCommandCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	cleanups := 0
	app := &appState{format: formatText, locale: "en-us"}
	app.resolveFn = func(context.Context, string) (input.Resolved, error) {
		return input.Resolved{Path: "/tmp/memo.wav", Cleanup: func() { cleanups++ }}, nil
	}
	app.transcribeFn = func(context.Context, string) (string, error) {
		return "", speech.ErrSpeechNotAuthorized
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"memo.wav"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrReported)
	require.ErrorIs(t, err, speech.ErrSpeechNotAuthorized)
	require.Contains(t, errOut.String(), "error: ")
	require.Equal(t, 1, cleanups)
}

func TestTranscribeCommandRejectsUnsupportedLocalExtension(t *testing.T) {
	t.Parallel()

	app := &appState{format: formatText, locale: "en-us"}
	app.resolveFn = func(context.Context, string) (input.Resolved, error) {
		t.Fatal("resolve must not run for an unsupported extension")
		return input.Resolved{}, nil
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"a.ogg"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrReported)

	var unsupported *input.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	require.Contains(t, errOut.String(), "flac, m4a, mp3, wav")
}

func TestTranscribeCommandJSONErrorEnvelope(t *testing.T) {
	t.Parallel()

	app := &appState{format: formatJSON, locale: "en-us"}
	app.resolveFn = func(context.Context, string) (input.Resolved, error) {
		return input.Resolved{}, input.ErrMissingBotCredential
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"tg:12345"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrReported)

	var envelope struct {
		OK    bool `json:"ok"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &envelope))
	require.False(t, envelope.OK)
	require.Equal(t, "missing_bot_credential", envelope.Error.Code)
	require.NotEmpty(t, envelope.Error.Message)
}

func TestValidateSourceFormat(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateSourceFormat("-"))
	require.NoError(t, validateSourceFormat("memo.wav"))
	require.NoError(t, validateSourceFormat("file:///tmp/memo.flac"))
	require.NoError(t, validateSourceFormat("https://example.com/a.ogg")) // resolver's concern
	require.NoError(t, validateSourceFormat("tg:12345"))

	require.Error(t, validateSourceFormat("a.ogg"))
	require.Error(t, validateSourceFormat("noextension"))
}

func TestTranscribeEngineFlagValidation(t *testing.T) {
	t.Parallel()

	app := &appState{format: formatText, locale: "en-us", engine: "turbo"}
	app.resolveFn = func(context.Context, string) (input.Resolved, error) {
		return input.Resolved{Path: "/tmp/a.wav", Cleanup: func() {}}, nil
	}
	app.platformFn = func() (speech.Platform, error) {
		return nil, errors.New("platform must not be constructed for a bad engine flag")
	}

	cmd := newTranscribeCmd(app)
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"a.wav"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrReported)
	require.Contains(t, errOut.String(), "turbo")
}
