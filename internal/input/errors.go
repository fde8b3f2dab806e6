package input

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStdinEmpty reports that `-` was given but nothing arrived on stdin.
	ErrStdinEmpty = errors.New("stdin input is empty")

	// ErrMissingBotCredential reports a tg/telegram source without the bot
	// token in the environment.
	ErrMissingBotCredential = errors.New("bot credential is not set; export " + BotTokenEnv)
)

// UnsupportedFormatError reports an input whose extension is not in the
// supported set.
type UnsupportedFormatError struct {
	Path      string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format for %q (supported: %s)", e.Path, strings.Join(e.Supported, ", "))
}

// InvalidFileIDError reports a tg/telegram URL with no file identifier in
// its host or path.
type InvalidFileIDError struct {
	Input string
}

func (e *InvalidFileIDError) Error() string {
	return fmt.Sprintf("no file identifier in %q", e.Input)
}
