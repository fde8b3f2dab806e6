// Package input normalizes the four audio source kinds the CLI accepts
// (local path, http(s) URL, telegram bot file, stdin) into a single local
// file handle with an attached cleanup obligation.
package input

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/harktools/hark/internal/audio"
	"github.com/harktools/hark/internal/fetch"
	"github.com/harktools/hark/internal/telegram"
	"go.uber.org/zap"
)

// BotTokenEnv is the environment variable holding the Telegram bot token.
const BotTokenEnv = "BOT_TOKEN"

// Resolved is a local, readable audio file plus the caller's cleanup
// obligation. Cleanup must be invoked exactly once on every exit path after
// the file has been read; it is idempotent and never deletes a file the
// resolver did not create.
type Resolved struct {
	Path    string
	Cleanup func()
}

type Resolver struct {
	// Client is used for both direct HTTP downloads and bot API calls.
	Client *http.Client

	// BotToken supplies the bot credential. Nil falls back to reading
	// BOT_TOKEN from the process environment once per resolution attempt.
	BotToken func() string

	// TelegramBaseURL overrides the bot API endpoint, for tests.
	TelegramBaseURL string

	// Stdin is the reader behind the `-` source. Nil means os.Stdin.
	Stdin io.Reader

	// TempDir overrides where downloaded payloads land. Empty means the
	// system temp directory.
	TempDir string

	NoProgress bool
	Logger     *zap.Logger
}

// Resolve dispatches on the syntactic form of input: file URL, tg/telegram
// URL, http(s) URL, `-` for stdin, then plain local path. Local paths and
// file URLs get a no-op cleanup; existence is the consumer's concern.
func (r *Resolver) Resolve(ctx context.Context, input string) (Resolved, error) {
	if u, err := url.Parse(input); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "file":
			return Resolved{Path: u.Path, Cleanup: func() {}}, nil
		case "tg", "telegram":
			return r.resolveTelegram(ctx, input, u)
		case "http", "https":
			return r.resolveHTTP(ctx, input)
		}
	}

	if input == "-" {
		return r.resolveStdin()
	}

	return Resolved{Path: input, Cleanup: func() {}}, nil
}

func (r *Resolver) resolveTelegram(ctx context.Context, raw string, u *url.URL) (Resolved, error) {
	fileID := telegramFileID(u)
	if fileID == "" {
		return Resolved{}, &InvalidFileIDError{Input: raw}
	}

	token := r.credential()
	if token == "" {
		return Resolved{}, ErrMissingBotCredential
	}

	client := &telegram.Client{
		Token:      token,
		BaseURL:    r.TelegramBaseURL,
		HTTPClient: r.Client,
		Logger:     r.log(),
	}

	filePath, err := client.GetFile(ctx, fileID)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve telegram file %s: %w", fileID, err)
	}

	// Reject unsupported formats before spending bandwidth on the payload.
	format, ok := audio.Classify(filePath)
	if !ok {
		return Resolved{}, &UnsupportedFormatError{Path: "telegram:" + filePath, Supported: audio.Extensions()}
	}

	destination := r.tempPath(format.Extension())
	if err := fetch.File(ctx, fetch.Options{
		URL:         client.FileURL(filePath),
		Destination: destination,
		Client:      r.Client,
		NoProgress:  r.NoProgress,
		Logger:      r.log(),
	}); err != nil {
		return Resolved{}, fmt.Errorf("download telegram file %s: %w", fileID, err)
	}

	return Resolved{Path: destination, Cleanup: r.removeOnCleanup(destination)}, nil
}

func (r *Resolver) resolveHTTP(ctx context.Context, rawURL string) (Resolved, error) {
	// Same ordering as the telegram branch: validate the extension before
	// issuing the request.
	format, ok := audio.Classify(rawURL)
	if !ok {
		return Resolved{}, &UnsupportedFormatError{Path: rawURL, Supported: audio.Extensions()}
	}

	destination := r.tempPath(format.Extension())
	if err := fetch.File(ctx, fetch.Options{
		URL:         rawURL,
		Destination: destination,
		Client:      r.Client,
		NoProgress:  r.NoProgress,
		Logger:      r.log(),
	}); err != nil {
		return Resolved{}, err
	}

	return Resolved{Path: destination, Cleanup: r.removeOnCleanup(destination)}, nil
}

func (r *Resolver) resolveStdin() (Resolved, error) {
	reader := r.Stdin
	if reader == nil {
		reader = os.Stdin
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return Resolved{}, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return Resolved{}, ErrStdinEmpty
	}

	format := audio.Sniff(data)
	destination := r.tempPath(format.Extension())
	if err := os.WriteFile(destination, data, 0o600); err != nil {
		return Resolved{}, fmt.Errorf("write stdin payload: %w", err)
	}

	r.log().Debug("buffered stdin audio", zap.Int("bytes", len(data)), zap.String("format", string(format)))
	return Resolved{Path: destination, Cleanup: r.removeOnCleanup(destination)}, nil
}

// telegramFileID prefers the URL host (telegram://<id>) and falls back to
// the opaque part (tg:<id>) or the path (tg:///<id>).
func telegramFileID(u *url.URL) string {
	if u.Host != "" {
		return u.Host
	}
	if u.Opaque != "" {
		return u.Opaque
	}
	return strings.Trim(u.Path, "/")
}

func (r *Resolver) credential() string {
	if r.BotToken != nil {
		return r.BotToken()
	}
	return os.Getenv(BotTokenEnv)
}

func (r *Resolver) tempPath(ext string) string {
	dir := r.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("hark-%s.%s", uuid.NewString(), ext))
}

// removeOnCleanup deletes a resolver-owned temp file. Deletion failures are
// logged and swallowed; they never escalate into an invocation error.
func (r *Resolver) removeOnCleanup(path string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				r.log().Warn("failed to remove temp audio file", zap.String("path", path), zap.Error(err))
			}
		})
	}
}

func (r *Resolver) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
