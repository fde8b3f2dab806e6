package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// HostBridge reaches the platform speech subsystem through a helper binary
// shipped next to hark. Each capability call is one helper invocation that
// prints JSON on stdout; recognition and streaming print one JSON object
// per line.
type HostBridge struct {
	Executable string
	Logger     *zap.Logger

	capOnce   sync.Once
	streaming bool
}

const helperEnvOverride = "HARK_SPEECHD_PATH"

func NewHostBridge(logger *zap.Logger) (*HostBridge, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(helperEnvOverride)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", helperEnvOverride, err)
		}
		return &HostBridge{Executable: override, Logger: logger}, nil
	}

	harkExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve hark executable path: %w", err)
	}

	helper, err := resolveHelperPath(harkExe)
	if err != nil {
		return nil, err
	}

	return &HostBridge{Executable: helper, Logger: logger}, nil
}

func resolveHelperPath(harkExecutable string) (string, error) {
	for _, candidate := range HelperPathCandidates(harkExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("speech helper not found near %s; reinstall hark from an official release, expected at ../libexec/hark/%s", harkExecutable, helperBinaryName())
}

func HelperPathCandidates(harkExecutable string) []string {
	binDir := filepath.Dir(harkExecutable)
	helperName := helperBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "hark", helperName),
		filepath.Join(binDir, "libexec", "hark", helperName),
		filepath.Join(binDir, helperName),
	}
}

func helperBinaryName() string {
	return "hark-speechd"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func (b *HostBridge) SpeechAuthorization(ctx context.Context) (AuthorizationState, error) {
	return b.permission(ctx, "speech", false)
}

func (b *HostBridge) RequestSpeechAuthorization(ctx context.Context) (AuthorizationState, error) {
	return b.permission(ctx, "speech", true)
}

func (b *HostBridge) MicrophoneAuthorization(ctx context.Context) (AuthorizationState, error) {
	return b.permission(ctx, "microphone", false)
}

func (b *HostBridge) RequestMicrophoneAuthorization(ctx context.Context) (AuthorizationState, error) {
	return b.permission(ctx, "microphone", true)
}

func (b *HostBridge) permission(ctx context.Context, resource string, request bool) (AuthorizationState, error) {
	args := []string{"permission", resource}
	if request {
		args = append(args, "--request")
	}

	var reply struct {
		State string `json:"state"`
	}
	if err := b.runJSON(ctx, &reply, args...); err != nil {
		return AuthorizationUnknown, err
	}

	return ParseAuthorizationState(reply.State), nil
}

// ParseAuthorizationState maps a helper-reported state onto the closed
// enumeration, defaulting to unknown for anything unrecognized.
func ParseAuthorizationState(value string) AuthorizationState {
	switch AuthorizationState(strings.TrimSpace(value)) {
	case AuthorizationAuthorized, AuthorizationDenied, AuthorizationRestricted, AuthorizationNotDetermined:
		return AuthorizationState(strings.TrimSpace(value))
	default:
		return AuthorizationUnknown
	}
}

func (b *HostBridge) ProbeLegacy(ctx context.Context, locale string) (LegacyProbe, error) {
	var reply struct {
		Available bool `json:"available"`
		OnDevice  bool `json:"on_device"`
	}
	if err := b.runJSON(ctx, &reply, "probe-recognizer", locale); err != nil {
		return LegacyProbe{}, err
	}

	return LegacyProbe{Available: reply.Available, SupportsOnDevice: reply.OnDevice}, nil
}

func (b *HostBridge) Recognize(ctx context.Context, path, locale string, onDevice bool) (<-chan RecognitionEvent, error) {
	args := []string{"recognize", "--locale", locale}
	if onDevice {
		args = append(args, "--on-device")
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, b.Executable, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe helper stdout: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start speech helper: %w", err)
	}

	events := make(chan RecognitionEvent, 16)
	go func() {
		defer close(events)

		sawTerminal := false
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			event, ok := parseRecognitionLine(scanner.Bytes())
			if !ok {
				continue
			}
			events <- event
			if event.Final || event.Err != nil {
				sawTerminal = true
				break
			}
		}

		waitErr := cmd.Wait()
		if !sawTerminal && waitErr != nil {
			events <- RecognitionEvent{Err: fmt.Errorf("speech helper failed: %w (%s)", waitErr, strings.TrimSpace(stderr.String()))}
		}
	}()

	return events, nil
}

func parseRecognitionLine(line []byte) (RecognitionEvent, bool) {
	var parsed struct {
		Text  string `json:"text"`
		Final bool   `json:"final"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(line, &parsed); err != nil {
		return RecognitionEvent{}, false
	}

	if parsed.Error != "" {
		return RecognitionEvent{Err: fmt.Errorf("recognition failed: %s", parsed.Error)}, true
	}

	return RecognitionEvent{Text: parsed.Text, Final: parsed.Final}, true
}

func (b *HostBridge) ModernSupported() bool {
	b.capOnce.Do(func() {
		var reply struct {
			Streaming bool `json:"streaming"`
		}
		if err := b.runJSON(context.Background(), &reply, "capabilities"); err != nil {
			b.log().Warn("capability query failed", zap.Error(err))
			return
		}
		b.streaming = reply.Streaming
	})

	return b.streaming
}

func (b *HostBridge) SupportedLocales(ctx context.Context) ([]string, error) {
	locales, err := b.locales(ctx)
	if err != nil {
		return nil, err
	}
	return locales.Supported, nil
}

func (b *HostBridge) InstalledLocales(ctx context.Context) ([]string, error) {
	locales, err := b.locales(ctx)
	if err != nil {
		return nil, err
	}
	return locales.Installed, nil
}

type localesReply struct {
	Supported []string `json:"supported"`
	Installed []string `json:"installed"`
}

func (b *HostBridge) locales(ctx context.Context) (localesReply, error) {
	var reply localesReply
	if err := b.runJSON(ctx, &reply, "locales"); err != nil {
		return localesReply{}, err
	}
	return reply, nil
}

func (b *HostBridge) InstallModel(ctx context.Context, locale string) error {
	cmd := exec.CommandContext(ctx, b.Executable, "install-model", locale)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	b.log().Debug("running speech helper", zap.String("op", "install-model"), zap.String("locale", locale))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (b *HostBridge) OpenSession(ctx context.Context, path, locale string) (Session, error) {
	cmd := exec.CommandContext(ctx, b.Executable, "stream", "--locale", locale, path)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe helper stdout: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start speech helper: %w", err)
	}

	session := &bridgeSession{
		results: make(chan string, 16),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(session.done)
		defer close(session.results)

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var parsed struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(scanner.Bytes(), &parsed); err != nil {
				continue
			}
			session.results <- parsed.Text
		}

		if err := cmd.Wait(); err != nil {
			session.err = fmt.Errorf("speech helper failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
		}
	}()

	return session, nil
}

type bridgeSession struct {
	results chan string
	done    chan struct{}
	err     error
}

func (s *bridgeSession) Results() <-chan string {
	return s.results
}

func (s *bridgeSession) Wait() error {
	<-s.done
	return s.err
}

func (b *HostBridge) Analyze(ctx context.Context, path string) (Analysis, error) {
	var analysis Analysis
	if err := b.runJSON(ctx, &analysis, "analyze", path); err != nil {
		return Analysis{}, err
	}
	return analysis, nil
}

func (b *HostBridge) runJSON(ctx context.Context, out any, args ...string) error {
	cmd := exec.CommandContext(ctx, b.Executable, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.log().Debug("running speech helper", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("speech helper %s: %w (%s)", args[0], err, strings.TrimSpace(stderr.String()))
	}

	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("decode helper %s reply: %w", args[0], err)
	}

	return nil
}

func (b *HostBridge) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}
