package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/audio"
	"github.com/fmueller/voxkey/internal/logging"
	"github.com/fmueller/voxkey/internal/platform"
)

// BundledEngine shells out to a whisper-cli binary shipped alongside the
// voxkey executable. The call blocks for a duration proportional to the
// audio length; callers run it off the hotkey path.
type BundledEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewBundledEngine(logger *zap.Logger) (*BundledEngine, error) {
	logger = logging.OrNop(logger)

	if override := strings.TrimSpace(os.Getenv("VOXKEY_WHISPER_PATH")); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%w: VOXKEY_WHISPER_PATH is not executable: %w", ErrModelUnavailable, err)
		}
		return &BundledEngine{Executable: override, Logger: logger}, nil
	}

	selfExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve voxkey executable path: %w", err)
	}

	engineExe, err := resolveEnginePath(selfExe)
	if err != nil {
		return nil, err
	}

	return &BundledEngine{Executable: engineExe, Logger: logger}, nil
}

func resolveEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: bundled whisper engine not found near %s; expected at ../libexec/whisper/%s",
		ErrModelUnavailable, selfExecutable, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()
	hostTarget := fmt.Sprintf("%s_%s", runtime.GOOS, platform.NormalizeArch(runtime.GOARCH))

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", hostTarget, engineName),
		filepath.Join(binDir, engineName),
	}
}

// Transcribe writes the buffer to a temporary WAV file, runs the engine
// with the bias prompt, and collects plain text plus the raw JSON segments.
func (b *BundledEngine) Transcribe(ctx context.Context, req Request) (Result, error) {
	if req.Audio == nil || req.Audio.Samples() == 0 {
		return Result{}, ErrEmptyAudio
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return Result{}, fmt.Errorf("%w: model path is required", ErrModelUnavailable)
	}
	if err := ensureExecutable(b.Executable); err != nil {
		return Result{}, fmt.Errorf("%w: engine missing or not executable: %w", ErrModelUnavailable, err)
	}

	workBase := filepath.Join(os.TempDir(), "voxkey-"+uuid.NewString())
	wavPath := workBase + ".wav"
	if err := audio.WriteWAVFile(wavPath, req.Audio); err != nil {
		return Result{}, fmt.Errorf("write engine input: %w", err)
	}
	defer os.Remove(wavPath)

	args := []string{"-m", req.ModelPath, "-f", wavPath, "-nt", "-otxt", "-oj", "-of", workBase}
	lang := strings.TrimSpace(req.Language)
	if lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}
	if prompt := buildPrompt(req.InitialPrompt, req.Hotwords); prompt != "" {
		args = append(args, "--prompt", prompt)
	}

	cmd := exec.CommandContext(ctx, b.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	logging.OrNop(b.Logger).Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if isModelLoadError(errText) {
			return Result{}, fmt.Errorf("%w: %s", ErrModelUnavailable, errText)
		}
		if errText != "" {
			return Result{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
		}
		return Result{}, fmt.Errorf("whisper transcribe failed: %w", err)
	}

	txtOut := workBase + ".txt"
	jsonOut := workBase + ".json"
	defer os.Remove(txtOut)
	defer os.Remove(jsonOut)

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}

	result := Result{Text: strings.TrimSpace(string(content))}
	if segments, readErr := os.ReadFile(jsonOut); readErr == nil && json.Valid(segments) {
		result.Segments = segments
	}

	return result, nil
}

// buildPrompt folds the initial prompt and hotwords into the single prompt
// string the engine accepts. Both are soft biases only.
func buildPrompt(initialPrompt string, hotwords []string) string {
	parts := make([]string, 0, 2)
	if p := strings.TrimSpace(initialPrompt); p != "" {
		parts = append(parts, p)
	}
	if len(hotwords) > 0 {
		parts = append(parts, strings.Join(hotwords, ", ")+".")
	}
	return strings.Join(parts, " ")
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isModelLoadError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"failed to load model",
		"failed to initialize whisper context",
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}
