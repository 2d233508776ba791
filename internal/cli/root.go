package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fmueller/voxkey/internal/clipboard"
	"github.com/fmueller/voxkey/internal/hotkey"
	"github.com/fmueller/voxkey/internal/logging"
	"github.com/fmueller/voxkey/internal/platform"
	"github.com/fmueller/voxkey/internal/session"
	"github.com/fmueller/voxkey/internal/version"
	"github.com/fmueller/voxkey/internal/whisper"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	noProgress   bool
	model        string
	modelDir     string
	language     string
	autoDownload bool
	backend      string
	device       string
	chordSpec    string
	source       string
	dictPath     string
	minDuration  time.Duration
	silenceGate  bool
	silenceDBFS  float64
	notify       bool
	copyEmpty    bool

	logger *zap.Logger
	out    io.Writer

	preflightFn  func(ctx context.Context) error
	modelFn      func(ctx context.Context) (whisper.ResolvedModel, error)
	engineFn     func() (whisper.Engine, error)
	capturerFn   func() (session.Capturer, error)
	sourceFn     func(chord hotkey.Chord) (hotkey.Source, error)
	transcribeFn func(ctx context.Context, audioPath string) (string, error)
	copyFn       func(ctx context.Context, value string) error
	permitFn     func() bool
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:        whisper.DefaultModel,
		language:     "auto",
		autoDownload: true,
		backend:      "auto",
		chordSpec:    hotkey.DefaultChord,
		source:       "auto",
		minDuration:  session.DefaultMinDuration,
		silenceGate:  true,
		silenceDBFS:  -55,
		notify:       true,
		out:          os.Stdout,
	}
	app.preflightFn = app.ensureTranscriptionReady
	app.modelFn = app.ensureModelAvailable
	app.engineFn = func() (whisper.Engine, error) { return whisper.NewBundledEngine(app.log()) }
	app.capturerFn = app.buildRecorder
	app.sourceFn = app.buildHotkeySource
	app.transcribeFn = app.transcribeAudio
	app.copyFn = clipboard.CopyText
	app.permitFn = hotkey.CanReadInputDevices

	cmd := &cobra.Command{
		Use:           "voxkey",
		Short:         "Push-to-talk dictation: hold a hotkey, speak, release, paste",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.language = whisper.NormalizeLanguage(app.language)
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runListen(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindCaptureFlags(cmd, app)
	bindHotkeyFlags(cmd, app)
	bindDictionaryFlag(cmd, app)
	bindSessionFlags(cmd, app)

	cmd.AddCommand(newListenCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newDictCmd(app))
	cmd.AddCommand(newDevicesCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name or model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
}

func bindLanguageAndModelDownloadFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) for transcription")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindCaptureFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.backend, "backend", app.backend, "Capture backend: auto|pw-record|arecord|ffmpeg")
	cmd.Flags().StringVar(&app.device, "device", app.device, "Input device (run \"voxkey devices\" to list)")
}

func bindHotkeyFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.chordSpec, "hotkey", app.chordSpec, "Push-to-talk chord, e.g. ctrl+alt+r")
	cmd.Flags().StringVar(&app.source, "hotkey-source", app.source, "Hotkey source: auto|evdev|tty")
}

func bindDictionaryFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.dictPath, "dictionary", app.dictPath, "Replacement dictionary path (default <config-dir>/dictionary.json)")
}

func bindSessionFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().DurationVar(&app.minDuration, "min-duration", app.minDuration, "Discard recordings shorter than this")
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Skip transcription of near-silent recordings")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
	cmd.Flags().BoolVar(&app.notify, "notify", app.notify, "Send desktop notifications on session status changes")
	cmd.Flags().BoolVar(&app.copyEmpty, "copy-empty", app.copyEmpty, "Copy blank transcripts to clipboard")
}

func (a *appState) ensureTranscriptionReady(ctx context.Context) error {
	if _, err := whisper.NewBundledEngine(a.log()); err != nil {
		return err
	}
	if _, err := a.ensureModelAvailable(ctx); err != nil {
		return err
	}
	return nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) dictionaryPath() (string, error) {
	return platform.ResolveDictionaryPath(a.dictPath)
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) silenceThreshold() float64 {
	if !a.silenceGate {
		return 0
	}
	return a.silenceDBFS
}
