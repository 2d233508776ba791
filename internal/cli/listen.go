package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/capture"
	"github.com/fmueller/voxkey/internal/clipboard"
	"github.com/fmueller/voxkey/internal/dict"
	"github.com/fmueller/voxkey/internal/hotkey"
	"github.com/fmueller/voxkey/internal/notify"
	"github.com/fmueller/voxkey/internal/session"
	"github.com/fmueller/voxkey/internal/whisper"
)

func newListenCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run the push-to-talk dictation loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runListen(cmd.Context())
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindCaptureFlags(cmd, app)
	bindHotkeyFlags(cmd, app)
	bindDictionaryFlag(cmd, app)
	bindSessionFlags(cmd, app)

	return cmd
}

func (a *appState) runListen(ctx context.Context) error {
	preflightFn := a.preflightFn
	if preflightFn == nil {
		preflightFn = a.ensureTranscriptionReady
	}
	if err := preflightFn(ctx); err != nil {
		return err
	}

	chord, err := hotkey.ParseChord(a.chordSpec)
	if err != nil {
		return fmt.Errorf("invalid hotkey %q: %w", a.chordSpec, err)
	}

	modelFn := a.modelFn
	if modelFn == nil {
		modelFn = a.ensureModelAvailable
	}
	model, err := modelFn(ctx)
	if err != nil {
		return err
	}

	engineFn := a.engineFn
	if engineFn == nil {
		engineFn = func() (whisper.Engine, error) { return whisper.NewBundledEngine(a.log()) }
	}
	engine, err := engineFn()
	if err != nil {
		return err
	}

	capturerFn := a.capturerFn
	if capturerFn == nil {
		capturerFn = a.buildRecorder
	}
	recorder, err := capturerFn()
	if err != nil {
		return err
	}

	dictPath, err := a.dictionaryPath()
	if err != nil {
		return err
	}
	store := dict.NewStore(dictPath, a.log())

	sourceFn := a.sourceFn
	if sourceFn == nil {
		sourceFn = a.buildHotkeySource
	}
	source, err := sourceFn(chord)
	if err != nil {
		return err
	}

	copyFn := a.copyFn
	if copyFn == nil {
		copyFn = clipboard.CopyText
	}

	// The input permission gate only applies to the evdev source; the
	// terminal toggle needs no /dev/input access.
	permitFn := a.permitFn
	if _, isTTY := source.(*hotkey.TTYSource); isTTY {
		permitFn = nil
	}

	cleanupStaleRecordings(a.log(), time.Now())

	if err := source.Start(ctx); err != nil {
		return fmt.Errorf("start hotkey source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			a.log().Warn("failed to close hotkey source", zap.Error(err))
		}
	}()

	orch := &session.Orchestrator{
		Capturer: recorder,
		Engine:   engine,
		Dict:     store,
		CopyFn:   copyFn,
		PermitFn: permitFn,
		OnResult: func(o session.Outcome) {
			fmt.Fprintln(a.outWriter(), o.Text)
		},
		Notifier:             notify.New(a.notify),
		Logger:               a.log(),
		ModelPath:            model.Path,
		Language:             a.language,
		MinDuration:          a.minDuration,
		SilenceThresholdDBFS: a.silenceThreshold(),
	}

	a.log().Info("listening for hotkey",
		zap.String("hotkey", chord.String()),
		zap.String("model", model.Path),
		zap.String("dictionary", dictPath))
	fmt.Fprintf(os.Stderr, "Hold %s to dictate. Release to transcribe and copy.\n", chord.String())

	if err := orch.Run(ctx, source.Events()); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

func (a *appState) buildRecorder() (session.Capturer, error) {
	backend, err := capture.NewBackend(a.backend)
	if err != nil {
		return nil, err
	}
	a.log().Debug("capture backend selected", zap.String("backend", backend.Name()))
	return capture.NewRecorder(backend, a.device, a.log()), nil
}

func (a *appState) buildHotkeySource(chord hotkey.Chord) (hotkey.Source, error) {
	switch a.source {
	case "evdev":
		if !hotkey.CanReadInputDevices() {
			return nil, fmt.Errorf("%w: cannot read /dev/input, run `voxkey setup` for instructions", hotkey.ErrPermissionDenied)
		}
		return hotkey.NewEvdevSource(chord, a.log()), nil
	case "tty":
		fmt.Fprintln(os.Stderr, "Terminal mode: press Space to start/stop dictation, q to quit.")
		return hotkey.NewTTYSource(' ', a.log()), nil
	case "auto", "":
		if hotkey.CanReadInputDevices() {
			return hotkey.NewEvdevSource(chord, a.log()), nil
		}
		a.log().Warn("no access to input devices, falling back to terminal toggle; run `voxkey setup` for instructions")
		fmt.Fprintln(os.Stderr, "Terminal mode: press Space to start/stop dictation, q to quit.")
		return hotkey.NewTTYSource(' ', a.log()), nil
	default:
		return nil, fmt.Errorf("unknown hotkey source %q (expected auto|evdev|tty)", a.source)
	}
}
