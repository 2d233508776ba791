// Package session drives the push-to-talk loop. It owns the state
// machine between hotkey events, audio capture, transcription, and
// clipboard delivery.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/audio"
	"github.com/fmueller/voxkey/internal/capture"
	"github.com/fmueller/voxkey/internal/dict"
	"github.com/fmueller/voxkey/internal/hotkey"
	"github.com/fmueller/voxkey/internal/logging"
	"github.com/fmueller/voxkey/internal/notify"
	"github.com/fmueller/voxkey/internal/whisper"
)

// DefaultMinDuration is the shortest recording worth transcribing.
// Taps below this are treated as accidental hotkey presses.
const DefaultMinDuration = 300 * time.Millisecond

// State describes what the orchestrator is currently doing.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Capturer is the slice of capture.Recorder the orchestrator needs.
type Capturer interface {
	Start(ctx context.Context) error
	Stop() (*audio.Buffer, error)
	Abort()
}

// Outcome is the result of one completed dictation session.
type Outcome struct {
	SessionID string
	Text      string
	Audio     time.Duration
	Copied    bool
}

// Orchestrator wires capture, transcription, dictionary correction, and
// clipboard delivery behind a single event loop. The zero fields fall
// back to sensible defaults in Run.
type Orchestrator struct {
	Capturer Capturer
	Engine   whisper.Engine
	Dict     *dict.Store

	CopyFn   func(ctx context.Context, text string) error
	PermitFn func() bool
	OnResult func(Outcome)

	Notifier *notify.Notifier
	Logger   *zap.Logger

	ModelPath string
	Language  string

	// MinDuration discards recordings shorter than this. Zero means
	// DefaultMinDuration.
	MinDuration time.Duration

	// SilenceThresholdDBFS skips transcription when the whole buffer
	// stays below this level. Zero disables the gate.
	SilenceThresholdDBFS float64

	state     State
	sessionID string
	started   time.Time
}

type processResult struct {
	sessionID string
	outcome   Outcome
	err       error
}

// State reports the orchestrator's current state. Only meaningful from
// the goroutine running the event loop and from tests that observe the
// loop after Run returns.
func (o *Orchestrator) State() State {
	return o.state
}

// Run consumes hotkey events until ctx is cancelled or the events
// channel closes. It never returns while a transcription is in flight;
// shutdown cancels the in-flight work first.
func (o *Orchestrator) Run(ctx context.Context, events <-chan hotkey.Event) error {
	logger := logging.OrNop(o.Logger)
	minDuration := o.MinDuration
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}

	procCtx, procCancel := context.WithCancel(ctx)
	defer procCancel()
	done := make(chan processResult, 1)
	inFlight := false

	drain := func() {
		procCancel()
		if inFlight {
			<-done
		}
		if o.state == StateRecording {
			o.Capturer.Abort()
		}
		o.state = StateIdle
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", zap.String("state", o.state.String()))
			drain()
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				logger.Info("hotkey source closed")
				drain()
				return nil
			}
			switch ev.Type {
			case hotkey.EventDown:
				o.handleDown(ctx, logger)
			case hotkey.EventUp:
				if o.handleUp(procCtx, logger, minDuration, done) {
					inFlight = true
				}
			}

		case res := <-done:
			inFlight = false
			o.finish(ctx, logger, res)
		}
	}
}

func (o *Orchestrator) handleDown(ctx context.Context, logger *zap.Logger) {
	switch o.state {
	case StateRecording:
		// Key repeat or a second chord press while already recording.
		return
	case StateProcessing:
		logger.Debug("hotkey pressed while transcribing, ignoring")
		return
	case StateError:
		o.state = StateIdle
	}

	if o.PermitFn != nil && !o.PermitFn() {
		logger.Warn("input permission missing, cannot start recording")
		o.Notifier.Send(ctx, "voxkey", "No permission to record, run voxkey setup")
		return
	}

	if err := o.Capturer.Start(ctx); err != nil {
		logger.Warn("failed to start recording", zap.Error(err))
		switch {
		case errors.Is(err, capture.ErrDeviceBusy):
			o.Notifier.Send(ctx, "voxkey", "Microphone is busy")
		default:
			o.Notifier.Send(ctx, "voxkey", "Microphone unavailable")
		}
		return
	}

	o.sessionID = uuid.NewString()
	o.started = time.Now()
	o.state = StateRecording
	logger.Info("recording started", zap.String("session", o.sessionID))
	o.Notifier.Send(ctx, "voxkey", "Recording...")
}

// handleUp stops an active recording and hands the buffer to the
// transcription goroutine. It reports whether work is now in flight.
func (o *Orchestrator) handleUp(procCtx context.Context, logger *zap.Logger, minDuration time.Duration, done chan<- processResult) bool {
	if o.state != StateRecording {
		return false
	}

	buf, err := o.Capturer.Stop()
	if err != nil {
		logger.Warn("recording failed", zap.String("session", o.sessionID), zap.Error(err))
		o.Notifier.Send(procCtx, "voxkey", "Recording failed")
		o.state = StateIdle
		return false
	}

	if buf.Duration() < minDuration {
		logger.Debug("recording too short, discarding",
			zap.String("session", o.sessionID),
			zap.Duration("duration", buf.Duration()))
		o.state = StateIdle
		return false
	}

	if o.SilenceThresholdDBFS < 0 && buf.IsSilent(o.SilenceThresholdDBFS) {
		logger.Info("no speech detected, discarding", zap.String("session", o.sessionID))
		o.Notifier.Send(procCtx, "voxkey", "No speech detected")
		o.state = StateIdle
		return false
	}

	snapshot := dict.Empty()
	if o.Dict != nil {
		snapshot = o.Dict.Snapshot()
	}

	o.state = StateProcessing
	logger.Info("transcribing",
		zap.String("session", o.sessionID),
		zap.Duration("audio", buf.Duration()))
	o.Notifier.Send(procCtx, "voxkey", "Transcribing...")

	go o.process(procCtx, o.sessionID, buf, snapshot, done)
	return true
}

func (o *Orchestrator) process(ctx context.Context, sessionID string, buf *audio.Buffer, snapshot *dict.Config, done chan<- processResult) {
	result, err := o.Engine.Transcribe(ctx, whisper.Request{
		Audio:         buf,
		ModelPath:     o.ModelPath,
		Language:      o.Language,
		Hotwords:      snapshot.Hotwords(),
		InitialPrompt: snapshot.InitialPrompt(),
	})
	if err != nil {
		done <- processResult{sessionID: sessionID, err: err}
		return
	}

	outcome := Outcome{
		SessionID: sessionID,
		Text:      snapshot.Apply(result.Text),
		Audio:     buf.Duration(),
	}
	if outcome.Text == "" {
		done <- processResult{sessionID: sessionID, outcome: outcome}
		return
	}

	if o.CopyFn != nil {
		if err := o.CopyFn(ctx, outcome.Text); err != nil {
			done <- processResult{sessionID: sessionID, outcome: outcome, err: err}
			return
		}
		outcome.Copied = true
	}
	done <- processResult{sessionID: sessionID, outcome: outcome}
}

func (o *Orchestrator) finish(ctx context.Context, logger *zap.Logger, res processResult) {
	if res.err != nil {
		o.state = StateError
		logger.Error("dictation failed", zap.String("session", res.sessionID), zap.Error(res.err))
		switch {
		case errors.Is(res.err, whisper.ErrModelUnavailable):
			o.Notifier.Send(ctx, "voxkey", "Speech model unavailable")
		case errors.Is(res.err, context.Canceled):
			// Shutdown already reported.
		default:
			o.Notifier.Send(ctx, "voxkey", "Transcription failed")
		}
		o.state = StateIdle
		return
	}

	o.state = StateIdle
	if res.outcome.Text == "" {
		logger.Info("transcript was empty", zap.String("session", res.sessionID))
		o.Notifier.Send(ctx, "voxkey", "Nothing transcribed")
		return
	}

	logger.Info("transcript ready",
		zap.String("session", res.sessionID),
		zap.Int("chars", len(res.outcome.Text)),
		zap.Bool("copied", res.outcome.Copied))
	o.Notifier.Send(ctx, "voxkey", "Copied to clipboard")
	if o.OnResult != nil {
		o.OnResult(res.outcome)
	}
}
