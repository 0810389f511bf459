package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"canbridge/internal/can"
	"canbridge/internal/db"
)

// ErrEmptyCapture is returned by Replay.Run when the capture holds no frames.
var ErrEmptyCapture = errors.New("bus: capture has no frames")

// Replay feeds recorded frames into a Queue at their captured pace.
type Replay struct {
	repo   db.CaptureRepository
	loop   bool
	speed  float64
	logger *slog.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type ReplayOption func(*Replay)

// WithLoop restarts the capture from the beginning after the last frame.
func WithLoop(loop bool) ReplayOption {
	return func(r *Replay) { r.loop = loop }
}

// WithSpeed scales playback; 2 plays twice as fast. Zero or negative pushes
// every frame without waiting.
func WithSpeed(speed float64) ReplayOption {
	return func(r *Replay) { r.speed = speed }
}

func NewReplay(repo db.CaptureRepository, logger *slog.Logger, opts ...ReplayOption) *Replay {
	r := &Replay{repo: repo, speed: 1, logger: logger, sleep: sleepContext}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run pushes the capture into q. It returns nil when a non-looping replay
// finishes and ctx.Err() when cancelled.
func (r *Replay) Run(ctx context.Context, q *Queue) error {
	frames, err := r.repo.Frames(ctx)
	if err != nil {
		return fmt.Errorf("load capture: %w", err)
	}
	if len(frames) == 0 {
		return ErrEmptyCapture
	}

	r.logger.Info("replay started", "frames", len(frames), "loop", r.loop, "speed", r.speed)
	for pass := 1; ; pass++ {
		if err := r.play(ctx, q, frames); err != nil {
			return err
		}
		r.logger.Debug("replay pass finished", "pass", pass)
		if !r.loop {
			return nil
		}
	}
}

func (r *Replay) play(ctx context.Context, q *Queue, frames []db.CapturedFrame) error {
	var last time.Duration
	for _, cf := range frames {
		if wait := cf.Offset - last; wait > 0 && r.speed > 0 {
			if err := r.sleep(ctx, time.Duration(float64(wait)/r.speed)); err != nil {
				return err
			}
		}
		last = cf.Offset
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := q.Push(cf.Frame); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder appends every frame pushed through it to a capture, stamped with
// the time since the recorder was created.
type Recorder struct {
	repo  db.CaptureRepository
	start time.Time
	now   func() time.Time
}

func NewRecorder(repo db.CaptureRepository) *Recorder {
	return &Recorder{repo: repo, start: time.Now(), now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, f can.Frame) error {
	return r.repo.Append(ctx, r.now().Sub(r.start), f)
}
