package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/sirupsen/logrus"
)

// State of the player's session machine.
type State int

const (
	StateIdle State = iota
	StatePriming
	StatePlaying
	StateDraining
)

// Player plays a story: it splits the text, loads every segment concurrently
// and plays the results strictly in segment order, one at a time, with a
// short pause between segments. One session at a time; Play during an active
// session means stop.
type Player struct {
	loader   *Loader
	device   Device
	pause    time.Duration
	primeDur time.Duration

	onSegment func(index, total int)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

func NewPlayer(loader *Loader, device Device) *Player {
	return &Player{
		loader:   loader,
		device:   device,
		pause:    time.Second,
		primeDur: 100 * time.Millisecond,
	}
}

// SetPause changes the silence inserted between segments. Zero is allowed.
func (p *Player) SetPause(d time.Duration) { p.pause = d }

// SetPrimeDuration changes the length of the unlock tone.
func (p *Player) SetPrimeDuration(d time.Duration) { p.primeDur = d }

// OnSegment registers a callback invoked just before each segment becomes
// audible. Used for progress display.
func (p *Player) OnSegment(fn func(index, total int)) { p.onSegment = fn }

// State returns the current session state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPlaying reports whether a session is active.
func (p *Player) IsPlaying() bool {
	return p.State() != StateIdle
}

// Play voices the story text and blocks until the last segment finished, the
// session was stopped, or a segment failed. Calling Play while a session is
// active stops that session instead of starting a new one. A stop is not an
// error: Play returns nil.
func (p *Player) Play(text string) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		p.Stop()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.state = StatePriming
	p.cancel = cancel
	p.mu.Unlock()

	err := p.run(ctx, text)
	cancel()

	p.mu.Lock()
	p.state = StateIdle
	p.cancel = nil
	p.mu.Unlock()

	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

// Stop cancels the active session, silencing the device immediately and
// aborting every in-flight load. Stopping an idle player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.device.Clear()
}

type loadResult struct {
	index int
	audio DecodedAudio
	err   error
}

func (p *Player) run(ctx context.Context, text string) error {
	segments := Split(text)
	if len(segments) == 0 {
		return nil
	}
	logrus.WithField("segments", len(segments)).Debug("story split into paragraphs")

	if err := p.prime(ctx); err != nil {
		return err
	}

	p.setState(StatePlaying)

	// Fan out: every segment loads at once. The channel is buffered to the
	// segment count so a late completion never blocks an exiting session.
	results := make(chan loadResult, len(segments))
	for _, seg := range segments {
		go func(seg Segment) {
			audio, err := p.loader.Load(ctx, seg)
			results <- loadResult{index: seg.Index, audio: audio, err: err}
		}(seg)
	}

	// Fan in: completions arrive in any order and park in their slot; the
	// cursor only advances once the segment at its exact index has fully
	// played.
	slots := make([]*beep.Buffer, len(segments))
	next := 0
	for next < len(segments) {
		select {
		case <-ctx.Done():
			return ErrCancelled
		case r := <-results:
			if r.err != nil {
				if errors.Is(r.err, ErrCancelled) {
					return ErrCancelled
				}
				return r.err
			}
			slots[r.index] = r.audio.Buffer
			logrus.WithField("segment", r.index).Debug("segment loaded")
		}

		for next < len(segments) && slots[next] != nil {
			buffer := slots[next]
			slots[next] = nil

			if p.onSegment != nil {
				p.onSegment(next, len(segments))
			}
			if err := p.playBuffer(ctx, buffer); err != nil {
				return err
			}
			next++

			// A beat of silence between paragraphs, so the narration is
			// not artificially rushed.
			if next < len(segments) {
				if err := sleepCtx(ctx, p.pause); err != nil {
					return ErrCancelled
				}
			}
		}
	}

	p.setState(StateDraining)
	return nil
}

// prime activates the output device and plays the unlock tone before the
// first real segment. Device activation failure is fatal to the session.
func (p *Player) prime(ctx context.Context) error {
	if err := p.device.Start(primeSampleRate); err != nil {
		return fmt.Errorf("failed to activate audio output: %w", err)
	}

	tone, err := primeTone(primeSampleRate, p.primeDur)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	p.device.Play(beep.Seq(tone, beep.Callback(func() { close(done) })))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.device.Clear()
		return ErrCancelled
	}
}

func (p *Player) playBuffer(ctx context.Context, buffer *beep.Buffer) error {
	if err := p.device.Start(buffer.Format().SampleRate); err != nil {
		return fmt.Errorf("failed to reconfigure audio output: %w", err)
	}

	done := make(chan struct{})
	p.device.Play(beep.Seq(
		buffer.Streamer(0, buffer.Len()),
		beep.Callback(func() { close(done) }),
	))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.device.Clear()
		return ErrCancelled
	}
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
