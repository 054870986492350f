package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice drains every queued streamer in the background, firing callbacks
// the way the real speaker would, without touching audio hardware.
type fakeDevice struct {
	mu       sync.Mutex
	starts   int
	plays    int
	clears   int
	startErr error
}

func (d *fakeDevice) Start(sr beep.SampleRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.startErr != nil {
		return d.startErr
	}
	d.starts++
	return nil
}

func (d *fakeDevice) Play(s beep.Streamer) {
	d.mu.Lock()
	d.plays++
	d.mu.Unlock()

	go func() {
		samples := make([][2]float64, 512)
		for {
			if _, ok := s.Stream(samples); !ok {
				return
			}
		}
	}()
}

func (d *fakeDevice) Clear() {
	d.mu.Lock()
	d.clears++
	d.mu.Unlock()
}

// latencyFetcher answers after a per-segment latency, aborting early when
// the context is cancelled.
type latencyFetcher struct {
	byText  map[string]time.Duration
	aborted int32
}

func (f *latencyFetcher) FetchSpeech(ctx context.Context, text string) ([]byte, error) {
	select {
	case <-time.After(f.byText[text]):
		return []byte("mp3"), nil
	case <-ctx.Done():
		atomic.AddInt32(&f.aborted, 1)
		return nil, ctx.Err()
	}
}

func newTestPlayer(f Fetcher, device Device) *Player {
	p := NewPlayer(newTestLoader(f), device)
	p.SetPause(5 * time.Millisecond)
	p.SetPrimeDuration(time.Millisecond)
	return p
}

// The engine's central correctness property: whatever order loads complete
// in, segments play strictly in index order.
func TestPlayer_PlaysInOrderRegardlessOfLoadLatency(t *testing.T) {
	// Segment 1 loads first, then 2, then 0. Playback must still be 0, 1, 2.
	fetcher := &latencyFetcher{byText: map[string]time.Duration{
		"Para 1.": 300 * time.Millisecond,
		"Para 2.": 50 * time.Millisecond,
		"Para 3.": 150 * time.Millisecond,
	}}
	player := newTestPlayer(fetcher, &fakeDevice{})

	var mu sync.Mutex
	var order []int
	player.OnSegment(func(index, total int) {
		mu.Lock()
		order = append(order, index)
		mu.Unlock()
		assert.Equal(t, 3, total)
	})

	err := player.Play("Para 1.\n\nPara 2.\n\nPara 3.")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, StateIdle, player.State())
}

func TestPlayer_CancelBeforeFirstPlayback(t *testing.T) {
	fetcher := &latencyFetcher{byText: map[string]time.Duration{
		"Para 1.": 500 * time.Millisecond,
		"Para 2.": 500 * time.Millisecond,
		"Para 3.": 500 * time.Millisecond,
	}}
	device := &fakeDevice{}
	player := newTestPlayer(fetcher, device)

	var played int32
	player.OnSegment(func(index, total int) {
		atomic.AddInt32(&played, 1)
	})

	done := make(chan error, 1)
	go func() { done <- player.Play("Para 1.\n\nPara 2.\n\nPara 3.") }()

	time.Sleep(10 * time.Millisecond)
	player.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err, "a user stop is not a failure")
	case <-time.After(time.Second):
		t.Fatal("player did not stop in time")
	}

	// All three in-flight loads must observe the cancellation.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetcher.aborted) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&played), "no segment may start playing after cancel")
	assert.Equal(t, StateIdle, player.State())
}

func TestPlayer_StopIsIdempotent(t *testing.T) {
	player := newTestPlayer(&latencyFetcher{}, &fakeDevice{})

	player.Stop()
	player.Stop()
	assert.Equal(t, StateIdle, player.State())
	assert.False(t, player.IsPlaying())
}

func TestPlayer_PlayWhilePlayingStops(t *testing.T) {
	fetcher := &latencyFetcher{byText: map[string]time.Duration{"Solo un párrafo.": time.Second}}
	player := newTestPlayer(fetcher, &fakeDevice{})

	done := make(chan error, 1)
	go func() { done <- player.Play("Solo un párrafo.") }()

	require.Eventually(t, func() bool { return player.IsPlaying() }, time.Second, time.Millisecond)

	// Toggle semantics: a second play request stops the session.
	require.NoError(t, player.Play("Otro cuento."))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first session did not stop")
	}
	assert.Equal(t, StateIdle, player.State())
}

func TestPlayer_LoadFailureAbortsSession(t *testing.T) {
	failing := funcFetcher(func(ctx context.Context, text string) ([]byte, error) {
		if text == "Para 2." {
			return nil, &stubStatusError{code: 502}
		}
		select {
		case <-time.After(200 * time.Millisecond):
			return []byte("mp3"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	player := newTestPlayer(failing, &fakeDevice{})

	err := player.Play("Para 1.\n\nPara 2.\n\nPara 3.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, StateIdle, player.State())
}

func TestPlayer_DeviceActivationFailureIsFatal(t *testing.T) {
	device := &fakeDevice{startErr: errors.New("no output device")}
	player := newTestPlayer(&latencyFetcher{}, device)

	err := player.Play("Un párrafo.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio output")
	assert.Equal(t, StateIdle, player.State())
}

func TestPlayer_EmptyTextIsNoOp(t *testing.T) {
	device := &fakeDevice{}
	player := newTestPlayer(&latencyFetcher{}, device)

	require.NoError(t, player.Play("   \n\n  "))

	device.mu.Lock()
	defer device.mu.Unlock()
	assert.Zero(t, device.plays, "nothing to play, not even the priming tone")
}

func TestPlayer_PrimesBeforeFirstSegment(t *testing.T) {
	device := &fakeDevice{}
	player := newTestPlayer(&latencyFetcher{}, device)

	require.NoError(t, player.Play("Un párrafo."))

	device.mu.Lock()
	defer device.mu.Unlock()
	// One priming tone plus one segment.
	assert.Equal(t, 2, device.plays)
}
