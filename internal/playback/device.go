package playback

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Device is the audio output the player talks to. The process owns exactly
// one; only the active session touches it.
type Device interface {
	// Start (re)configures the output for the given sample rate. Called
	// before the priming tone and again whenever a segment's rate differs.
	Start(sr beep.SampleRate) error
	// Play queues a streamer asynchronously; completion is observed through
	// a beep.Callback appended to the streamer.
	Play(s beep.Streamer)
	// Clear silences the device immediately, dropping whatever is queued.
	Clear()
}

// SpeakerDevice drives the real speaker.
type SpeakerDevice struct {
	mu sync.Mutex
	sr beep.SampleRate
}

func NewSpeakerDevice() *SpeakerDevice {
	return &SpeakerDevice{}
}

func (d *SpeakerDevice) Start(sr beep.SampleRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sr == sr {
		return nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return err
	}
	d.sr = sr
	return nil
}

func (d *SpeakerDevice) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (d *SpeakerDevice) Clear() {
	speaker.Clear()
}
