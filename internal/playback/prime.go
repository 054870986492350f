package playback

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/generators"
)

// primeSampleRate is used before the first segment's own format is known.
const primeSampleRate = beep.SampleRate(44100)

// primeTone builds a short, effectively inaudible tone. Some platforms keep
// the output muted until a sound has been produced inside a user-initiated
// call; playing this first unlocks them.
func primeTone(sr beep.SampleRate, duration time.Duration) (beep.Streamer, error) {
	tone, err := generators.SinTone(sr, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to build priming tone: %w", err)
	}

	// Gain of -0.999 leaves 0.1% of the amplitude, matching the near-silent
	// oscillator the listener never hears.
	return &effects.Gain{
		Streamer: beep.Take(sr.N(duration), tone),
		Gain:     -0.999,
	}, nil
}
