package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
)

// Fetcher turns one text segment into binary MP3 audio. Implementations must
// honour context cancellation at the transport level, not just return early.
type Fetcher interface {
	FetchSpeech(ctx context.Context, text string) ([]byte, error)
}

// DecodedAudio is the result of successfully loading one segment: a fully
// decoded buffer ready for the output device.
type DecodedAudio struct {
	Index  int
	Buffer *beep.Buffer
}

// Loader fetches and decodes segments. Loads for distinct segments are
// independent; the player runs them concurrently.
type Loader struct {
	fetcher Fetcher
	decode  func(data []byte) (*beep.Buffer, error)
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher, decode: decodeMP3}
}

// Load fetches and decodes a single segment. The returned error wraps exactly
// one of ErrNetwork, ErrUpstream, ErrDecode or ErrCancelled.
func (l *Loader) Load(ctx context.Context, seg Segment) (DecodedAudio, error) {
	data, err := l.fetcher.FetchSpeech(ctx, seg.Text)
	if err != nil {
		return DecodedAudio{}, classifyFetchError(seg.Index, err)
	}

	if ctx.Err() != nil {
		return DecodedAudio{}, ErrCancelled
	}

	buffer, err := l.decode(data)
	if err != nil {
		return DecodedAudio{}, fmt.Errorf("segment %d: %w: %v", seg.Index, ErrDecode, err)
	}

	return DecodedAudio{Index: seg.Index, Buffer: buffer}, nil
}

func classifyFetchError(index int, err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}

	var status interface{ StatusCode() int }
	if errors.As(err, &status) {
		return fmt.Errorf("segment %d: %w: status %d", index, ErrUpstream, status.StatusCode())
	}

	return fmt.Errorf("segment %d: %w: %v", index, ErrNetwork, err)
}

// decodeMP3 decodes the whole blob into an owned buffer so the network bytes
// can be released and playback never touches the decoder again.
func decodeMP3(data []byte) (*beep.Buffer, error) {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return buffer, nil
}
