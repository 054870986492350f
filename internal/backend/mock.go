package backend

import "context"

// Mock is a canned backend for development and tests.
type Mock struct {
	Story string
	Audio []byte
	Err   error
}

func NewMock() *Mock {
	return &Mock{
		Story: "Había una vez un dinosaurio muy valiente.\n\nY colorín colorado, este cuento se ha acabado.",
		Audio: []byte("mock-mp3-bytes"),
	}
}

func (m *Mock) Compose(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Story, nil
}

func (m *Mock) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}
