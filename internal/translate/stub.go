package translate

import (
	"context"
	"io"
	"sync"
)

// Script is a scripted Translator for tests and offline runs: it replays a
// fixed fragment sequence instead of calling the provider.
type Script struct {
	Fragments []string
	// Err, if set, terminates the stream after Fragments are drained.
	Err error
	// OpenErr, if set, fails the Stream call itself.
	OpenErr error

	mu         sync.Mutex
	LastModel  string
	LastSystem string
	LastText   string
	Calls      int
}

func (s *Script) Stream(ctx context.Context, model, system, text string) (Stream, error) {
	s.mu.Lock()
	s.LastModel = model
	s.LastSystem = system
	s.LastText = text
	s.Calls++
	s.mu.Unlock()
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	frags := make([]string, len(s.Fragments))
	copy(frags, s.Fragments)
	return &scriptStream{frags: frags, err: s.Err}, nil
}

type scriptStream struct {
	frags []string
	err   error
}

func (s *scriptStream) Recv() (string, error) {
	if len(s.frags) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	frag := s.frags[0]
	s.frags = s.frags[1:]
	return frag, nil
}

func (s *scriptStream) Close() {}
