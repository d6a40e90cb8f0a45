package translate

import "context"

// Stream is one open translation stream. Recv returns the next non-empty
// text fragment, io.EOF when the provider finished, or any other error as a
// terminal failure. Streams are finite and not restartable.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Translator is the sole contact point with the external model provider.
// Concatenating every fragment of a stream yields the full translation.
type Translator interface {
	Stream(ctx context.Context, model, system, text string) (Stream, error)
}
