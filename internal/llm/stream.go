package llm

// Stream is a finite, non-restartable sequence of answer text fragments.
// Usage mirrors bufio.Scanner: call Next until it returns false, then check
// Err. Close releases the underlying connection and may be called early to
// abandon the stream; an abandoned stream yields no further fragments.
type Stream interface {
	// Next advances to the next non-empty fragment.
	Next() bool

	// Current returns the fragment produced by the last successful Next.
	Current() string

	// Err returns the first error encountered, nil on clean end-of-stream.
	Err() error

	// Close releases stream resources.
	Close() error
}
