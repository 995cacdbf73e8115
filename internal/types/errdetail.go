package types

import "fmt"

// HTTPStatusError reports a non-success HTTP status whose body could not be
// decoded. It matches ErrTransport under errors.Is.
type HTTPStatusError struct {
	Status int
	URL    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d for %s", e.Status, e.URL)
}

func (e *HTTPStatusError) Unwrap() error { return ErrTransport }

// PlayabilityError carries the playability verdict a client returned for a
// video that could not be extracted. It matches ErrNoPlayerResponse.
type PlayabilityError struct {
	Client string
	Status string
	Reason string
}

func (e *PlayabilityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("client %s: playability %s: %s", e.Client, e.Status, e.Reason)
	}
	return fmt.Sprintf("client %s: playability %s", e.Client, e.Status)
}

func (e *PlayabilityError) Unwrap() error { return ErrNoPlayerResponse }

// AttemptError records one failed client attempt inside the extraction loop.
type AttemptError struct {
	Client string
	Err    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("client %s: %v", e.Client, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }
