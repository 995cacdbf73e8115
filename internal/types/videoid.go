package types

import "fmt"

// VideoID is a validated 11-character video identifier.
type VideoID string

// NewVideoID validates s against the canonical ID shape: exactly 11
// characters from [A-Za-z0-9_-].
func NewVideoID(s string) (VideoID, error) {
	if len(s) != 11 {
		return "", fmt.Errorf("%w: video id must be 11 characters, got %d", ErrInvalidInput, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return "", fmt.Errorf("%w: video id contains %q", ErrInvalidInput, rune(c))
		}
	}
	return VideoID(s), nil
}

func (v VideoID) String() string { return string(v) }
