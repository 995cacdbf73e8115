package client

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	videoIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	watchURLPattern = regexp.MustCompile(`(?:v=|/shorts/|/embed/|/v/|/live/|youtu\.be/)([0-9A-Za-z_-]{11})`)
	youtubeHost     = regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)?(?:youtube\.com|youtu\.be)(?:[/?#]|$)`)
)

// ExtractVideoID accepts a bare 11-character id or any of the common
// watch URL shapes (watch?v=, youtu.be/, /shorts/, /embed/, /v/, /live/).
func ExtractVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	if !youtubeHost.MatchString(s) {
		return "", fmt.Errorf("%w: not a video id or a youtube url", ErrInvalidInput)
	}
	if m := watchURLPattern.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: no video id in url", ErrInvalidInput)
}
