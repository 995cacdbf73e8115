package innertube

import "github.com/famomatic/ytx/internal/types"

// PlaybackContext mirrors the player request's playbackContext block.
type PlaybackContext struct {
	ContentPlaybackContext ContentPlaybackContext `json:"contentPlaybackContext"`
}

type ContentPlaybackContext struct {
	HTML5Preference    string `json:"html5Preference"`
	SignatureTimestamp int    `json:"signatureTimestamp,omitempty"`
}

// ServiceIntegrityDimensions carries the player PO token.
type ServiceIntegrityDimensions struct {
	PoToken string `json:"poToken,omitempty"`
}

// PlayerRequestOptions tune one /player call.
type PlayerRequestOptions struct {
	SignatureTimestamp int
	PoToken            string
}

// NewPlayerQuery assembles the /player body fields placed beside context.
// Check-ok flags are always sent so age-verifiable content is returned.
func NewPlayerQuery(videoID types.VideoID, opts PlayerRequestOptions) map[string]any {
	query := map[string]any{
		"videoId":        videoID.String(),
		"contentCheckOk": true,
		"racyCheckOk":    true,
		"playbackContext": PlaybackContext{
			ContentPlaybackContext: ContentPlaybackContext{
				HTML5Preference:    "HTML5_PREF_WANTS",
				SignatureTimestamp: opts.SignatureTimestamp,
			},
		},
	}
	if opts.PoToken != "" {
		query["serviceIntegrityDimensions"] = ServiceIntegrityDimensions{PoToken: opts.PoToken}
	}
	return query
}
