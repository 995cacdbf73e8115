package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/orchestrator"
)

// Manifest is the raw extraction result: every accepted player response
// plus the resolved player script URL. Fetch it once and feed it to the
// FromManifest variants when both streams and metadata are needed.
type Manifest struct {
	VideoID       string
	PlayerURL     string
	Authenticated bool
	Premium       bool
	Responses     []ManifestEntry
}

// ManifestEntry is one accepted player response, labeled with the client
// profile that produced it.
type ManifestEntry struct {
	Client string
	Data   map[string]any
}

func (e ManifestEntry) decode() (*innertube.PlayerResponse, error) {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest entry: %v", ErrDecode, err)
	}
	var pr innertube.PlayerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("%w: manifest entry: %v", ErrDecode, err)
	}
	return &pr, nil
}

// GetManifest extracts the raw manifest for a video id or watch URL.
func (c *Client) GetManifest(ctx context.Context, input string) (*Manifest, error) {
	res, err := c.extract(ctx, input)
	if err != nil {
		return nil, err
	}
	return manifestFromResult(res), nil
}

func manifestFromResult(res *orchestrator.Result) *Manifest {
	entries := make([]ManifestEntry, 0, len(res.Responses))
	for _, r := range res.Responses {
		entries = append(entries, ManifestEntry{Client: r.Client, Data: r.Raw})
	}
	return &Manifest{
		VideoID:       res.VideoID.String(),
		PlayerURL:     res.PlayerURL,
		Authenticated: res.Authenticated,
		Premium:       res.Premium,
		Responses:     entries,
	}
}
