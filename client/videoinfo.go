package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/types"
)

// VideoInfo is the folded video metadata. Thumbnail is one rendition.
type (
	VideoInfo = types.VideoInfo
	Thumbnail = types.Thumbnail
)

// GetVideoInfo extracts the manifest and folds its metadata in one call.
func (c *Client) GetVideoInfo(ctx context.Context, input string) (*VideoInfo, error) {
	manifest, err := c.GetManifest(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.GetVideoInfoFromManifest(ctx, manifest)
}

// GetVideoInfoFromManifest folds metadata out of an already-fetched
// manifest. Each field takes its value from the first response that
// carries it.
func (c *Client) GetVideoInfoFromManifest(_ context.Context, manifest *Manifest) (*VideoInfo, error) {
	info := &VideoInfo{ID: manifest.VideoID, MediaType: "video"}
	found := false

	for _, entry := range manifest.Responses {
		pr, err := entry.decode()
		if err != nil {
			c.logger.Warnf("manifest entry from %s skipped: %v", entry.Client, err)
			continue
		}
		mergeVideoInfo(info, pr)
		if pr.VideoDetails.VideoID != "" {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no video details in any player response", ErrDataMissing)
	}
	return info, nil
}

func mergeVideoInfo(info *VideoInfo, pr *innertube.PlayerResponse) {
	details := pr.VideoDetails
	micro := pr.Microformat.PlayerMicroformatRenderer

	if info.Title == "" {
		info.Title = details.Title
	}
	if info.Title == "" {
		info.Title = micro.Title.Text()
	}
	if info.Description == "" {
		info.Description = details.ShortDescription
	}
	if info.Description == "" {
		info.Description = micro.Description.Text()
	}
	if info.Duration == 0 {
		info.Duration = parseInt64(details.LengthSeconds)
	}
	if info.Duration == 0 {
		info.Duration = parseInt64(micro.LengthSeconds)
	}
	if info.ViewCount == 0 {
		info.ViewCount = parseInt64(details.ViewCount)
	}
	if info.ViewCount == 0 {
		info.ViewCount = parseInt64(micro.ViewCount)
	}
	if info.Channel == "" {
		info.Channel = details.Author
	}
	if info.Channel == "" {
		info.Channel = micro.OwnerChannelName
	}
	if info.ChannelID == "" {
		info.ChannelID = details.ChannelID
	}
	if info.ChannelID == "" {
		info.ChannelID = micro.ExternalChannelID
	}
	if len(info.Keywords) == 0 {
		info.Keywords = details.Keywords
	}
	if len(info.Thumbnails) == 0 {
		info.Thumbnails = foldThumbnails(details.Thumbnail, micro.Thumbnail)
	}
	if details.IsLiveContent || details.IsLive {
		info.MediaType = "livestream"
	}
	if micro.ContentRating.YtRating == "ytAgeRestricted" {
		info.AgeLimit = 18
	}
}

func foldThumbnails(sets ...innertube.ThumbnailDetails) []Thumbnail {
	for _, set := range sets {
		if len(set.Thumbnails) == 0 {
			continue
		}
		out := make([]Thumbnail, 0, len(set.Thumbnails))
		for _, t := range set.Thumbnails {
			out = append(out, Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
		}
		return out
	}
	return nil
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
