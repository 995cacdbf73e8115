package types

// Thumbnail is one thumbnail rendition.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// VideoInfo contains the general metadata of a video.
type VideoInfo struct {
	ID          string
	Title       string
	Description string
	Duration    int64 // seconds
	ViewCount   int64
	Channel     string
	ChannelID   string
	Keywords    []string
	Thumbnails  []Thumbnail
	MediaType   string // "video" or "livestream"
	AgeLimit    int
}
