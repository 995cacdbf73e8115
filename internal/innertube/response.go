package innertube

import "strings"

// PlayerResponse is the decoded shape of one /player reply. Only the parts
// the extraction pipeline reads are typed; the raw object is kept alongside
// for key searches.
type PlayerResponse struct {
	ResponseContext   ResponseContext   `json:"responseContext"`
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	StreamingData     StreamingData     `json:"streamingData"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	Microformat       Microformat       `json:"microformat"`
}

type ResponseContext struct {
	VisitorData               string                    `json:"visitorData"`
	MainAppWebResponseContext MainAppWebResponseContext `json:"mainAppWebResponseContext"`
}

type MainAppWebResponseContext struct {
	DatasyncID string `json:"datasyncId"`
	LoggedOut  bool   `json:"loggedOut"`
}

type PlayabilityStatus struct {
	Status                     string       `json:"status"`
	Reason                     string       `json:"reason"`
	PlayableInEmbed            bool         `json:"playableInEmbed"`
	DesktopLegacyAgeGateReason int          `json:"desktopLegacyAgeGateReason"`
	ErrorScreen                *ErrorScreen `json:"errorScreen"`
}

type ErrorScreen struct {
	PlayerErrorMessageRenderer *PlayerErrorMessageRenderer `json:"playerErrorMessageRenderer"`
}

type PlayerErrorMessageRenderer struct {
	Reason    LangText `json:"reason"`
	Subreason LangText `json:"subreason"`
}

func (p *PlayabilityStatus) IsOK() bool { return p.Status == "OK" }

func (p *PlayabilityStatus) IsUnplayable() bool { return p.Status == "UNPLAYABLE" }

// Reasons collects every human-readable verdict string on the status.
func (p *PlayabilityStatus) Reasons() []string {
	var reasons []string
	if p.Reason != "" {
		reasons = append(reasons, p.Reason)
	}
	if p.ErrorScreen != nil && p.ErrorScreen.PlayerErrorMessageRenderer != nil {
		r := p.ErrorScreen.PlayerErrorMessageRenderer
		if text := r.Reason.Text(); text != "" {
			reasons = append(reasons, text)
		}
		if text := r.Subreason.Text(); text != "" {
			reasons = append(reasons, text)
		}
	}
	return reasons
}

// ageGateReasons are matched as case-sensitive substrings of any
// playability reason.
var ageGateReasons = []string{
	"confirm your age",
	"age-restricted",
	"inappropriate",
	"age_verification_required",
	"age_check_required",
}

// IsAgeGated reports whether the playability verdict is an age gate.
func (p *PlayabilityStatus) IsAgeGated() bool {
	if p.DesktopLegacyAgeGateReason != 0 {
		return true
	}
	for _, reason := range p.Reasons() {
		for _, marker := range ageGateReasons {
			if strings.Contains(reason, marker) {
				return true
			}
		}
	}
	return false
}

type StreamingData struct {
	ExpiresInSeconds string   `json:"expiresInSeconds"`
	Formats          []Format `json:"formats"`
	AdaptiveFormats  []Format `json:"adaptiveFormats"`
	DashManifestURL  string   `json:"dashManifestUrl"`
	HlsManifestURL   string   `json:"hlsManifestUrl"`
}

type Format struct {
	Itag             int      `json:"itag"`
	URL              string   `json:"url"`
	MimeType         string   `json:"mimeType"`
	Bitrate          int64    `json:"bitrate"`
	AverageBitrate   int64    `json:"averageBitrate"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	FPS              int      `json:"fps"`
	ContentLength    string   `json:"contentLength"`
	Quality          string   `json:"quality"`
	QualityLabel     string   `json:"qualityLabel"`
	ProjectionType   string   `json:"projectionType"`
	AudioQuality     string   `json:"audioQuality"`
	ApproxDurationMs string   `json:"approxDurationMs"`
	AudioSampleRate  string   `json:"audioSampleRate"`
	AudioChannels    int      `json:"audioChannels"`
	IsDrc            bool     `json:"isDrc"`

	AudioTrack *FormatAudioTrack `json:"audioTrack"`

	// TargetDurationSec marks livestream segment formats; its presence,
	// not its value, is what matters.
	TargetDurationSec *float64 `json:"targetDurationSec"`

	DrmFamilies []string `json:"drmFamilies"`

	SignatureCipher string `json:"signatureCipher"`
	Cipher          string `json:"cipher"` // legacy field name
}

// CipherQuery returns whichever signature-cipher field is populated.
func (f *Format) CipherQuery() string {
	if f.SignatureCipher != "" {
		return f.SignatureCipher
	}
	return f.Cipher
}

// HasDRM reports whether the format carries DRM markers.
func (f *Format) HasDRM() bool { return len(f.DrmFamilies) > 0 }

type FormatAudioTrack struct {
	DisplayName    string `json:"displayName"`
	ID             string `json:"id"`
	AudioIsDefault bool   `json:"audioIsDefault"`
}

type VideoDetails struct {
	VideoID          string           `json:"videoId"`
	Title            string           `json:"title"`
	LengthSeconds    string           `json:"lengthSeconds"`
	Keywords         []string         `json:"keywords"`
	ChannelID        string           `json:"channelId"`
	ShortDescription string           `json:"shortDescription"`
	Thumbnail        ThumbnailDetails `json:"thumbnail"`
	ViewCount        string           `json:"viewCount"`
	Author           string           `json:"author"`
	IsPrivate        bool             `json:"isPrivate"`
	IsLive           bool             `json:"isLive"`
	IsLiveContent    bool             `json:"isLiveContent"`
}

type ThumbnailDetails struct {
	Thumbnails []Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Microformat struct {
	PlayerMicroformatRenderer PlayerMicroformatRenderer `json:"playerMicroformatRenderer"`
}

type PlayerMicroformatRenderer struct {
	Thumbnail         ThumbnailDetails `json:"thumbnail"`
	Title             LangText         `json:"title"`
	Description       LangText         `json:"description"`
	LengthSeconds     string           `json:"lengthSeconds"`
	OwnerProfileURL   string           `json:"ownerProfileUrl"`
	ExternalChannelID string           `json:"externalChannelId"`
	IsFamilySafe      bool             `json:"isFamilySafe"`
	IsUnlisted        bool             `json:"isUnlisted"`
	ViewCount         string           `json:"viewCount"`
	Category          string           `json:"category"`
	PublishDate       string           `json:"publishDate"`
	OwnerChannelName  string           `json:"ownerChannelName"`
	UploadDate        string           `json:"uploadDate"`
	ContentRating     ContentRating    `json:"contentRating"`

	LiveBroadcastDetails *LiveBroadcastDetails `json:"liveBroadcastDetails"`
}

type LiveBroadcastDetails struct {
	IsLiveNow      bool   `json:"isLiveNow"`
	StartTimestamp string `json:"startTimestamp"`
}

type ContentRating struct {
	YtRating string `json:"ytRating"`
}

// LangText is either a simpleText string or a list of runs.
type LangText struct {
	SimpleText string    `json:"simpleText"`
	Runs       []TextRun `json:"runs"`
}

type TextRun struct {
	Text string `json:"text"`
}

// Text flattens the value to plain text.
func (t LangText) Text() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, run := range t.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}
