package types

// Ext is the closed set of container extensions derived from mime types.
type Ext string

const (
	ExtMP4     Ext = "mp4"
	ExtM4A     Ext = "m4a"
	ExtWebM    Ext = "webm"
	ExtWebA    Ext = "weba"
	Ext3GP     Ext = "3gp"
	ExtFLV     Ext = "flv"
	ExtTS      Ext = "ts"
	ExtM3U8    Ext = "m3u8"
	ExtUnknown Ext = "unknown"
)

// StreamSource is the tagged source of a stream: either a directly
// usable URL or an opaque signature query that still needs deciphering.
type StreamSource struct {
	kind      sourceKind
	URL       string
	Signature string
}

type sourceKind uint8

const (
	sourceURL sourceKind = iota + 1
	sourceSignature
)

// URLSource builds a directly playable source.
func URLSource(u string) StreamSource {
	return StreamSource{kind: sourceURL, URL: u}
}

// SignatureSource builds a source that carries a signature cipher query.
func SignatureSource(s string) StreamSource {
	return StreamSource{kind: sourceSignature, Signature: s}
}

func (s StreamSource) IsURL() bool       { return s.kind == sourceURL }
func (s StreamSource) IsSignature() bool { return s.kind == sourceSignature }

// AudioTrack describes the audio track attached to a format, when any.
type AudioTrack struct {
	DisplayName string
	IsDefault   bool
}

// StreamDescriptor is one playable format folded out of a player response.
type StreamDescriptor struct {
	Itag           string
	Ext            Ext
	VCodec         string
	ACodec         string
	ASR            int64
	ContentLength  int64
	ApproxFileSize int64
	Width          int
	Height         int
	FPS            int
	TBR            float64
	Quality        string
	QualityLabel   string
	IsDRC          bool
	Projection     string
	AudioTrack     *AudioTrack
	HasDRM         bool
	SourceClient   string
	Source         StreamSource
}
