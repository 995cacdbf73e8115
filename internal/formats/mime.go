package formats

import (
	"strings"

	"github.com/famomatic/ytx/internal/types"
)

// extTable is the closed mime-to-extension lookup. Full mime types take
// precedence over bare subtypes so audio/mp4 maps to m4a while video/mp4
// falls through to the mp4 subtype entry.
var extTable = map[string]types.Ext{
	"audio/mp4":  types.ExtM4A,
	"audio/webm": types.ExtWebA,
	"x-m4a":      types.ExtM4A,

	"mp4":              types.ExtMP4,
	"x-mp4-fragmented": types.ExtMP4,
	"webm":             types.ExtWebM,
	"3gpp":             types.Ext3GP,
	"x-flv":            types.ExtFLV,
	"mp2t":             types.ExtTS,

	"mpegurl":           types.ExtM3U8,
	"x-mpegurl":         types.ExtM3U8,
	"vnd.apple.mpegurl": types.ExtM3U8,
}

// ExtFromMime resolves a mime type like `video/mp4; codecs="avc1..."` to
// a container extension. Lookup order: full type, subtype, subtype after
// a "+" suffix. Anything outside the table is Unknown.
func ExtFromMime(mimeType string) types.Ext {
	mime, _, _ := strings.Cut(mimeType, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))

	if ext, ok := extTable[mime]; ok {
		return ext
	}
	subtype := mime
	if i := strings.LastIndexByte(mime, '/'); i >= 0 {
		subtype = mime[i+1:]
	}
	if ext, ok := extTable[subtype]; ok {
		return ext
	}
	if i := strings.LastIndexByte(subtype, '+'); i >= 0 {
		if ext, ok := extTable[subtype[i+1:]]; ok {
			return ext
		}
	}
	return types.ExtUnknown
}
