package formats

import (
	"testing"

	"github.com/famomatic/ytx/internal/types"
)

func TestParseCodecs(t *testing.T) {
	tests := []struct {
		in    string
		wantV string
		wantA string
	}{
		{`avc1.42001E, mp4a.40.2`, "avc1.42001E", "mp4a.40.2"},
		{`vp9`, "vp9", ""},
		{`opus`, "", "opus"},
		{`av01.0.12M.10`, "", ""}, // av01 is not in the known prefix set
		{`avc1.04D401E`, "avc1.04D401E", ""}, // hex segment keeps its zero
		{`mp4a.40.02`, "", "mp4a.40.2"},
		{`ec-3`, "", "ec-3"},
		{`AVC1.64002A, MP4A.40.2`, "avc1.64002A", "mp4a.40.2"},
		{`avc1.640028, avc1.42001E`, "avc1.640028", ""},
		{`mp4a.40.2, opus`, "", "mp4a.40.2"},
		{` , `, "", ""},
		{``, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, a := ParseCodecs(tt.in)
			if v != tt.wantV || a != tt.wantA {
				t.Fatalf("ParseCodecs(%q) = %q, %q, want %q, %q", tt.in, v, a, tt.wantV, tt.wantA)
			}
		})
	}
}

func TestExtFromMime(t *testing.T) {
	tests := []struct {
		in   string
		want types.Ext
	}{
		{`video/mp4; codecs="avc1.42001E"`, types.ExtMP4},
		{`audio/mp4; codecs="mp4a.40.2"`, types.ExtM4A},
		{`video/webm; codecs="vp9"`, types.ExtWebM},
		{`audio/webm; codecs="opus"`, types.ExtWebA},
		{`video/3gpp; codecs="mp4v.20.3, mp4a.40.2"`, types.Ext3GP},
		{`video/x-flv`, types.ExtFLV},
		{`video/mp2t`, types.ExtTS},
		{`application/vnd.apple.mpegurl`, types.ExtM3U8},
		{`application/x-mpegURL`, types.ExtM3U8},
		{`application/octet-stream`, types.ExtUnknown},
		{``, types.ExtUnknown},
	}

	for _, tt := range tests {
		if got := ExtFromMime(tt.in); got != tt.want {
			t.Fatalf("ExtFromMime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
