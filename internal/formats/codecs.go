package formats

import (
	"regexp"
	"strings"
)

var (
	codecsParamPattern = regexp.MustCompile(`codecs\s*=\s*"([^"]*)"`)
	codecSplitPattern  = regexp.MustCompile(`\s*,\s*`)
	codecTokenPattern  = regexp.MustCompile(`^(?P<prefix>[A-Za-z0-9-]+)(?:\.(?P<params>.+))?$`)
)

var videoCodecPrefixes = map[string]struct{}{
	"avc1": {}, "avc2": {}, "avc3": {}, "avc4": {},
	"vp9": {}, "vp8": {},
	"hev1": {}, "hev2": {}, "hvc1": {},
	"h263": {}, "h264": {}, "mp4v": {},
	"av1": {}, "theora": {},
	"dvh1": {}, "dvhe": {},
}

var audioCodecPrefixes = map[string]struct{}{
	"flac": {}, "mp4a": {}, "opus": {}, "vorbis": {},
	"mp3": {}, "aac": {},
	"ac-4": {}, "ac-3": {}, "ec-3": {}, "eac3": {},
	"dtsc": {}, "dtse": {}, "dtsh": {}, "dtsl": {},
}

// codecsParam pulls the codecs="..." parameter out of a mime type.
func codecsParam(mimeType string) string {
	m := codecsParamPattern.FindStringSubmatch(mimeType)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseCodecs splits a codecs parameter into its first video and first
// audio codec. Numeric parameter segments lose their leading zeros, so
// "avc1.04D401E" and "avc1.4D401E" normalize alike.
func ParseCodecs(codecs string) (vcodec, acodec string) {
	trimmed := strings.Trim(strings.TrimSpace(codecs), ",")
	if trimmed == "" {
		return "", ""
	}

	for _, token := range codecSplitPattern.Split(trimmed, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		m := codecTokenPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		prefix := strings.ToLower(m[1])
		full := prefix
		if m[2] != "" {
			full = prefix + "." + normalizeParams(m[2])
		}

		if _, ok := videoCodecPrefixes[prefix]; ok {
			if vcodec == "" {
				vcodec = full
			}
		} else if _, ok := audioCodecPrefixes[prefix]; ok {
			if acodec == "" {
				acodec = full
			}
		}
	}
	return vcodec, acodec
}

func normalizeParams(params string) string {
	parts := strings.Split(params, ".")
	for i, p := range parts {
		if p == "" || !allDigits(p) {
			continue
		}
		stripped := strings.TrimLeft(p, "0")
		if stripped == "" {
			stripped = "0"
		}
		parts[i] = stripped
	}
	return strings.Join(parts, ".")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
