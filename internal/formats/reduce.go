// Package formats folds player-response streaming data into the flat
// stream descriptors the selection and download layers work with.
package formats

import (
	"strconv"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/types"
)

// Reduce unions formats and adaptiveFormats of one player response and
// emits a descriptor per usable entry. Livestream segment formats and
// DRM-protected formats are dropped.
func Reduce(pr *innertube.PlayerResponse, client string) []types.StreamDescriptor {
	raw := make([]innertube.Format, 0, len(pr.StreamingData.Formats)+len(pr.StreamingData.AdaptiveFormats))
	raw = append(raw, pr.StreamingData.Formats...)
	raw = append(raw, pr.StreamingData.AdaptiveFormats...)

	videoDuration := parseSeconds(pr.VideoDetails.LengthSeconds)

	out := make([]types.StreamDescriptor, 0, len(raw))
	for i := range raw {
		f := &raw[i]
		if f.TargetDurationSec != nil {
			continue
		}
		if f.HasDRM() {
			continue
		}
		source, ok := sourceOf(f)
		if !ok {
			continue
		}
		out = append(out, descriptor(f, source, client, videoDuration))
	}
	return out
}

func descriptor(f *innertube.Format, source types.StreamSource, client string, videoDuration float64) types.StreamDescriptor {
	itag := strconv.Itoa(f.Itag)
	vcodec, acodec := ParseCodecs(codecsParam(f.MimeType))

	tbr := bitrateKbps(f)
	contentLength, _ := strconv.ParseInt(f.ContentLength, 10, 64)

	duration := videoDuration
	if ms, err := strconv.ParseInt(f.ApproxDurationMs, 10, 64); err == nil && ms > 0 {
		duration = float64(ms) / 1000
	}
	var approx int64
	if tbr > 0 && duration > 0 {
		approx = int64(duration * tbr * 125)
	}

	asr, _ := strconv.ParseInt(f.AudioSampleRate, 10, 64)

	var track *types.AudioTrack
	if f.AudioTrack != nil {
		track = &types.AudioTrack{
			DisplayName: f.AudioTrack.DisplayName,
			IsDefault:   f.AudioTrack.AudioIsDefault,
		}
	}

	return types.StreamDescriptor{
		Itag:           itag,
		Ext:            ExtFromMime(f.MimeType),
		VCodec:         vcodec,
		ACodec:         acodec,
		ASR:            asr,
		ContentLength:  contentLength,
		ApproxFileSize: approx,
		Width:          f.Width,
		Height:         f.Height,
		FPS:            f.FPS,
		TBR:            tbr,
		Quality:        qualityOf(f, itag),
		QualityLabel:   f.QualityLabel,
		IsDRC:          f.IsDrc,
		Projection:     f.ProjectionType,
		AudioTrack:     track,
		SourceClient:   client,
		Source:         source,
	}
}

func sourceOf(f *innertube.Format) (types.StreamSource, bool) {
	if f.URL != "" {
		return types.URLSource(f.URL), true
	}
	if cipher := f.CipherQuery(); cipher != "" {
		return types.SignatureSource(cipher), true
	}
	return types.StreamSource{}, false
}

// qualityOf prefers quality, falls back to audioQuality when quality is
// "tiny" or absent, and pins itag 17 to "tiny" regardless.
func qualityOf(f *innertube.Format, itag string) string {
	if itag == "17" {
		return "tiny"
	}
	q := f.Quality
	if q == "" || q == "tiny" {
		if f.AudioQuality != "" {
			return f.AudioQuality
		}
	}
	return q
}

// defaultTBR stands in when a format carries neither bitrate field, so
// an approximate size can still be derived.
const defaultTBR = 1000 // kbps

// bitrateKbps scales averageBitrate (or bitrate) from bits per second
// down to kbps, which is what the approximate-size formula expects.
func bitrateKbps(f *innertube.Format) float64 {
	bits := f.AverageBitrate
	if bits == 0 {
		bits = f.Bitrate
	}
	if bits == 0 {
		return defaultTBR
	}
	return float64(bits) / 1000
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
