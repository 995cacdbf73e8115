package downloader

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DASHDownloader downloads one representation out of an MPD manifest,
// refreshing the manifest while it stays dynamic.
type DASHDownloader struct {
	client           *http.Client
	manifestURL      string
	representationID string
	headers          http.Header
	cfg              TransportConfig

	seen    map[string]bool
	lastSeq int64
	skipped int
}

func NewDASHDownloader(client *http.Client, manifestURL, representationID string) *DASHDownloader {
	return &DASHDownloader{
		client:           client,
		manifestURL:      manifestURL,
		representationID: representationID,
		seen:             make(map[string]bool),
		lastSeq:          -1,
	}
}

// WithRequestHeaders sends the given headers on every manifest and
// segment request.
func (d *DASHDownloader) WithRequestHeaders(h http.Header) *DASHDownloader {
	d.headers = h.Clone()
	return d
}

// WithTransportConfig sets the retry and concurrency policy.
func (d *DASHDownloader) WithTransportConfig(cfg TransportConfig) *DASHDownloader {
	d.cfg = cfg
	return d
}

type dashMPD struct {
	XMLName             xml.Name     `xml:"MPD"`
	Type                string       `xml:"type,attr"`
	MinimumUpdatePeriod string       `xml:"minimumUpdatePeriod,attr"`
	BaseURL             string       `xml:"BaseURL"`
	Period              []dashPeriod `xml:"Period"`
}

type dashPeriod struct {
	AdaptationSet []dashAdaptationSet `xml:"AdaptationSet"`
}

type dashAdaptationSet struct {
	MimeType        string               `xml:"mimeType,attr"`
	Representation  []dashRepresentation `xml:"Representation"`
	SegmentTemplate *dashSegmentTemplate `xml:"SegmentTemplate"`
}

type dashRepresentation struct {
	ID              string               `xml:"id,attr"`
	Bandwidth       int                  `xml:"bandwidth,attr"`
	BaseURL         string               `xml:"BaseURL"`
	SegmentTemplate *dashSegmentTemplate `xml:"SegmentTemplate"`
}

type dashSegmentTemplate struct {
	Timescale       int64                `xml:"timescale,attr"`
	Initialization  string               `xml:"initialization,attr"`
	Media           string               `xml:"media,attr"`
	StartNumber     int64                `xml:"startNumber,attr"`
	SegmentTimeline *dashSegmentTimeline `xml:"SegmentTimeline"`
}

type dashSegmentTimeline struct {
	S []dashS `xml:"S"`
}

type dashS struct {
	// T is a pointer to tell a missing attribute from an explicit zero.
	T *int64 `xml:"t,attr"`
	D int64  `xml:"d,attr"`
	R int64  `xml:"r,attr"`
}

type dashSegment struct {
	URL string
	Seq int64
}

func (d *DASHDownloader) Download(ctx context.Context, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := fetchBytes(ctx, d.client, d.manifestURL, d.headers, d.cfg)
		if err != nil {
			return fmt.Errorf("dash manifest: %w", err)
		}
		var mpd dashMPD
		if err := xml.Unmarshal(body, &mpd); err != nil {
			return fmt.Errorf("dash manifest: %w", err)
		}

		segments, err := d.newSegments(&mpd)
		if err != nil {
			return err
		}

		dynamic := mpd.Type == "dynamic"
		if dynamic {
			err = d.downloadSequential(ctx, segments, w)
		} else {
			err = d.downloadOrdered(ctx, segments, w)
		}
		if err != nil {
			return err
		}

		if !dynamic {
			return nil
		}
		refresh := 5 * time.Second
		if mpd.MinimumUpdatePeriod != "" {
			if parsed, err := parseISODuration(mpd.MinimumUpdatePeriod); err == nil && parsed > 0 {
				refresh = parsed
			}
		}
		if err := waitBackoff(ctx, refresh); err != nil {
			return err
		}
	}
}

// newSegments expands the representation's timeline and drops segments
// already delivered in an earlier refresh.
func (d *DASHDownloader) newSegments(mpd *dashMPD) ([]dashSegment, error) {
	rep, adapt, err := findRepresentation(mpd, d.representationID)
	if err != nil {
		return nil, err
	}
	tmpl := rep.SegmentTemplate
	if tmpl == nil {
		tmpl = adapt.SegmentTemplate
	}
	if tmpl == nil {
		return nil, fmt.Errorf("representation %s has no segment template", d.representationID)
	}
	if tmpl.SegmentTimeline == nil {
		return nil, fmt.Errorf("representation %s has no segment timeline", d.representationID)
	}

	baseURL := mpd.BaseURL
	if rep.BaseURL != "" {
		baseURL = rep.BaseURL
	}

	var segments []dashSegment
	seq := tmpl.StartNumber
	if seq == 0 {
		seq = 1
	}
	elapsed := int64(0)
	for _, s := range tmpl.SegmentTimeline.S {
		if s.T != nil {
			elapsed = *s.T
		}
		// r repeats the entry after its first occurrence.
		for i := int64(0); i <= s.R; i++ {
			ref := tmpl.Media
			ref = strings.ReplaceAll(ref, "$RepresentationID$", d.representationID)
			ref = strings.ReplaceAll(ref, "$Number$", fmt.Sprintf("%d", seq))
			ref = strings.ReplaceAll(ref, "$Time$", fmt.Sprintf("%d", elapsed))
			ref = strings.ReplaceAll(ref, "$Bandwidth$", fmt.Sprintf("%d", rep.Bandwidth))
			segURL := resolveURL(d.manifestURL, baseURL+ref)

			if (d.lastSeq == -1 || seq > d.lastSeq) && !d.seen[segURL] {
				segments = append(segments, dashSegment{URL: segURL, Seq: seq})
			}
			elapsed += s.D
			seq++
		}
	}
	return segments, nil
}

func findRepresentation(mpd *dashMPD, id string) (*dashRepresentation, *dashAdaptationSet, error) {
	for _, p := range mpd.Period {
		for i := range p.AdaptationSet {
			a := &p.AdaptationSet[i]
			for j := range a.Representation {
				if a.Representation[j].ID == id {
					return &a.Representation[j], a, nil
				}
			}
		}
	}
	return nil, nil, fmt.Errorf("representation %s not found", id)
}

// downloadSequential fetches segments in order, skipping unavailable ones
// when the config allows it.
func (d *DASHDownloader) downloadSequential(ctx context.Context, segments []dashSegment, w io.Writer) error {
	cfg := d.cfg.normalized()
	for _, seg := range segments {
		body, err := fetchBytes(ctx, d.client, seg.URL, d.headers, d.cfg)
		if err != nil {
			if cfg.skippable(err) && (cfg.MaxSkippedFragments == 0 || d.skipped < cfg.MaxSkippedFragments) {
				d.skipped++
				d.markDone(seg)
				continue
			}
			return fmt.Errorf("dash segment seq=%d: %w", seg.Seq, err)
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
		d.markDone(seg)
	}
	return nil
}

// downloadOrdered fetches segments with up to MaxConcurrency workers and
// writes them in manifest order.
func (d *DASHDownloader) downloadOrdered(ctx context.Context, segments []dashSegment, w io.Writer) error {
	if len(segments) == 0 {
		return nil
	}
	cfg := d.cfg.normalized()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bodies := make([][]byte, len(segments))
	errs := make([]error, len(segments))
	sem := make(chan struct{}, cfg.MaxConcurrency)
	var wg sync.WaitGroup
	for i, seg := range segments {
		wg.Add(1)
		go func(i int, seg dashSegment) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			body, err := fetchBytes(ctx, d.client, seg.URL, d.headers, d.cfg)
			if err != nil {
				errs[i] = err
				if !cfg.skippable(err) {
					cancel()
				}
				return
			}
			bodies[i] = body
		}(i, seg)
	}
	wg.Wait()

	for i, seg := range segments {
		if err := errs[i]; err != nil {
			if cfg.skippable(err) && (cfg.MaxSkippedFragments == 0 || d.skipped < cfg.MaxSkippedFragments) {
				d.skipped++
				d.markDone(seg)
				continue
			}
			return fmt.Errorf("dash segment seq=%d: %w", seg.Seq, err)
		}
		if _, err := w.Write(bodies[i]); err != nil {
			return err
		}
		d.markDone(seg)
	}
	return nil
}

func (d *DASHDownloader) markDone(seg dashSegment) {
	d.lastSeq = seg.Seq
	d.seen[seg.URL] = true
}

// parseISODuration handles the PT…H…M…S subset MPD attributes use.
func parseISODuration(s string) (time.Duration, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "P"), "T")
	if trimmed == s {
		return 0, fmt.Errorf("bad iso duration %q", s)
	}
	return time.ParseDuration(strings.ToLower(trimmed))
}
