// Package selector parses and applies stream selection expressions like
// "bestvideo+bestaudio/best" or "bestvideo[height<=720]".
package selector

import (
	"fmt"
	"strings"

	"github.com/famomatic/ytx/internal/types"
)

// Selector is a parsed selection expression: merge groups separated by
// "/", tried in order until one yields a stream for every spec.
type Selector struct {
	Fallbacks []MergeGroup
}

// MergeGroup is the "+"-joined list of specs meant to be merged into one
// output, e.g. bestvideo+bestaudio.
type MergeGroup []*StreamSpec

// StreamSpec selects one stream: a base token plus bracket modifiers.
type StreamSpec struct {
	Filters []Filter
	// Worst inverts the pick within the matching candidates.
	Worst bool
}

// Filter is one matching criterion on a stream descriptor.
type Filter struct {
	Kind  FilterKind
	Value string
	Op    string
}

type FilterKind string

const (
	FilterAny   FilterKind = "any"
	FilterMedia FilterKind = "media" // value "video" or "audio", track-only
	FilterExt   FilterKind = "ext"
	FilterRes   FilterKind = "res"
	FilterFPS   FilterKind = "fps"
)

// Parse parses a selection expression. The empty string selects best.
func Parse(s string) (*Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "best"
	}

	var fallbacks []MergeGroup
	for _, groupExpr := range strings.Split(s, "/") {
		var group MergeGroup
		for _, specExpr := range strings.Split(groupExpr, "+") {
			spec, err := parseSpec(strings.TrimSpace(specExpr))
			if err != nil {
				return nil, err
			}
			group = append(group, spec)
		}
		fallbacks = append(fallbacks, group)
	}
	return &Selector{Fallbacks: fallbacks}, nil
}

func parseSpec(s string) (*StreamSpec, error) {
	if s == "" {
		return nil, fmt.Errorf("empty stream spec")
	}

	base := s
	var mods string
	if idx := strings.Index(s, "["); idx != -1 {
		base, mods = s[:idx], s[idx:]
	}

	spec := &StreamSpec{}
	if err := parseBase(spec, strings.ToLower(base)); err != nil {
		return nil, err
	}

	for mods != "" {
		if mods[0] != '[' {
			return nil, fmt.Errorf("bad modifier syntax in %q", s)
		}
		end := strings.Index(mods, "]")
		if end < 0 {
			return nil, fmt.Errorf("unclosed modifier in %q", s)
		}
		f, err := parseModifier(mods[1:end])
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, f)
		mods = mods[end+1:]
	}
	return spec, nil
}

func parseBase(spec *StreamSpec, base string) error {
	switch base {
	case "best":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterAny})
	case "worst":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterAny})
		spec.Worst = true
	case "bestvideo", "bv":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterMedia, Value: "video"})
	case "worstvideo", "wv":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterMedia, Value: "video"})
		spec.Worst = true
	case "bestaudio", "ba":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterMedia, Value: "audio"})
	case "worstaudio", "wa":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterMedia, Value: "audio"})
		spec.Worst = true
	case "mp4", "webm", "m4a", "weba":
		spec.Filters = append(spec.Filters, Filter{Kind: FilterExt, Value: base})
	default:
		f, err := parseModifier(base)
		if err != nil {
			return fmt.Errorf("unknown selector %q", base)
		}
		spec.Filters = append(spec.Filters, f)
	}
	return nil
}

var modifierOps = []string{"<=", ">=", "!=", "=", "<", ">", ":"}

func parseModifier(s string) (Filter, error) {
	for _, op := range modifierOps {
		idx := strings.Index(s, op)
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(s[:idx])
		val := strings.TrimSpace(s[idx+len(op):])
		switch key {
		case "ext":
			return Filter{Kind: FilterExt, Value: val}, nil
		case "res", "height":
			return Filter{Kind: FilterRes, Value: val, Op: op}, nil
		case "fps":
			return Filter{Kind: FilterFPS, Value: val, Op: op}, nil
		}
		return Filter{}, fmt.Errorf("unknown modifier key %q", key)
	}
	return Filter{}, fmt.Errorf("bad modifier %q", s)
}

func hasVideo(s types.StreamDescriptor) bool { return s.VCodec != "" && s.VCodec != "none" }
func hasAudio(s types.StreamDescriptor) bool { return s.ACodec != "" && s.ACodec != "none" }
