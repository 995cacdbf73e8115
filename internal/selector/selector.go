package selector

import (
	"strconv"

	"github.com/famomatic/ytx/internal/formats"
	"github.com/famomatic/ytx/internal/types"
)

// Select applies the selector to best-first sorted streams. A nil selector
// means best. The returned slice is one merge group's picks, or nil when
// every fallback group missed.
func Select(streams []types.StreamDescriptor, sel *Selector) []types.StreamDescriptor {
	if sel == nil || len(sel.Fallbacks) == 0 {
		return SelectBest(streams)
	}

	sorted := sortedCopy(streams)
	for _, group := range sel.Fallbacks {
		picked := make([]types.StreamDescriptor, 0, len(group))
		ok := true
		for _, spec := range group {
			s, found := pick(sorted, spec)
			if !found {
				ok = false
				break
			}
			picked = append(picked, s)
		}
		if ok {
			return picked
		}
	}
	return nil
}

// SelectBest prefers the best muxed stream, falling back to the best
// stream of any kind.
func SelectBest(streams []types.StreamDescriptor) []types.StreamDescriptor {
	sorted := sortedCopy(streams)
	for _, s := range sorted {
		if hasVideo(s) && hasAudio(s) {
			return []types.StreamDescriptor{s}
		}
	}
	if len(sorted) > 0 {
		return sorted[:1]
	}
	return nil
}

func sortedCopy(streams []types.StreamDescriptor) []types.StreamDescriptor {
	sorted := make([]types.StreamDescriptor, len(streams))
	copy(sorted, streams)
	formats.SortByBest(sorted)
	return sorted
}

// pick scans best-first candidates and returns the first (or, for a worst
// spec, last) stream matching every filter.
func pick(sorted []types.StreamDescriptor, spec *StreamSpec) (types.StreamDescriptor, bool) {
	var candidates []types.StreamDescriptor
	for _, s := range sorted {
		if matchesAll(s, spec.Filters) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return types.StreamDescriptor{}, false
	}
	if spec.Worst {
		return candidates[len(candidates)-1], true
	}
	return candidates[0], true
}

func matchesAll(s types.StreamDescriptor, filters []Filter) bool {
	for _, f := range filters {
		if !matches(s, f) {
			return false
		}
	}
	return true
}

func matches(s types.StreamDescriptor, f Filter) bool {
	switch f.Kind {
	case FilterAny:
		return true
	case FilterMedia:
		switch f.Value {
		case "video":
			return hasVideo(s) && !hasAudio(s)
		case "audio":
			return hasAudio(s) && !hasVideo(s)
		}
		return false
	case FilterExt:
		return string(s.Ext) == f.Value
	case FilterRes:
		want, err := strconv.Atoi(f.Value)
		if err != nil {
			return false
		}
		return compare(s.Height, want, f.Op)
	case FilterFPS:
		want, err := strconv.Atoi(f.Value)
		if err != nil {
			return false
		}
		return compare(s.FPS, want, f.Op)
	}
	return false
}

func compare(a, b int, op string) bool {
	switch op {
	case ":", "=", "":
		return a == b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "!=":
		return a != b
	}
	return false
}
