package formats

import (
	"sort"

	"github.com/famomatic/ytx/internal/types"
)

// SortByBest orders descriptors best-first: height, then bitrate, then
// frame rate. The sort is stable so equal streams keep client order.
func SortByBest(streams []types.StreamDescriptor) {
	sort.SliceStable(streams, func(i, j int) bool {
		a, b := &streams[i], &streams[j]
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		if a.TBR != b.TBR {
			return a.TBR > b.TBR
		}
		return a.FPS > b.FPS
	})
}
