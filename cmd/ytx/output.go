package main

import (
	"strings"

	"github.com/famomatic/ytx/client"
)

// outputPath expands the %(title)s / %(id)s / %(ext)s template fields.
func outputPath(template string, info *client.VideoInfo, stream client.StreamDescriptor) string {
	out := template
	out = strings.ReplaceAll(out, "%(title)s", sanitizeFilename(info.Title))
	out = strings.ReplaceAll(out, "%(id)s", info.ID)
	out = strings.ReplaceAll(out, "%(ext)s", string(stream.Ext))
	return out
}

// sanitizeFilename replaces characters that are unsafe in file names.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
