package innertube

import (
	"strings"

	"github.com/famomatic/ytx/internal/jsontree"
)

// ParseDataSyncID splits a data-sync id into its delegated and user parts.
// "A||B" yields (A, B); "A||" and "A" yield ("", A); "" yields ("", "").
func ParseDataSyncID(id string) (delegated, user string) {
	first, second, found := strings.Cut(id, "||")
	if found && second != "" {
		return first, second
	}
	return "", first
}

// SearchVisitorData scans config blobs in order for a visitor id, trying
// the known locations within each blob before moving to the next.
func SearchVisitorData(blobs ...map[string]any) string {
	for _, blob := range blobs {
		if blob == nil {
			continue
		}
		if v, ok := jsontree.String(blob, "VISITOR_DATA"); ok && v != "" {
			return v
		}
		if v, ok := jsontree.String(blob, "INNERTUBE_CONTEXT", "client", "visitorData"); ok && v != "" {
			return v
		}
		if v, ok := jsontree.String(blob, "responseContext", "visitorData"); ok && v != "" {
			return v
		}
	}
	return ""
}

// SearchSessionIDs scans config blobs for account session identifiers.
// Explicit delegated/user keys win; otherwise a data-sync id is split.
func SearchSessionIDs(blobs ...map[string]any) (delegated, user string) {
	for _, blob := range blobs {
		if blob == nil {
			continue
		}
		if delegated == "" {
			if v, ok := jsontree.String(blob, "DELEGATED_SESSION_ID"); ok && v != "" {
				delegated = v
			}
		}
		if user == "" {
			if v, ok := jsontree.String(blob, "USER_SESSION_ID"); ok && v != "" {
				user = v
			}
		}
	}
	if delegated != "" || user != "" {
		return delegated, user
	}
	for _, blob := range blobs {
		if blob == nil {
			continue
		}
		if v, ok := jsontree.String(blob, "DATASYNC_ID"); ok && v != "" {
			return ParseDataSyncID(v)
		}
		if v, ok := jsontree.String(blob, "responseContext", "mainAppWebResponseContext", "datasyncId"); ok && v != "" {
			return ParseDataSyncID(v)
		}
	}
	return "", ""
}

// SessionIndexFrom reads the ytcfg SESSION_INDEX used for X-Goog-AuthUser.
func SessionIndexFrom(blobs ...map[string]any) *int {
	for _, blob := range blobs {
		if blob == nil {
			continue
		}
		if v, ok := jsontree.Int(blob, "SESSION_INDEX"); ok {
			return &v
		}
	}
	return nil
}

// LoggedInFrom reads the ytcfg LOGGED_IN flag.
func LoggedInFrom(blobs ...map[string]any) bool {
	for _, blob := range blobs {
		if blob == nil {
			continue
		}
		if v, ok := jsontree.Bool(blob, "LOGGED_IN"); ok {
			return v
		}
	}
	return false
}
