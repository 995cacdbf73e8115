// Package webpage fetches the watch page and mines the embedded JSON
// blobs the extraction pipeline needs: ytcfg, ytInitialData and
// ytInitialPlayerResponse.
package webpage

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/famomatic/ytx/internal/types"
)

var (
	ytcfgPattern             = regexp.MustCompile(`ytcfg\.set\s*\(\s*\{`)
	ytInitialDataPattern     = regexp.MustCompile(`(?:window\s*\[\s*["']ytInitialData["']\s*\]|ytInitialData)\s*=\s*\{`)
	ytInitialPlayerRePattern = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*\{`)
)

// SearchJSON finds the first match of start in html and decodes the
// brace-balanced JSON object beginning at the next "{". The scan is aware
// of double-quoted strings and backslash escapes, so braces inside string
// values do not unbalance it.
func SearchJSON(start *regexp.Regexp, html string) (map[string]any, error) {
	loc := start.FindStringIndex(html)
	if loc == nil {
		return nil, fmt.Errorf("%w: start pattern not found", types.ErrDataMissing)
	}

	open := -1
	for i := loc[1] - 1; i >= loc[0]; i-- {
		if html[i] == '{' {
			open = i
			break
		}
	}
	if open < 0 {
		for i := loc[1]; i < len(html); i++ {
			if html[i] == '{' {
				open = i
				break
			}
		}
	}
	if open < 0 {
		return nil, fmt.Errorf("%w: no object after start pattern", types.ErrDecode)
	}

	raw, err := balancedObject(html, open)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: mined blob is not valid JSON: %v", types.ErrDecode, err)
	}
	return obj, nil
}

// balancedObject returns html[open:end] where end closes the object opened
// at open.
func balancedObject(html string, open int) (string, error) {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(html); i++ {
		c := html[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return html[open : i+1], nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced object in page", types.ErrDecode)
}

// ExtractYtcfg mines the ytcfg.set({...}) blob. A page without one yields
// an empty config, never an error.
func ExtractYtcfg(html string) map[string]any {
	obj, err := SearchJSON(ytcfgPattern, html)
	if err != nil {
		return map[string]any{}
	}
	return obj
}

// ExtractYtInitialData mines the ytInitialData assignment.
func ExtractYtInitialData(html string) (map[string]any, error) {
	obj, err := SearchJSON(ytInitialDataPattern, html)
	if err != nil {
		return nil, fmt.Errorf("%w: ytInitialData", types.ErrDataMissing)
	}
	return obj, nil
}

// ExtractYtInitialPlayerResponse mines the initial player response the
// watch page renders with. Absence is common and not an error.
func ExtractYtInitialPlayerResponse(html string) (map[string]any, bool) {
	obj, err := SearchJSON(ytInitialPlayerRePattern, html)
	if err != nil {
		return nil, false
	}
	return obj, true
}
