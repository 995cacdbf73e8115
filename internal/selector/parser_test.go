package selector

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  *Selector
	}{
		{
			input: "best",
			want: &Selector{Fallbacks: []MergeGroup{
				{{Filters: []Filter{{Kind: FilterAny}}}},
			}},
		},
		{
			input: "",
			want: &Selector{Fallbacks: []MergeGroup{
				{{Filters: []Filter{{Kind: FilterAny}}}},
			}},
		},
		{
			input: "bestvideo+bestaudio",
			want: &Selector{Fallbacks: []MergeGroup{
				{
					{Filters: []Filter{{Kind: FilterMedia, Value: "video"}}},
					{Filters: []Filter{{Kind: FilterMedia, Value: "audio"}}},
				},
			}},
		},
		{
			input: "bv[ext=mp4]+ba[ext=m4a]",
			want: &Selector{Fallbacks: []MergeGroup{
				{
					{Filters: []Filter{
						{Kind: FilterMedia, Value: "video"},
						{Kind: FilterExt, Value: "mp4"},
					}},
					{Filters: []Filter{
						{Kind: FilterMedia, Value: "audio"},
						{Kind: FilterExt, Value: "m4a"},
					}},
				},
			}},
		},
		{
			input: "bestvideo[height<=720]/best",
			want: &Selector{Fallbacks: []MergeGroup{
				{
					{Filters: []Filter{
						{Kind: FilterMedia, Value: "video"},
						{Kind: FilterRes, Value: "720", Op: "<="},
					}},
				},
				{{Filters: []Filter{{Kind: FilterAny}}}},
			}},
		},
		{
			input: "worstaudio/fps!=60",
			want: &Selector{Fallbacks: []MergeGroup{
				{{Filters: []Filter{{Kind: FilterMedia, Value: "audio"}}, Worst: true}},
				{{Filters: []Filter{{Kind: FilterFPS, Value: "60", Op: "!="}}}},
			}},
		},
		{
			input: "worst",
			want: &Selector{Fallbacks: []MergeGroup{
				{{Filters: []Filter{{Kind: FilterAny}}, Worst: true}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse() = \n%#v\nwant \n%#v", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{"bogus", "bestvideo[foo=1]", "bestvideo[height<=720", "best+"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q) did not fail", bad)
		}
	}
}
