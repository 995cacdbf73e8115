package types

import (
	"errors"
	"testing"
)

func TestNewVideoID(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "canonical", input: "UWn9RdueB7E", wantErr: false},
		{name: "underscore and dash", input: "a_b-C_d-E_f", wantErr: false},
		{name: "too short", input: "too_short", wantErr: true},
		{name: "too long", input: "UWn9RdueB7Ex", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "bad rune", input: "UWn9Rdue*7E", wantErr: true},
		{name: "space", input: "UWn9 RdueB7", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := NewVideoID(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NewVideoID(%q) = %q, want error", tc.input, id)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("NewVideoID(%q) error = %v, want ErrInvalidInput", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVideoID(%q) unexpected error: %v", tc.input, err)
			}
			if id.String() != tc.input {
				t.Fatalf("id = %q, want %q", id, tc.input)
			}
		})
	}
}
