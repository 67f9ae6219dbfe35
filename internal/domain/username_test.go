package domain

import (
	"errors"
	"testing"
)

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "xqc", want: "xqc"},
		{input: "  @Trainwreck  ", want: "Trainwreck"},
		{input: "https://kick.com/Dahrooj", want: "Dahrooj"},
		{input: "https://kick.com/only3bed/", want: "only3bed"},
		{input: "kick.com/rashed7cr?ref=home#top", want: "rashed7cr"},
		{input: "https://www.kick.com/user_name.x", want: "user_name.x"},
		{input: "", wantErr: true},
		{input: "a", wantErr: true},
		{input: "has space", wantErr: true},
		{input: "https://kick.com/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExtractUsername(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUsername) {
					t.Errorf("err = %v, want ErrInvalidUsername", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
