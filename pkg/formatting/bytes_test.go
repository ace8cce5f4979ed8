package formatting_test

import (
	"testing"

	"github.com/JaimeStill/transflow/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"5MB", 5 * 1024 * 1024, false},
		{"1.5 KB", 1536, false},
		{"64kb", 64 * 1024, false},
		{"", 0, true},
		{"lots", 0, true},
		{"10XB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBytes(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{1023, 0, "1023 B"},
		{1536, 1, "1.5 KB"},
		{5 * 1024 * 1024, 0, "5 MB"},
		{2048, -1, "2 KB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}
