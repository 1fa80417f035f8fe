package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDurationLabel(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		want  string
	}{
		{"zero", 0, "0h"},
		{"negative", -time.Hour, "0h"},
		{"sub hour rounds down", 59 * time.Minute, "0h"},
		{"whole hours", 3 * time.Hour, "3h"},
		{"fractional hours round down", 3*time.Hour + 30*time.Minute, "3h"},
		{"days and hours", 26 * time.Hour, "1d 2h"},
		{"exact day", 24 * time.Hour, "1d"},
		{"weeks days hours", (7*24 + 2*24 + 5) * time.Hour, "1w 2d 5h"},
		{"exact week", 7 * 24 * time.Hour, "1w"},
		{"weeks and hours, zero days omitted", (7*24 + 3) * time.Hour, "1w 3h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDurationLabel(tt.total))
		})
	}
}
