package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "legacy long flags",
			in:   []string{"/data", "-output", "sums.crc", "-np", "-timeout", "500"},
			want: []string{"/data", "--output", "sums.crc", "--no-progress", "--timeout", "500"},
		},
		{
			name: "legacy with equals",
			in:   []string{"-checks=https://example.com/s.crc", "-verbose"},
			want: []string{"--checks=https://example.com/s.crc", "--verbose"},
		},
		{
			name: "short and modern flags untouched",
			in:   []string{"-o", "x", "-v", "--timeout", "10", "-t", "5", "-n", "4"},
			want: []string{"-o", "x", "-v", "--timeout", "10", "-t", "5", "-n", "4"},
		},
		{
			name: "help",
			in:   []string{"-help"},
			want: []string{"--help"},
		},
		{
			name: "after double dash",
			in:   []string{"-np", "--", "-output"},
			want: []string{"--no-progress", "--", "-output"},
		},
		{
			name: "empty",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}
