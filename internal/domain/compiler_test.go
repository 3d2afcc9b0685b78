package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilerMatches(t *testing.T) {
	tests := []struct {
		name       string
		built      string
		configured string
		want       bool
	}{
		{"identical", "0.8.28+commit.7893614a", "0.8.28+commit.7893614a", true},
		{"leading v", "0.8.28+commit.7893614a", "v0.8.28+commit.7893614a", true},
		{"abbreviated commit", "0.8.28+commit.7893614a", "v0.8.28+commit.7893614", true},
		{"platform suffix", "0.8.28+commit.7893614a.Linux.g++", "v0.8.28+commit.7893614a", true},
		{"release only", "0.8.28+commit.7893614a", "0.8.28", true},
		{"other release", "0.8.24+commit.e11b9ed9", "v0.8.28+commit.7893614", false},
		{"other commit", "0.8.28+commit.12345678", "v0.8.28+commit.7893614", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompilerMatches(tt.built, tt.configured))
		})
	}
}
