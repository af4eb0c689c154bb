package uid

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex_Generate(t *testing.T) {
	tests := []struct {
		name string
		size int
		want *regexp.Regexp
	}{
		{name: "user id", size: 8, want: regexp.MustCompile(`^[0-9a-f]{16}$`)},
		{name: "session token", size: 20, want: regexp.MustCompile(`^[0-9a-f]{40}$`)},
		{name: "default size", size: 0, want: regexp.MustCompile(`^[0-9a-f]{32}$`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewHex(tt.size)
			seen := make(map[string]struct{})
			for range 100 {
				id := g.Generate()
				assert.Regexp(t, tt.want, id)
				seen[id] = struct{}{}
			}
			assert.Len(t, seen, 100)
		})
	}
}

func TestUUID_Generate(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
