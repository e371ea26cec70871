package vectorstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewVectorID(t *testing.T) {
	docId := uuid.New()

	id := NewVectorID(docId, 7)
	assert.True(t, strings.HasPrefix(id, "doc_"+docId.String()+"_chunk_7_"))

	parts := strings.Split(id, "_")
	suffix := parts[len(parts)-1]
	assert.Len(t, suffix, 8)

	// suffix must vary between calls for the same chunk
	assert.NotEqual(t, id, NewVectorID(docId, 7))
}

func TestClampSimilarity(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.3, 0},
		{"zero", 0, 0},
		{"in range", 0.73, 0.73},
		{"one", 1, 1},
		{"above one", 1.2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampSimilarity(tt.in))
		})
	}
}
