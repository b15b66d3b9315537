package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords("The discount CODE must be at least 5% off, and not expired!")

	assert.Equal(t, []string{"discount", "code", "must", "least", "off", "expired"}, keywords)
}

func TestExtractKeywordsKeepsDuplicates(t *testing.T) {
	keywords := extractKeywords("code code code")
	assert.Len(t, keywords, 3)
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"discount", "code"}, []string{"discount", "code"}, 1.0},
		{"disjoint", []string{"discount"}, []string{"shipping"}, 0.0},
		{"partial", []string{"discount", "code"}, []string{"discount", "rules"}, 1.0 / 3.0},
		{"empty query", nil, []string{"discount"}, 0.0},
		{"multiset", []string{"code", "code"}, []string{"code"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, jaccard(tt.a, tt.b), 1e-9)
		})
	}
}
