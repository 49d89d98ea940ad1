package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	assert.Nil(t, ParseTags(""))
	assert.Equal(t, TagSet{"medical", "rescue"}, ParseTags("Medical, Rescue"))
	assert.Equal(t, TagSet{"needs rescue"}, ParseTags(" Needs Rescue ,"))
}

func TestMatchesCategory(t *testing.T) {
	tags := ParseTags("Medical,Rescue")

	assert.True(t, tags.MatchesCategory("medical emergency"))
	assert.True(t, tags.MatchesCategory("Needs Rescue"))
	assert.False(t, tags.MatchesCategory("food,water"))
	assert.False(t, TagSet(nil).MatchesCategory("anything"))
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		category string
		people   int
		want     int
	}{
		{"needs rescue", 1, 5},
		{"medical emergency", 1, 5},
		{"fire", 1, 5},
		{"food", 1, 3},
		{"water", 1, 3},
		{"shelter", 1, 3},
		{"water,needs rescue", 1, 5},
		{"other", 11, 4},
		{"other", 10, 1},
		{"", 1, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPriority(tt.category, tt.people),
			"category=%q people=%d", tt.category, tt.people)
	}
}
