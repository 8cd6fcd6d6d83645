package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_ExactTitle(t *testing.T) {
	result := Match("Heat", []string{"Heat", "Heathers", "The Heat"})

	assert.Equal(t, 0, result.Index)
	assert.InDelta(t, 1.0, result.Score, 0.001)
}

func TestMatch_NormalizedVariants(t *testing.T) {
	// The candidate differs only in punctuation and articles.
	result := Match("Léon: The Professional", []string{
		"Seven",
		"Leon - The Professional",
		"The Professionals",
	})

	assert.Equal(t, 1, result.Index)
	assert.GreaterOrEqual(t, result.Score, MinMatchScore)
}

func TestMatch_NoCandidateAboveFloor(t *testing.T) {
	result := Match("Stalker", []string{"Mamma Mia!", "Frozen"})

	assert.Equal(t, -1, result.Index)
	assert.Less(t, result.Score, MinMatchScore)
}

func TestMatch_EmptyCandidates(t *testing.T) {
	result := Match("Heat", nil)

	assert.Equal(t, -1, result.Index)
	assert.Zero(t, result.Score)
}

func TestMatch_PrefersCloserSequel(t *testing.T) {
	result := Match("Toy Story 2", []string{"Toy Story", "Toy Story 2", "Toy Story 3"})

	assert.Equal(t, 1, result.Index)
	assert.InDelta(t, 1.0, result.Score, 0.001)
}
