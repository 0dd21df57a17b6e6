package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskTagsCanonicalOrder(t *testing.T) {
	r := Risk{Availability: true, Confidentiality: true, Integrity: true}
	assert.Equal(t, []string{"confidentiality", "integrity", "availability"}, r.Tags())
}

func TestRiskFromTagsIgnoresOrderAndDuplicates(t *testing.T) {
	r := RiskFromTags([]string{"availability", "availability", "confidentiality"})
	assert.True(t, r.Availability)
	assert.True(t, r.Confidentiality)
	assert.False(t, r.Integrity)
	assert.Equal(t, []string{"confidentiality", "availability"}, r.Tags())
}

func TestMultiplicityInfiniteOmitsMax(t *testing.T) {
	m, err := NewMultiplicity(0, Infinite)
	assert := assert.New(t)
	assert.NoError(err)
	_, ok := m.MaxJSON()
	assert.False(ok)
}

func TestMultiplicityRejectsInvalidMin(t *testing.T) {
	_, err := NewMultiplicity(2, 1)
	assert.Error(t, err)
}
