package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Security Engineer", CleanText("  Security \n\t Engineer  "))
	assert.Equal(t, "a b", CleanText("a\u00a0b"), "non-breaking spaces collapse like regular whitespace")
	assert.Equal(t, "", CleanText("   "))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "New York, NY", NormalizeLocation("Location: New York, NY"))
	assert.Equal(t, "Remote", NormalizeLocation("  Remote "))
	assert.Equal(t, "", NormalizeLocation(""))
}
