package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFullWidth(t *testing.T) {
	assert.Equal(t, "ａｂｃ", ToFullWidth("abc"))
	assert.Equal(t, "１２３", ToFullWidth("123"))
	assert.Equal(t, "　", ToFullWidth(" "))
	assert.Equal(t, "ＶＩＰ　１２", ToFullWidth("VIP 12"))
	// Hangul is outside the convertible range and passes through
	assert.Equal(t, "배달", ToFullWidth("배달"))
}

func TestToHalfWidth(t *testing.T) {
	assert.Equal(t, "abc", ToHalfWidth("ａｂｃ"))
	assert.Equal(t, "123", ToHalfWidth("１２３"))
	assert.Equal(t, " ", ToHalfWidth("　"))
	assert.Equal(t, "배달", ToHalfWidth("배달"))
}

func TestWidthRoundTrip(t *testing.T) {
	inputs := []string{"abc", "VIP 12!", "~", "!", " mixed 혼합 "}
	for _, in := range inputs {
		assert.Equal(t, in, ToHalfWidth(ToFullWidth(in)), "round trip of %q", in)
	}
}

func TestSearchVariants(t *testing.T) {
	// ASCII input yields itself plus the full-width form
	variants := SearchVariants("vip")
	assert.Equal(t, []string{"vip", "ｖｉｐ"}, variants)

	// Hangul converts to nothing new, so only one variant survives
	assert.Equal(t, []string{"배달"}, SearchVariants("배달"))

	// Blank input yields nothing
	assert.Empty(t, SearchVariants(""))
	assert.Empty(t, SearchVariants("   "))
}
