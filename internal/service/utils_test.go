package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "John Smith", sanitizeUTF8("John Smith"))
	assert.Equal(t, "", sanitizeUTF8(""))

	// Invalid bytes are dropped, valid runes survive.
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
}
