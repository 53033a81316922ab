package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[0.5,-1,2]", vectorLiteral([]float32{0.5, -1, 2}))
	assert.Equal(t, "[]", vectorLiteral(nil))
}

func TestParseVector(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1, 2}, parseVector("[0.5, -1, 2]"))
	assert.Nil(t, parseVector("[]"))
	assert.Nil(t, parseVector("[not,a,number]"))
}

func TestVectorRoundTrip(t *testing.T) {
	original := []float32{0.25, 0, -3.5}
	assert.Equal(t, original, parseVector(vectorLiteral(original)))
}
