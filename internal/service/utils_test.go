package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "fever and cough", sanitizeText("fever and cough"))
	assert.Equal(t, "ANC low", sanitizeText("ANC\x00 low"))
	assert.Equal(t, "ok", sanitizeText("o\xffk"))
	assert.Equal(t, "лихорадка", sanitizeText("лихорадка"))
}
