package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidNIF(t *testing.T) {
	assert.True(t, ValidNIF("123456789"))
	assert.True(t, ValidNIF("504426770"))

	assert.False(t, ValidNIF("123456780"), "wrong check digit")
	assert.False(t, ValidNIF("000000000"), "unassigned first digit 0")
	assert.False(t, ValidNIF("400000008"), "unassigned first digit 4")
	assert.False(t, ValidNIF("12345678"), "too short")
	assert.False(t, ValidNIF("1234567890"), "too long")
	assert.False(t, ValidNIF("12345678a"), "non-digit")
	assert.False(t, ValidNIF(""), "empty")
}
