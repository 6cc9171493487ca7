package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvironmentVariable(t *testing.T) {
	t.Setenv("PARIGO_TEST_VARIABLE", "set")
	assert.Equal(t, "set", GetEnvironmentVariable("PARIGO_TEST_VARIABLE", "fallback"))

	t.Setenv("PARIGO_TEST_VARIABLE", "")
	assert.Equal(t, "fallback", GetEnvironmentVariable("PARIGO_TEST_VARIABLE", "fallback"))

	assert.Equal(t, "fallback", GetEnvironmentVariable("PARIGO_TEST_UNSET", "fallback"))
}

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("PARIGO_TEST_VARIABLE", "set")

	env := GetEnvironmentVariables()
	assert.Equal(t, "set", env["PARIGO_TEST_VARIABLE"])
}
