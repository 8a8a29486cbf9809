package envutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenvDefault(t *testing.T) {
	const name = "ENVUTIL_TEST_VAR"
	defer os.Unsetenv(name)

	os.Unsetenv(name)
	assert.Equal(t, "fallback", GetenvDefault(name, "fallback"))

	os.Setenv(name, "")
	assert.Equal(t, "fallback", GetenvDefault(name, "fallback"))

	os.Setenv(name, "set")
	assert.Equal(t, "set", GetenvDefault(name, "fallback"))
}
