package info

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	i := GetInfo()
	assert.Equal(t, "portstore", i.Name)
	assert.NotEmpty(t, i.Commit)
	assert.True(t, strings.HasPrefix(Version(), "dev build"))

	full := FullVersion()
	assert.True(t, strings.HasPrefix(full, "portstore "))
	assert.Contains(t, full, i.GoVersion)
	assert.Contains(t, full, "MIT")
}
