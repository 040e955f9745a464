package accessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{"name":"Suzan Ivanova","rank":2,"score":42.5,"active":true,"tags":["b5","command"],"org":{"name":"Babylon 5"}}`

func TestJSONBytesAccessor(t *testing.T) {
	t.Parallel()

	data := []byte(testJSON)
	var acc Accessor = NewJSONBytesAccessor(&data)

	s, ok := acc.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "Suzan Ivanova", s)

	s, ok = acc.GetString("org.name")
	assert.True(t, ok)
	assert.Equal(t, "Babylon 5", s)

	_, ok = acc.GetString("rank")
	assert.False(t, ok, "rank is a number")

	i, ok := acc.GetInt("rank")
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)

	f, ok := acc.GetFloat("score")
	assert.True(t, ok)
	assert.InDelta(t, 42.5, f, 0.0001)

	b, ok := acc.GetBool("active")
	assert.True(t, ok)
	assert.True(t, b)

	tags, ok := acc.GetStringArray("tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"b5", "command"}, tags)

	assert.True(t, acc.Exists("org"))
	assert.False(t, acc.Exists("missing"))
	assert.Equal(t, "JSONBytesAccessor", acc.Type())
}

func TestJSONBytesAccessorSet(t *testing.T) {
	t.Parallel()

	data := []byte(testJSON)
	acc := NewJSONBytesAccessor(&data)

	require.NoError(t, acc.Set("name", "John Sheridan"))
	s, _ := acc.GetString("name")
	assert.Equal(t, "John Sheridan", s)

	require.NoError(t, acc.Set("notes", "The one."))
	assert.True(t, acc.Exists("notes"))

	err := acc.Set("rank", "captain")
	var typeErr *InvalidValueTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "rank", typeErr.FieldName)

	assert.Error(t, acc.Set("active", 1))
	assert.Error(t, acc.Set("score", true))
}
