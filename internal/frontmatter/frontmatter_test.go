package frontmatter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := []byte("---\ntitle: Launch\ndate: 2024-01-02\ncomments: 3\n---\n# Hello\n\nBody text.\n")

	meta, body, err := New().Parse(src)
	require.NoError(t, err)

	assert.Equal(t, "Launch", meta["title"])
	assert.Equal(t, 3, meta["comments"])
	assert.Contains(t, string(body), "# Hello")
	assert.NotContains(t, string(body), "title:")
}

func TestParseWithoutFrontMatter(t *testing.T) {
	src := []byte("# Just a body\n")

	meta, body, err := New().Parse(src)
	require.NoError(t, err)

	assert.Empty(t, meta)
	assert.Contains(t, string(body), "# Just a body")
}

func TestParseMalformed(t *testing.T) {
	src := []byte("---\ntitle: [unclosed\n---\nbody\n")

	_, _, err := New().Parse(src)
	assert.Error(t, err)
}

func TestPresent(t *testing.T) {
	meta := Metadata{
		"empty":  "",
		"text":   "x",
		"zero":   0,
		"one":    1,
		"false":  false,
		"true":   true,
		"nil":    nil,
		"list":   []interface{}{"a"},
		"nanval": math.NaN(),
	}

	tests := []struct {
		Key  string
		Want bool
	}{
		{"empty", false},
		{"text", true},
		{"zero", false},
		{"one", true},
		{"false", false},
		{"true", true},
		{"nil", false},
		{"list", true},
		{"nanval", false},
		{"missing", false},
	}

	for _, tcase := range tests {
		t.Run(tcase.Key, func(t *testing.T) {
			assert.Equal(t, tcase.Want, meta.Present(tcase.Key))
		})
	}
}

func TestString(t *testing.T) {
	meta := Metadata{"slug": "hello", "year": 2024, "blank": ""}

	s, ok := meta.String("slug")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	s, ok = meta.String("year")
	assert.True(t, ok)
	assert.Equal(t, "2024", s)

	_, ok = meta.String("blank")
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	meta := Metadata{
		"int":   7,
		"float": 2.5,
		"inf":   math.Inf(1),
		"text":  "12",
	}

	n, ok := meta.Number("int")
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	n, ok = meta.Number("float")
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)

	_, ok = meta.Number("inf")
	assert.False(t, ok)

	_, ok = meta.Number("text")
	assert.False(t, ok)

	_, ok = meta.Number("missing")
	assert.False(t, ok)
}
