// Package frontmatter splits a metadata block from the top of a document.
package frontmatter

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/adrg/frontmatter"
)

// Metadata is the decoded key/value block found at the top of a document.
type Metadata map[string]interface{}

// Parser extracts front-matter delimited by "---" (YAML) or "+++" (TOML).
type Parser struct{}

// New returns a new Parser.
func New() *Parser {
	return &Parser{}
}

// Parse returns the metadata and the remaining body. A document without a
// front-matter block yields empty metadata and the whole source as its body.
func (p *Parser) Parse(src []byte) (Metadata, []byte, error) {
	data := make(Metadata)

	body, err := frontmatter.Parse(bytes.NewReader(src), &data)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse front-matter: %w", err)
	}

	return data, body, nil
}

// Present reports whether key holds a truthy value: nil, "", false and
// numeric zero count as absent.
func (m Metadata) Present(key string) bool {
	val, ok := m[key]
	if !ok || val == nil {
		return false
	}

	switch v := val.(type) {
	case string:
		return v != ""
	case bool:
		return v
	case time.Time:
		return !v.IsZero()
	default:
		if f, ok := toFloat(val); ok {
			return f != 0 && !math.IsNaN(f)
		}

		return true
	}
}

// String returns the value of key as a string if it is present.
func (m Metadata) String(key string) (string, bool) {
	if !m.Present(key) {
		return "", false
	}

	switch v := m[key].(type) {
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// Number returns the value of key if it is a finite number.
func (m Metadata) Number(key string) (float64, bool) {
	f, ok := toFloat(m[key])
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
