// Package query splits raw URL query strings the way callers of the control
// service expect: no percent-decoding, malformed pairs dropped.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Params maps query keys to their raw, undecoded values.
type Params map[string]string

// Parse splits raw on '&' and each token on '='. Only tokens with exactly two
// non-empty parts are kept. When a key repeats, the first occurrence wins.
func Parse(raw string) Params {
	params := make(Params)
	if raw == "" {
		return params
	}
	for _, token := range strings.Split(raw, "&") {
		kv := strings.Split(token, "=")
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		if _, seen := params[kv[0]]; seen {
			continue
		}
		params[kv[0]] = kv[1]
	}
	return params
}

// ParseError reports a parameter whose value is not a base-10 integer.
type ParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parameter %q: invalid integer %q", e.Key, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Int returns the integer value of key, or def when the key is absent.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Err: err}
	}
	return n, nil
}

// Has reports whether key was present with a non-empty value.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}
