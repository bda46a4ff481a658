package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a cached resource: its kind followed by its parameters.
// Equal parts always produce the same key; different parts never collide.
type Key []string

// NewKey formats each part with fmt.Sprint.
func NewKey(kind string, params ...any) Key {
	k := make(Key, 0, 1+len(params))
	k = append(k, kind)
	for _, p := range params {
		k = append(k, fmt.Sprint(p))
	}
	return k
}

// String is the canonical form used for lookups. Parts are quoted, so a
// separator inside a part cannot make two keys look alike.
func (k Key) String() string {
	quoted := make([]string, len(k))
	for i, p := range k {
		quoted[i] = strconv.Quote(p)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
