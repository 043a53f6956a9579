// Package expr expands ${env.KEY} references in configuration values.
package expr

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// LookupFunc resolves an environment variable. Override in tests.
var LookupFunc = os.Getenv

// Expand replaces every ${env.KEY} in value with the value of the environment
// variable KEY, or "" when it is unset. A reference without a closing brace is
// kept literally; a key containing anything but letters, digits or '_' leaves
// the prefix in place and scanning resumes right after it.
func Expand(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	offset := 0
	for {
		idx := strings.Index(value[offset:], envPrefix)
		if idx < 0 {
			b.WriteString(value[offset:])
			return b.String()
		}
		b.WriteString(value[offset : offset+idx])
		keyStart := offset + idx + len(envPrefix)

		keyLen := strings.IndexByte(value[keyStart:], '}')
		if keyLen < 0 {
			b.WriteString(value[offset+idx:])
			return b.String()
		}
		key := value[keyStart : keyStart+keyLen]
		if !isKey(key) {
			b.WriteString(envPrefix)
			offset = keyStart
			continue
		}
		b.WriteString(LookupFunc(key))
		offset = keyStart + keyLen + 1
	}
}

// ExpandBytes is Expand for raw documents such as a YAML config file.
func ExpandBytes(data []byte) []byte {
	return []byte(Expand(string(data)))
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
