package platform

import (
	"bufio"
	"strings"
)

// ParseAttributes reads "Key: value" lines as printed by disk tools and
// returns the values keyed by NormalizeKey. Lines without a colon or with an
// empty key are ignored; a repeated key keeps its last value.
func ParseAttributes(text string) map[string]string {
	attrs := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = NormalizeKey(key)
		if key == "" {
			continue
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs
}

// NormalizeKey lower-cases key and collapses every run of characters outside
// [a-z0-9] into a single underscore. A key starting with a digit gets a
// leading underscore.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))

	var b strings.Builder
	inRun := false
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}

	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
