package graph

import (
	"strings"
	"unicode"
)

// DefaultName derives a readable node name from a type name: a trailing
// "Node" is stripped and the rest is split into words ("DisplayValueNode"
// becomes "Display Value").
func DefaultName(typeName string) string {
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		typeName = typeName[i+1:]
	}
	if trimmed := strings.TrimSuffix(typeName, "Node"); trimmed != "" {
		typeName = trimmed
	}
	return nicify(typeName)
}

func nicify(s string) string {
	s = strings.TrimPrefix(s, "m_")
	if len(s) > 1 && s[0] == 'k' && unicode.IsUpper(rune(s[1])) {
		s = s[1:]
	}
	rs := []rune(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))

	var b strings.Builder
	for i, r := range rs {
		if i > 0 && needsSpace(rs, i) {
			b.WriteRune(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func needsSpace(rs []rune, i int) bool {
	prev, cur := rs[i-1], rs[i]
	var next rune
	if i+1 < len(rs) {
		next = rs[i+1]
	}
	switch {
	case unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev) && unicode.IsLower(next):
		return true
	case unicode.IsDigit(cur) && unicode.IsLetter(prev):
		return true
	}
	return false
}
