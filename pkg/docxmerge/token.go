package docxmerge

import (
	"regexp"
	"strconv"
)

// Placeholder delimiters. A placeholder named foo is written ${foo} in a
// template.
const (
	TokenPrefix = "${"
	TokenSuffix = "}"
)

var (
	enclosedToken = regexp.MustCompile(`^\$\{\w+\}$`)
	tokenPattern  = regexp.MustCompile(`\$\{(\w+)\}`)
)

// IsEnclosed reports whether s is a complete placeholder token, that is one
// or more word characters between the delimiters.
func IsEnclosed(s string) bool {
	return enclosedToken.MatchString(s)
}

// Enclose wraps name in the placeholder delimiters. When check is true a name
// that is already a complete token is returned unchanged.
//
//	Enclose("x", true)    == "${x}"
//	Enclose("${x}", true) == "${x}"
//	Enclose("${x}", false) == "${${x}}"
func Enclose(name string, check bool) string {
	if check && IsEnclosed(name) {
		return name
	}
	return TokenPrefix + name + TokenSuffix
}

// indexedName derives the per-element name of an array placeholder. Names
// given in enclosed form are unwrapped first so the index lands inside the
// delimiters.
func indexedName(name string, i int) string {
	return bareName(name) + "_" + strconv.Itoa(i)
}

// bareName strips the delimiters from a complete token and returns any other
// name unchanged.
func bareName(name string) string {
	if IsEnclosed(name) {
		return name[len(TokenPrefix) : len(name)-len(TokenSuffix)]
	}
	return name
}
