package transformer

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// namer holds the case converters of one run. cases.Caser keeps internal
// state, so a namer must not be shared between goroutines.
type namer struct {
	title cases.Caser
	upper cases.Caser
}

func newNamer() *namer {
	return &namer{
		title: cases.Title(language.Und, cases.NoLower),
		upper: cases.Upper(language.Und),
	}
}

// pascal converts user_roles, user-roles and userRoles to UserRoles.
func (n *namer) pascal(s string) string {
	var sb strings.Builder
	for _, w := range splitWords(s, false) {
		sb.WriteString(n.title.String(w))
	}
	return safeIdentifier(sb.String())
}

// camel converts created_at to createdAt. The first word keeps its case.
func (n *namer) camel(s string) string {
	words := splitWords(s, false)
	if len(words) == 0 {
		return s
	}
	var sb strings.Builder
	sb.WriteString(words[0])
	for _, w := range words[1:] {
		sb.WriteString(n.title.String(w))
	}
	return sb.String()
}

// screamingSnake converts "in progress" and inProgress to IN_PROGRESS.
func (n *namer) screamingSnake(s string) string {
	return safeIdentifier(n.upper.String(strings.Join(splitWords(s, true), "_")))
}

// splitWords breaks s at every rune that is neither a letter nor a digit.
// With caseBoundaries it also breaks between a lower-case letter or digit
// and a following upper-case letter.
func splitWords(s string, caseBoundaries bool) []string {
	var (
		words []string
		cur   []rune
		prev  rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case caseBoundaries && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// safeIdentifier makes s usable as a TypeScript identifier.
func safeIdentifier(s string) string {
	if s == "" {
		return "_"
	}
	if r := []rune(s)[0]; unicode.IsDigit(r) {
		return "_" + s
	}
	return s
}

// uniqueName returns name, or name2, name3, ... when taken reports true.
func uniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

var irregularPlurals = map[string]string{
	"aliases":   "alias",
	"analyses":  "analysis",
	"buses":     "bus",
	"children":  "child",
	"crises":    "crisis",
	"feet":      "foot",
	"geese":     "goose",
	"indices":   "index",
	"matrices":  "matrix",
	"men":       "man",
	"mice":      "mouse",
	"movies":    "movie",
	"oxen":      "ox",
	"people":    "person",
	"quizzes":   "quiz",
	"statuses":  "status",
	"teeth":     "tooth",
	"vertices":  "vertex",
	"women":     "woman",
	"cookies":   "cookie",
	"zombies":   "zombie",
	"databases": "database",
	"responses": "response",
	"licenses":  "license",
	"courses":   "course",
	"houses":    "house",
	"cases":     "case",
	"phases":    "phase",
	"releases":  "release",
	"purchases": "purchase",
	"bases":     "base",
}

var uncountable = map[string]bool{
	"data":        true,
	"equipment":   true,
	"fish":        true,
	"information": true,
	"metadata":    true,
	"news":        true,
	"series":      true,
	"sheep":       true,
	"species":     true,
}

// singularize returns the singular of the last word of name, keeping any
// prefix (user_roles becomes user_role). Already-singular names are returned
// unchanged.
func singularize(name string) string {
	i := strings.LastIndexFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	prefix, word := name[:i+1], name[i+1:]
	return prefix + singularWord(word)
}

func singularWord(word string) string {
	lower := strings.ToLower(word)
	if uncountable[lower] {
		return word
	}
	if s, ok := irregularPlurals[lower]; ok {
		return matchLeadingCase(word, s)
	}

	switch {
	case len(lower) > 3 && strings.HasSuffix(lower, "ies"):
		return word[:len(word)-3] + matchLeadingCase(word[len(word)-3:], "y")
	case strings.HasSuffix(lower, "sses"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "ss"),
		strings.HasSuffix(lower, "us"),
		strings.HasSuffix(lower, "is"):
		return word
	case len(lower) > 1 && strings.HasSuffix(lower, "s"):
		return word[:len(word)-1]
	}
	return word
}

// matchLeadingCase upper-cases the first letter of s when word starts with
// an upper-case letter.
func matchLeadingCase(word, s string) string {
	if word == "" || s == "" {
		return s
	}
	if unicode.IsUpper([]rune(word)[0]) {
		r := []rune(s)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return s
}
