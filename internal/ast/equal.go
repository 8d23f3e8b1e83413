package ast

import (
	"regexp"
	"strconv"
	"strings"
)

// Equal reports whether a and b are structurally identical.
func Equal(a, b Node) bool {
	return Key(a) == Key(b)
}

// Key returns a canonical encoding of n. Two nodes have the same key if and
// only if they are structurally equal, so keys can be used as map keys.
func Key(n Node) string {
	var sb strings.Builder
	writeKey(&sb, n)
	return sb.String()
}

func writeKey(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		sb.WriteString("nil")
	case Identifier:
		sb.WriteString("id:")
		sb.WriteString(strconv.Quote(n.Name))
	case Literal:
		sb.WriteString("lit:")
		sb.WriteString(strconv.Quote(n.Value))
	case Raw:
		sb.WriteString("raw:")
		sb.WriteString(strconv.Quote(n.Text))
	case Array:
		sb.WriteString("arr(")
		writeKey(sb, n.Element)
		sb.WriteString(")")
	case Union:
		sb.WriteString("union(")
		writeList(sb, n.Members)
		sb.WriteString(")")
	case Object:
		sb.WriteString("obj(")
		for i, p := range n.Properties {
			if i > 0 {
				sb.WriteString(",")
			}
			writeKey(sb, p)
		}
		sb.WriteString(")")
	case Property:
		sb.WriteString("prop:")
		sb.WriteString(strconv.Quote(n.Name))
		if n.Optional {
			sb.WriteString("?")
		}
		if n.Index {
			sb.WriteString("[]")
		}
		sb.WriteString("=")
		writeKey(sb, n.Type)
	case ColumnType:
		sb.WriteString("col(")
		writeList(sb, []Node{n.Select, n.Insert, n.Update})
		sb.WriteString(")")
	case Generic:
		sb.WriteString("gen:")
		sb.WriteString(strconv.Quote(n.Name))
		sb.WriteString("<")
		writeList(sb, n.Args)
		sb.WriteString(">")
	}
}

func writeList(sb *strings.Builder, nodes []Node) {
	for i, m := range nodes {
		if i > 0 {
			sb.WriteString(",")
		}
		writeKey(sb, m)
	}
}

// Walk calls fn for n and, depth first, for every node below it. Children
// are skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case Array:
		Walk(n.Element, fn)
	case Union:
		for _, m := range n.Members {
			Walk(m, fn)
		}
	case Object:
		for _, p := range n.Properties {
			Walk(p, fn)
		}
	case Property:
		Walk(n.Type, fn)
	case ColumnType:
		Walk(n.Select, fn)
		Walk(n.Insert, fn)
		Walk(n.Update, fn)
	case Generic:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}

var rawIdent = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// References returns the identifier names used by n in first-seen order.
// Generic names and identifier-like tokens of Raw text are included, so a
// raw override such as "JsonValue[]" still references JsonValue. Text inside
// string literals of raw text is not scanned, except the ${...}
// placeholders of template literals.
func References(n Node) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	Walk(n, func(n Node) bool {
		switch n := n.(type) {
		case Identifier:
			add(n.Name)
		case Generic:
			add(n.Name)
		case Raw:
			for _, tok := range rawIdent.FindAllString(unquoted(n.Text), -1) {
				add(tok)
			}
		}
		return true
	})
	return names
}

// unquoted blanks the string literals of TypeScript type text, keeping the
// ${...} placeholders of template literals.
func unquoted(text string) string {
	out := []byte(text)
	for i := 0; i < len(out); i++ {
		quote := out[i]
		if quote != '"' && quote != '\'' && quote != '`' {
			continue
		}
		j := i + 1
		for ; j < len(out) && out[j] != quote; j++ {
			switch {
			case out[j] == '\\':
				out[j] = ' '
				if j+1 < len(out) {
					j++
					out[j] = ' '
				}
			case quote == '`' && out[j] == '$' && j+1 < len(out) && out[j+1] == '{':
				out[j], out[j+1] = ' ', ' '
				end := strings.IndexByte(text[j:], '}')
				if end < 0 {
					end = len(out) - j - 1
				} else {
					out[j+end] = ' '
				}
				j += end
			default:
				out[j] = ' '
			}
		}
		i = j
	}
	return string(out)
}
