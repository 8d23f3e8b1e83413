// Package serializer renders a Database AST as TypeScript declarations.
//
// Output is a pure function of the AST and Options: no timestamps, no map
// iteration order, no environment. Verify mode compares it byte for byte.
package serializer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
)

// Header opens every generated file.
const Header = `/**
 * This file was generated by kysely-codegen.
 * Please do not edit it manually.
 */`

// kyselySymbols are the names imported from kysely when used.
var kyselySymbols = map[string]bool{
	"ColumnType": true,
	"Insertable": true,
	"Selectable": true,
	"Updateable": true,
}

const generatedHelper = `export type Generated<T> = T extends ColumnType<infer S, infer I, infer U>
  ? ColumnType<S, I | undefined, U>
  : ColumnType<T, T | undefined, T>;`

// Options tunes rendering.
type Options struct {
	// TypeOnlyImports renders `import type { … }` instead of `import { … }`.
	TypeOnlyImports bool
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{TypeOnlyImports: true}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Serialize renders db.
func Serialize(db *ast.Database, opts Options) string {
	p := newPrinter()

	var body []string
	for _, name := range definitionOrder(db) {
		body = append(body, p.definition(name, db.Definitions[name]))
	}
	for _, e := range db.Enums {
		body = append(body, p.enum(e))
	}
	tables := db.Tables()
	for _, t := range tables {
		body = append(body, p.table(t))
	}
	body = append(body, p.dbInterface(tables))

	sections := []string{Header}
	if imports := p.imports(opts); imports != "" {
		sections = append(sections, imports)
	}
	if p.generated {
		sections = append(sections, generatedHelper)
	}
	sections = append(sections, body...)

	return strings.Join(sections, "\n\n") + "\n"
}

// definitionOrder lists the definitions reachable from table columns, in
// first-reference order with each definition's dependencies before it.
// A definition on a cycle is listed once.
func definitionOrder(db *ast.Database) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var order []string

	var visit func(name string)
	visit = func(name string) {
		def, ok := db.Definitions[name]
		if !ok || state[name] != unvisited {
			return
		}
		state[name] = visiting
		for _, ref := range ast.References(def) {
			visit(ref)
		}
		state[name] = done
		order = append(order, name)
	}

	for _, t := range db.Tables() {
		for _, c := range t.Columns {
			for _, ref := range ast.References(c.Type) {
				visit(ref)
			}
		}
	}
	return order
}

type printer struct {
	symbols   map[string]bool
	generated bool
}

func newPrinter() *printer {
	return &printer{symbols: map[string]bool{}}
}

func (p *printer) imports(opts Options) string {
	if len(p.symbols) == 0 {
		return ""
	}
	names := make([]string, 0, len(p.symbols))
	for s := range p.symbols {
		names = append(names, s)
	}
	sort.Strings(names)

	keyword := "import"
	if opts.TypeOnlyImports {
		keyword = "import type"
	}
	return keyword + " { " + strings.Join(names, ", ") + ` } from "kysely";`
}

func (p *printer) definition(name string, n ast.Node) string {
	if obj, ok := n.(ast.Object); ok {
		return "export type " + name + " = " + p.object(obj, "") + ";"
	}
	return "export type " + name + " = " + p.expr(n) + ";"
}

func (p *printer) enum(e ast.EnumDeclaration) string {
	var sb strings.Builder
	sb.WriteString("export const " + e.Name + " = {\n")
	for _, m := range e.Members {
		sb.WriteString("  " + propertyName(m.Name) + ": " + quote(m.Value) + ",\n")
	}
	sb.WriteString("} as const;\n\n")
	sb.WriteString("export type " + e.Name + " = (typeof " + e.Name + ")[keyof typeof " + e.Name + "];")
	return sb.String()
}

func (p *printer) table(t ast.Table) string {
	p.symbols["Selectable"] = true
	p.symbols["Insertable"] = true
	p.symbols["Updateable"] = true

	var sb strings.Builder
	sb.WriteString("export interface " + t.TypeName + " {")
	if len(t.Columns) == 0 {
		sb.WriteString("}")
	} else {
		sb.WriteString("\n")
		for _, c := range t.Columns {
			if c.Comment != "" {
				sb.WriteString(docComment(c.Comment, "  "))
			}
			sb.WriteString("  " + propertyName(c.Key) + ": " + p.columnType(c.Type) + ";\n")
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n\n")
	sb.WriteString("export type " + t.TypeName + "Select = Selectable<" + t.TypeName + ">;\n")
	sb.WriteString("export type " + t.TypeName + "Insert = Insertable<" + t.TypeName + ">;\n")
	sb.WriteString("export type " + t.TypeName + "Update = Updateable<" + t.TypeName + ">;")
	return sb.String()
}

func (p *printer) dbInterface(tables []ast.Table) string {
	if len(tables) == 0 {
		return "export interface DB {}"
	}
	var sb strings.Builder
	sb.WriteString("export interface DB {\n")
	for _, t := range tables {
		sb.WriteString("  " + propertyName(t.Key) + ": " + t.TypeName + ";\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// columnType renders c as its select type, Generated<S>, or ColumnType<S, I, U>.
func (p *printer) columnType(c ast.ColumnType) string {
	if c.Insert == nil && c.Update == nil {
		return p.expr(c.Select)
	}
	if c.Update == nil && ast.Equal(c.Insert, ast.NewUnion(c.Select, ast.Undefined())) {
		p.generated = true
		p.symbols["ColumnType"] = true
		return "Generated<" + p.expr(c.Select) + ">"
	}

	p.symbols["ColumnType"] = true
	insert, update := c.Insert, c.Update
	if insert == nil {
		insert = c.Select
	}
	if update == nil {
		update = c.Select
	}
	return "ColumnType<" + p.expr(c.Select) + ", " + p.expr(insert) + ", " + p.expr(update) + ">"
}

func (p *printer) expr(n ast.Node) string {
	switch n := n.(type) {
	case ast.Identifier:
		return n.Name
	case ast.Literal:
		return quote(n.Value)
	case ast.Raw:
		p.noteRaw(n)
		return n.Text
	case ast.Array:
		elem := p.expr(n.Element)
		if needsParens(n.Element) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case ast.Union:
		parts := make([]string, len(n.Members))
		for i, m := range n.Members {
			parts[i] = p.expr(m)
		}
		return strings.Join(parts, " | ")
	case ast.Object:
		return p.inlineObject(n)
	case ast.ColumnType:
		return p.columnType(n)
	case ast.Generic:
		if kyselySymbols[n.Name] {
			p.symbols[n.Name] = true
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = p.expr(a)
		}
		return n.Name + "<" + strings.Join(args, ", ") + ">"
	case ast.Property:
		return p.property(n)
	case nil:
		return "unknown"
	}
	return "unknown"
}

// noteRaw records kysely symbols and the Generated helper named in raw text.
func (p *printer) noteRaw(r ast.Raw) {
	for _, tok := range ast.References(r) {
		switch {
		case tok == "Generated":
			p.generated = true
			p.symbols["ColumnType"] = true
		case kyselySymbols[tok]:
			p.symbols[tok] = true
		}
	}
}

func needsParens(n ast.Node) bool {
	switch n := n.(type) {
	case ast.Union:
		return true
	case ast.Raw:
		return strings.ContainsAny(n.Text, "|&") || strings.Contains(n.Text, "=>")
	}
	return false
}

func (p *printer) property(prop ast.Property) string {
	t := p.expr(prop.Type)
	if prop.Index {
		return "[" + prop.Name + ": string]: " + t
	}
	name := propertyName(prop.Name)
	if prop.Optional {
		name += "?"
	}
	return name + ": " + t
}

// object renders a multi-line object literal type.
func (p *printer) object(o ast.Object, indent string) string {
	if len(o.Properties) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, prop := range o.Properties {
		sb.WriteString(indent + "  " + p.property(prop) + ";\n")
	}
	sb.WriteString(indent + "}")
	return sb.String()
}

func (p *printer) inlineObject(o ast.Object) string {
	if len(o.Properties) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Properties))
	for i, prop := range o.Properties {
		parts[i] = p.property(prop)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func propertyName(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return quote(name)
}

func docComment(text, indent string) string {
	text = strings.ReplaceAll(text, "*/", "*\\/")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var sb strings.Builder
	sb.WriteString(indent + "/**\n")
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			sb.WriteString(indent + " *\n")
			continue
		}
		sb.WriteString(indent + " * " + l + "\n")
	}
	sb.WriteString(indent + " */\n")
	return sb.String()
}
