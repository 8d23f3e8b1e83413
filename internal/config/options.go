package config

import (
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/rowan-gud/kysely-codegen/internal/adapter"
	"github.com/rowan-gud/kysely-codegen/internal/ast"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/transformer"
)

// Column type variant keys of an override object.
var variantKeys = map[string]bool{"select": true, "insert": true, "update": true}

// parsePolicy accepts nil, a policy name, a map of native type to policy,
// or a YAML/JSON string holding such a map.
func parsePolicy(flag string, v any) (adapter.PolicySpec, error) {
	switch v := v.(type) {
	case nil:
		return adapter.PolicySpec{}, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return adapter.PolicySpec{}, nil
		}
		if !strings.ContainsAny(s, ":{") {
			return adapter.Single(adapter.Policy(strings.ToLower(s))), nil
		}
		var m map[string]string
		if err := yaml.Unmarshal([]byte(s), &m); err != nil {
			return adapter.PolicySpec{}, errs.Wrap(errs.ErrKindConfig, flag+": invalid map", err)
		}
		return perType(m), nil
	case map[string]any:
		m := make(map[string]string, len(v))
		for key, val := range v {
			s, ok := val.(string)
			if !ok {
				return adapter.PolicySpec{}, errs.Newf(errs.ErrKindConfig, "%s: value for %q must be a string", flag, key)
			}
			m[key] = s
		}
		return perType(m), nil
	}
	return adapter.PolicySpec{}, errs.Newf(errs.ErrKindConfig, "%s: expected a string or a map, got %T", flag, v)
}

func perType(m map[string]string) adapter.PolicySpec {
	out := make(map[string]adapter.Policy, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = adapter.Policy(strings.ToLower(strings.TrimSpace(v)))
	}
	return adapter.PerType(out)
}

// parseOverrides accepts the shapes overrides arrive in:
//
//   - a YAML or JSON string mapping key to type (file order is kept),
//   - a map, possibly nested where koanf split a dotted key,
//   - a list of {key, type} or {key, select, insert, update} entries.
//
// A type is a TypeScript expression string or a {select, insert, update}
// object. Map input is sorted by key.
func parseOverrides(v any) ([]transformer.Override, error) {
	var (
		out []transformer.Override
		err error
	)
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		out, err = overridesFromYAML(v)
	case map[string]any:
		out, err = overridesFromMap(v)
	case []any:
		out, err = overridesFromList(v)
	default:
		err = fmt.Errorf("expected a string, map or list, got %T", v)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "--overrides", err)
	}

	for _, o := range out {
		if err := validateOverrideKey(o.Key); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func overridesFromYAML(s string) ([]transformer.Override, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of key to type")
	}

	root := doc.Content[0]
	var out []transformer.Override
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		var decoded any
		if err := val.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		t, err := overrideType(key, decoded)
		if err != nil {
			return nil, err
		}
		out = append(out, transformer.Override{Key: key, Type: t})
	}
	return out, nil
}

func overridesFromMap(m map[string]any) ([]transformer.Override, error) {
	flat := map[string]any{}
	flattenOverrides("", m, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]transformer.Override, 0, len(keys))
	for _, k := range keys {
		t, err := overrideType(k, flat[k])
		if err != nil {
			return nil, err
		}
		out = append(out, transformer.Override{Key: k, Type: t})
	}
	return out, nil
}

// flattenOverrides rejoins keys that were split on ".". A map made only of
// select/insert/update keys is a type, not a level of nesting.
func flattenOverrides(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && !isVariantObject(sub) {
			flattenOverrides(key, sub, out)
			continue
		}
		out[key] = v
	}
}

func overridesFromList(list []any) ([]transformer.Override, error) {
	out := make([]transformer.Override, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected a map, got %T", i, item)
		}
		key, _ := entry["key"].(string)
		if key == "" {
			return nil, fmt.Errorf("entry %d: missing key", i)
		}

		var raw any = entry["type"]
		if raw == nil {
			variants := map[string]any{}
			for k, v := range entry {
				if variantKeys[k] {
					variants[k] = v
				}
			}
			raw = variants
		}
		t, err := overrideType(key, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, transformer.Override{Key: key, Type: t})
	}
	return out, nil
}

// overrideType converts a decoded override value into a type node.
func overrideType(key string, v any) (ast.Node, error) {
	switch v := v.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("key %q: empty type", key)
		}
		return ast.RawExpr(strings.TrimSpace(v)), nil
	case map[string]any:
		if !isVariantObject(v) {
			return nil, fmt.Errorf("key %q: a type object takes only select, insert and update", key)
		}
		sel, err := variant(key, v, "select")
		if err != nil {
			return nil, err
		}
		if sel == nil {
			return nil, fmt.Errorf("key %q: a type object needs select", key)
		}
		insert, err := variant(key, v, "insert")
		if err != nil {
			return nil, err
		}
		update, err := variant(key, v, "update")
		if err != nil {
			return nil, err
		}
		return ast.Columns(sel, insert, update), nil
	}
	return nil, fmt.Errorf("key %q: expected a type string, got %T", key, v)
}

func variant(key string, m map[string]any, name string) (ast.Node, error) {
	v, ok := m[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, isString := v.(string)
	if !isString || strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("key %q: %s must be a non-empty type string", key, name)
	}
	return ast.RawExpr(strings.TrimSpace(s)), nil
}

func isVariantObject(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !variantKeys[k] {
			return false
		}
	}
	return true
}

func validateOverrideKey(key string) error {
	parts := strings.Split(key, ".")
	if len(parts) > 3 {
		return errs.Newf(errs.ErrKindConfig, "--overrides: key %q has more than three parts (expected schema.table.column, table.column or a type name)", key)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return errs.Newf(errs.ErrKindConfig, "--overrides: key %q has an empty part", key)
		}
	}
	return nil
}

// mergeOverrides appends extra to base, replacing entries with the same key.
func mergeOverrides(base, extra []transformer.Override) []transformer.Override {
	out := make([]transformer.Override, 0, len(base)+len(extra))
	replaced := map[string]bool{}
	for _, e := range extra {
		replaced[e.Key] = true
	}
	for _, b := range base {
		if !replaced[b.Key] {
			out = append(out, b)
		}
	}
	return append(out, extra...)
}
