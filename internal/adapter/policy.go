package adapter

import (
	"slices"
	"sort"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// Policy is a representation choice for date, timestamp or numeric columns.
type Policy string

const (
	// PolicyTimestamp surfaces dates and timestamps as native Date values.
	PolicyTimestamp Policy = "timestamp"
	// PolicyString surfaces the value as the driver's string form.
	PolicyString Policy = "string"
	// PolicyNumber surfaces arbitrary-precision numerics as numbers.
	PolicyNumber Policy = "number"
	// PolicyNumberOrString surfaces numerics as numbers when they fit, strings otherwise.
	PolicyNumberOrString Policy = "number-or-string"
)

var (
	temporalPolicies = []Policy{PolicyString, PolicyTimestamp}
	numericPolicies  = []Policy{PolicyNumber, PolicyNumberOrString, PolicyString}
)

// PolicySpec is either a single policy for every governed native type, a
// per-native-type map, or both. Per-type entries win over Global. A zero
// PolicySpec falls back to the documented default.
type PolicySpec struct {
	Global  Policy
	PerType map[string]Policy
}

// Single returns a PolicySpec applying p to every governed type.
func Single(p Policy) PolicySpec { return PolicySpec{Global: p} }

// PerType returns a PolicySpec with per-type entries only.
func PerType(m map[string]Policy) PolicySpec { return PolicySpec{PerType: m} }

// Resolve returns the policy for nativeType: the per-type entry, else the
// global value, else def.
func (s PolicySpec) Resolve(nativeType string, def Policy) Policy {
	if p, ok := s.PerType[strings.ToLower(nativeType)]; ok && p != "" {
		return p
	}
	if s.Global != "" {
		return s.Global
	}
	return def
}

// IsZero reports whether nothing was configured.
func (s PolicySpec) IsZero() bool {
	return s.Global == "" && len(s.PerType) == 0
}

// Policies groups the three representation choices of one run.
type Policies struct {
	Date      PolicySpec
	Timestamp PolicySpec
	Numeric   PolicySpec
}

// policyKeys lists the native types each policy governs for a dialect.
type policyKeys struct {
	date      []string
	timestamp []string
	numeric   []string
}

func policyKeysFor(d Dialect) (policyKeys, error) {
	switch d {
	case DialectPostgres:
		return policyKeys{
			date:      []string{"date"},
			timestamp: []string{"timestamp", "timestamptz"},
			numeric:   []string{"numeric"},
		}, nil
	case DialectMySQL:
		return policyKeys{
			date:      []string{"date", "datetime"},
			timestamp: []string{"timestamp"},
			numeric:   []string{"decimal"},
		}, nil
	case DialectMSSQL:
		return policyKeys{
			date:      []string{"date"},
			timestamp: []string{"datetime", "datetime2", "datetimeoffset", "smalldatetime"},
			numeric:   []string{"decimal", "numeric", "money", "smallmoney"},
		}, nil
	case DialectSQLite:
		return policyKeys{}, nil
	default:
		return policyKeys{}, errs.Newf(errs.ErrKindConfig, "unknown dialect %q", d)
	}
}

// PolicyKeys returns the native types governed by the date, timestamp and
// numeric policies of dialect d.
func PolicyKeys(d Dialect) (date, timestamp, numeric []string) {
	keys, _ := policyKeysFor(d)
	return slices.Clone(keys.date), slices.Clone(keys.timestamp), slices.Clone(keys.numeric)
}

func (p Policies) validate(d Dialect, keys policyKeys) error {
	if err := p.Date.validate(d, "date-parser", keys.date, temporalPolicies); err != nil {
		return err
	}
	if err := p.Timestamp.validate(d, "timestamp-parser", keys.timestamp, temporalPolicies); err != nil {
		return err
	}
	return p.Numeric.validate(d, "numeric-parser", keys.numeric, numericPolicies)
}

func (s PolicySpec) validate(d Dialect, flag string, keys []string, allowed []Policy) error {
	if s.Global != "" && !slices.Contains(allowed, s.Global) {
		return errs.Newf(errs.ErrKindConfig, "--%s: unknown value %q (expected one of %s)",
			flag, s.Global, joinPolicies(allowed))
	}

	names := make([]string, 0, len(s.PerType))
	for k := range s.PerType {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if !slices.Contains(keys, strings.ToLower(k)) {
			if len(keys) == 0 {
				return errs.Newf(errs.ErrKindConfig, "--%s: dialect %s has no %s keys, got %q",
					flag, d, strings.TrimSuffix(flag, "-parser"), k)
			}
			return errs.Newf(errs.ErrKindConfig, "--%s: unknown key %q for dialect %s (expected one of %s)",
				flag, k, d, strings.Join(keys, ", "))
		}
		if v := s.PerType[k]; !slices.Contains(allowed, v) {
			return errs.Newf(errs.ErrKindConfig, "--%s: unknown value %q for key %q (expected one of %s)",
				flag, v, k, joinPolicies(allowed))
		}
	}
	return nil
}

func joinPolicies(ps []Policy) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
