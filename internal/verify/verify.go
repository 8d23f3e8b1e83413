// Package verify compares a persisted artifact with freshly generated output
// and reports which top-level declarations drifted.
package verify

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// Status is the outcome of a comparison.
type Status string

const (
	StatusIdentical Status = "identical"
	StatusDrift     Status = "drift"
)

// ChangeKind says how a declaration differs.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeChanged ChangeKind = "changed"
)

// Change is one drifted declaration.
type Change struct {
	Declaration string
	Kind        ChangeKind
}

// Report is the result of Compare.
type Report struct {
	Name   string
	Status Status

	// Missing is set when there was no persisted artifact at all.
	Missing bool

	PersistedDigest uint64
	FreshDigest     uint64

	// Changes lists drifted declarations, in fresh output order followed by
	// removed declarations in persisted order.
	Changes []Change
}

// Identical reports whether the artifact is up to date.
func (r Report) Identical() bool { return r.Status == StatusIdentical }

// Err returns nil for an identical report and a drift error naming the
// artifact and its changed declarations otherwise.
func (r Report) Err() error {
	if r.Identical() {
		return nil
	}
	if r.Missing {
		return errs.Newf(errs.ErrKindDrift, "%s does not exist", r.Name)
	}
	if len(r.Changes) == 0 {
		return errs.Newf(errs.ErrKindDrift, "%s is out of date (formatting only)", r.Name)
	}

	parts := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		parts[i] = string(c.Kind) + " " + c.Declaration
	}
	return errs.Newf(errs.ErrKindDrift, "%s is out of date: %s", r.Name, strings.Join(parts, ", "))
}

// Compare checks fresh output against the persisted artifact name.
func Compare(name string, persisted, fresh []byte) Report {
	r := Report{
		Name:            name,
		Status:          StatusIdentical,
		PersistedDigest: xxh3.Hash(persisted),
		FreshDigest:     xxh3.Hash(fresh),
	}
	if bytes.Equal(persisted, fresh) {
		return r
	}
	r.Status = StatusDrift

	old, oldOrder := declarations(persisted)
	cur, curOrder := declarations(fresh)
	for _, n := range curOrder {
		prev, ok := old[n]
		switch {
		case !ok:
			r.Changes = append(r.Changes, Change{Declaration: n, Kind: ChangeAdded})
		case prev != cur[n]:
			r.Changes = append(r.Changes, Change{Declaration: n, Kind: ChangeChanged})
		}
	}
	for _, n := range oldOrder {
		if _, ok := cur[n]; !ok {
			r.Changes = append(r.Changes, Change{Declaration: n, Kind: ChangeRemoved})
		}
	}
	return r
}

// Missing reports drift for an artifact that was never written.
func Missing(name string, fresh []byte) Report {
	r := Report{
		Name:        name,
		Status:      StatusDrift,
		Missing:     true,
		FreshDigest: xxh3.Hash(fresh),
	}
	_, order := declarations(fresh)
	for _, n := range order {
		r.Changes = append(r.Changes, Change{Declaration: n, Kind: ChangeAdded})
	}
	return r
}

var declPattern = regexp.MustCompile(`^export\s+(?:declare\s+)?(?:type|interface|const|enum)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

const (
	preambleChunk = "(header)"
	importChunk   = "(imports)"
)

// declarations splits text into top-level chunks keyed by declaration name
// and returns the xxh3 digest of each chunk. A const and a type of the same
// name (runtime enums) share one chunk. Trailing blank lines are not part of
// a chunk.
func declarations(text []byte) (map[string]uint64, []string) {
	bodies := map[string]*bytes.Buffer{}
	var order []string
	current := preambleChunk

	for _, line := range bytes.SplitAfter(text, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("import ")):
			current = importChunk
		case bytes.HasPrefix(line, []byte("export ")):
			if m := declPattern.FindSubmatch(line); m != nil {
				current = string(m[1])
			}
		}
		buf, ok := bodies[current]
		if !ok {
			buf = &bytes.Buffer{}
			bodies[current] = buf
			order = append(order, current)
		}
		buf.Write(line)
	}

	digests := make(map[string]uint64, len(bodies))
	for name, buf := range bodies {
		digests[name] = xxh3.Hash(bytes.TrimRight(buf.Bytes(), " \t\r\n"))
	}
	return digests, order
}

// String summarizes r for logs.
func (r Report) String() string {
	return fmt.Sprintf("%s: %s (%d changes, persisted=%016x fresh=%016x)",
		r.Name, r.Status, len(r.Changes), r.PersistedDigest, r.FreshDigest)
}
