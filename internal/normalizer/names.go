package normalizer

import (
	"fmt"
	"strings"

	"tablenorm/internal/table"
)

// NormalizeColumnName trims and lowercases a header and replaces each run of
// whitespace with a single underscore.
func NormalizeColumnName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// Rename records one header that changed during normalization.
type Rename struct {
	From string
	To   string
}

// NormalizeColumnNames normalizes every header of t and maps known synonyms to
// canonical names. Hyphens are treated as underscores when looking up
// synonyms and canonical names, so "Join-Date" becomes "join_date" when
// join_date is canonical.
//
// Headers that collide after normalization keep the first occurrence's name
// and later ones get a numeric suffix (_2, _3, ...). The returned renames list
// every header whose name changed; collisions are reported separately.
func NormalizeColumnNames(t *table.Table, synonyms map[string]string, canonical []string) (*table.Table, []Rename, []string) {
	lookup := make(map[string]string, len(synonyms)+len(canonical))
	for _, c := range canonical {
		lookup[c] = c
	}
	for from, to := range synonyms {
		lookup[NormalizeColumnName(from)] = to
	}

	original := t.Columns()
	names := make([]string, len(original))
	used := make(map[string]struct{}, len(original))
	var renames []Rename
	var collisions []string

	for i, col := range original {
		name := NormalizeColumnName(col)
		if to, ok := lookup[strings.ReplaceAll(name, "-", "_")]; ok {
			name = to
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if _, dup := used[name]; dup {
			collisions = append(collisions, name)
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := used[name]; !taken {
					break
				}
			}
		}
		used[name] = struct{}{}
		names[i] = name
		if name != col {
			renames = append(renames, Rename{From: col, To: name})
		}
	}

	out := t.Clone()
	// names are unique by construction
	_ = out.Rename(names)
	return out, renames, collisions
}
