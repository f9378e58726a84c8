package config

import (
	"fmt"
	"slices"
	"strings"
)

// Change is one setting that differs between two configs.
type Change struct {
	Path string
	Old  string // empty when the key is new
	New  string // empty when the key was removed
}

// Flatten returns every leaf setting keyed by its dotted yaml path.
func Flatten(cfg *Config) (map[string]string, error) {
	tree, err := configTree(cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flattenInto(out, "", tree)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		out[prefix] = fmt.Sprint(v)
		return
	}
	for k, child := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		flattenInto(out, path, child)
	}
}

// Diff lists the settings that differ from before to after, sorted by path.
func Diff(before, after *Config) ([]Change, error) {
	a, err := Flatten(before)
	if err != nil {
		return nil, err
	}
	b, err := Flatten(after)
	if err != nil {
		return nil, err
	}

	var changes []Change
	for path, av := range a {
		if bv, ok := b[path]; !ok || bv != av {
			changes = append(changes, Change{Path: path, Old: av, New: bv})
		}
	}
	for path, bv := range b {
		if _, ok := a[path]; !ok {
			changes = append(changes, Change{Path: path, New: bv})
		}
	}
	slices.SortFunc(changes, func(x, y Change) int { return strings.Compare(x.Path, y.Path) })
	return changes, nil
}
