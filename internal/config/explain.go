package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var defaultSource = Source{Kind: SourceDefault, Name: "defaults"}

// Explain resolves a dotted key such as "homebar.response" or a whole section
// such as "shortcuts" and reports which file set it. Keys no file mentions
// come from the defaults.
func Explain(res *LoadResult, path string) (any, Source, error) {
	switch {
	case res == nil || res.Config == nil:
		return nil, Source{}, errors.New("no config loaded")
	case path == "":
		return nil, Source{}, errors.New("path is empty")
	}

	tree, err := configTree(res.Config)
	if err != nil {
		return nil, Source{}, err
	}
	var node any = tree
	for _, key := range strings.Split(path, ".") {
		section, ok := node.(map[string]any)
		if !ok {
			return nil, Source{}, fmt.Errorf("unknown config path %q", path)
		}
		if node, ok = section[key]; !ok {
			return nil, Source{}, fmt.Errorf("unknown config path %q", path)
		}
	}

	if src, ok := res.Sources[path]; ok {
		return node, src, nil
	}
	return node, defaultSource, nil
}

// configTree is cfg as generic yaml, so keys always match the yaml tags.
func configTree(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
