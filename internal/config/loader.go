package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

// Source records where a key got its effective value.
type Source struct {
	Kind   SourceKind
	Name   string // env variable, or "defaults"
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key -> last writer
	Files   []string          // every file read, in merge order
	Path    string            // the file that was asked for
}

// Load reads the configuration from $FRAMEWM_CONFIG or the standard location.
func Load() (*LoadResult, error) {
	path, err := PathFromEnv()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path and its includes, applies FRAMEWM_* environment
// overrides and validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	merged := layer{sources: map[string]Source{}}
	var files []string

	if _, err := os.Stat(path); err == nil {
		l := &loader{seen: map[string]bool{}}
		fileLayer, err := l.load(path)
		if err != nil {
			return nil, err
		}
		merged.over(fileLayer)
		files = l.files
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	envRaw, envSources, err := rawFromEnv()
	if err != nil {
		return nil, err
	}
	merged.over(layer{raw: envRaw, sources: envSources})

	cfg := BuildEffectiveConfig(merged.raw)
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := merged.sources[verr.Path]; ok {
				verr.Source = src
			}
		}
		return nil, err
	}

	return &LoadResult{
		Config:  cfg,
		Sources: merged.sources,
		Files:   files,
		Path:    path,
	}, nil
}

// layer is one or more merged files plus who set each key.
type layer struct {
	raw     RawConfig
	sources map[string]Source
}

// over applies top on l; keys set in top win.
func (l *layer) over(top layer) {
	l.raw = l.raw.merge(top.raw)
	if l.sources == nil {
		l.sources = map[string]Source{}
	}
	for key, src := range top.sources {
		l.sources[key] = src
	}
}

// loader follows includes depth first. A file reached twice is merged once;
// a file reached again through its own includes is a cycle.
type loader struct {
	seen  map[string]bool
	stack []string
	files []string
}

func (l *loader) load(path string) (layer, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return layer{}, err
	}
	if slices.Contains(l.stack, canon) {
		return layer{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.stack, " -> "), canon)
	}
	if l.seen[canon] {
		return layer{}, nil
	}
	l.seen[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return layer{}, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return layer{}, fmt.Errorf("%s: %w", canon, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	w := walk(&doc, canon)

	l.stack = append(l.stack, canon)
	var out layer
	for _, inc := range w.includes {
		paths, err := expandInclude(canon, inc.value)
		if err != nil {
			return layer{}, fmt.Errorf("%s:%d:%d: include %q: %w", inc.at.File, inc.at.Line, inc.at.Column, inc.value, err)
		}
		for _, p := range paths {
			sub, err := l.load(p)
			if err != nil {
				return layer{}, err
			}
			out.over(sub)
		}
	}
	l.stack = l.stack[:len(l.stack)-1]

	// The including file overrides what it includes.
	out.over(layer{raw: raw, sources: w.sources})
	l.files = append(l.files, canon)
	return out, nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves include against the including file. A directory
// expands to its *.yaml and *.yml files in name order.
func expandInclude(from, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path, err := expandHome(include)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(path, ent.Name()))
			}
		}
	}
	// ReadDir already sorts by name.
	return files, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

type includeRef struct {
	value string
	at    Source
}

// walked is what a single pass over a YAML document yields.
type walked struct {
	sources  map[string]Source
	includes []includeRef
}

func walk(doc *yaml.Node, file string) walked {
	w := walked{sources: map[string]Source{}}
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return w
	}
	w.mapping(root, file, "")
	return w
}

func (w *walked) mapping(node *yaml.Node, file, prefix string) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix == "" && key == "include" {
			w.includeRefs(val, file)
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		w.sources[path] = at(file, val)
		if val.Kind == yaml.MappingNode {
			w.mapping(val, file, path)
		}
	}
}

func (w *walked) includeRefs(val *yaml.Node, file string) {
	switch val.Kind {
	case yaml.ScalarNode:
		w.includes = append(w.includes, includeRef{value: val.Value, at: at(file, val)})
	case yaml.SequenceNode:
		for _, item := range val.Content {
			if item.Kind == yaml.ScalarNode {
				w.includes = append(w.includes, includeRef{value: item.Value, at: at(file, item)})
			}
		}
	}
}

func at(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}
