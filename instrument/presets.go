package instrument

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/padseq/padseq"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*
var presetFS embed.FS

// Presets maps preset names to node graphs.
type Presets map[string]padseq.NodeGraphSpec

// LoadPreset returns the builtin preset with the given name.
func LoadPreset(name string) (padseq.NodeGraphSpec, error) {
	data, err := presetFS.ReadFile(path.Join("presets", name+".yml"))
	if err != nil {
		return nil, fmt.Errorf("no builtin preset %q", name)
	}
	return ParseGraph(data)
}

// ParseGraph decodes and validates a node graph in YAML. JSON is a subset of
// YAML, so JSON graphs are accepted too.
func ParseGraph(data []byte) (padseq.NodeGraphSpec, error) {
	var g padseq.NodeGraphSpec
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("could not decode node graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// PresetNames lists the builtin presets, sorted.
func PresetNames() []string {
	var ret []string
	entries, _ := presetFS.ReadDir("presets")
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yml"); ok {
			ret = append(ret, name)
		}
	}
	sort.Strings(ret)
	return ret
}

// LoadPresets loads the builtin presets and then the user presets from
// os.UserConfigDir()/padseq/presets, which override builtin presets with the
// same name. Invalid user presets are skipped and reported.
func LoadPresets(report Reporter) Presets {
	ret := Presets{}
	for _, name := range PresetNames() {
		if g, err := LoadPreset(name); err == nil {
			ret[name] = g
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		ret.loadFromFS(os.DirFS(filepath.Join(configDir, "padseq")), report)
	}
	return ret
}

func (p Presets) loadFromFS(fsys fs.FS, report Reporter) {
	fs.WalkDir(fsys, "presets", func(file string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := path.Ext(file)
		if ext != ".yml" && ext != ".yaml" && ext != ".json" {
			return nil
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil
		}
		g, err := ParseGraph(data)
		if err != nil {
			if report != nil {
				report.Warningf("preset %s: %v", file, err)
			}
			return nil
		}
		p[strings.TrimSuffix(path.Base(file), ext)] = g
		return nil
	})
}

// Names returns the preset names, sorted.
func (p Presets) Names() []string {
	ret := make([]string, 0, len(p))
	for k := range p {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
