// Package compiler renders compiled node graphs into text, using templates:
// the standard templates give a unit listing (.txt) and a Graphviz graph
// (.dot).
package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/padseq/padseq"
	"github.com/padseq/padseq/vm"
)

type Compiler struct {
	Template *template.Template
}

//go:embed templates/*
var templateFS embed.FS

// New returns a new compiler using the standard templates.
func New() (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*")
	if err != nil {
		return nil, fmt.Errorf(`could not parse the standard templates: %v`, err)
	}
	return &Compiler{Template: tmpl}, nil
}

func NewFromTemplates(templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// Graph compiles spec with the bindings and executes every template on the
// result. The returned map is keyed by the template extensions, e.g. ".dot".
func (com *Compiler) Graph(name string, spec padseq.NodeGraphSpec, bindings vm.Bindings, sampleRate int) (map[string]string, error) {
	g, err := vm.Compile(spec, bindings, sampleRate)
	if err != nil {
		return nil, fmt.Errorf(`could not compile graph: %w`, err)
	}
	macros := NewMacros(name, g)
	retmap := map[string]string{}
	for _, t := range com.Template.Templates() {
		templateName := t.Name()
		if filepath.Ext(templateName) == "" {
			continue // "base" and named sub-templates
		}
		populatedTemplate, extension, err := com.compile(templateName, macros)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data any) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}
