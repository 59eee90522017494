// Package model loads declaration model documents into an in-memory
// declaration graph.
//
// A model document describes the declarations of a compilation the way a
// compiler front end would report them: types with their namespace, kind,
// modifiers, base type, interfaces, attributes, fields, properties and nested
// types. Documents can be written in YAML, TOML or JSON.
//
//	types:
//	  - name: ExampleViewModel
//	    namespace: GeneratedDemo
//	    accessibility: public
//	    fields:
//	      - name: _text
//	        type: string
//	        attributes:
//	          - type: AutoNotify.AutoNotifyAttribute
package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Document is the serialized form of a declaration graph.
type Document struct {
	// Standalone disables DefaultReferences; only References are known.
	Standalone bool            `yaml:"standalone" toml:"standalone" json:"standalone"`
	References []ReferenceSpec `yaml:"references" toml:"references" json:"references"`
	Types      []TypeSpec      `yaml:"types" toml:"types" json:"types"`
}

// ReferenceSpec names a type the compilation knows from a referenced
// library rather than from source.
type ReferenceSpec struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Kind string `yaml:"kind" toml:"kind" json:"kind"`
}

// TypeSpec declares one source type.
type TypeSpec struct {
	Name          string          `yaml:"name" toml:"name" json:"name"`
	Namespace     string          `yaml:"namespace" toml:"namespace" json:"namespace"`
	Kind          string          `yaml:"kind" toml:"kind" json:"kind"`
	Accessibility string          `yaml:"accessibility" toml:"accessibility" json:"accessibility"`
	Record        bool            `yaml:"record" toml:"record" json:"record"`
	Static        bool            `yaml:"static" toml:"static" json:"static"`
	Abstract      bool            `yaml:"abstract" toml:"abstract" json:"abstract"`
	Sealed        bool            `yaml:"sealed" toml:"sealed" json:"sealed"`
	TypeParams    []string        `yaml:"typeParams" toml:"typeParams" json:"typeParams"`
	Base          string          `yaml:"base" toml:"base" json:"base"`
	Interfaces    []string        `yaml:"interfaces" toml:"interfaces" json:"interfaces"`
	Attributes    []AttributeSpec `yaml:"attributes" toml:"attributes" json:"attributes"`
	Fields        []MemberSpec    `yaml:"fields" toml:"fields" json:"fields"`
	Properties    []MemberSpec    `yaml:"properties" toml:"properties" json:"properties"`
	Types         []TypeSpec      `yaml:"types" toml:"types" json:"types"`
	File          string          `yaml:"file" toml:"file" json:"file"`
	Line          int             `yaml:"line" toml:"line" json:"line"`
	Column        int             `yaml:"column" toml:"column" json:"column"`
}

// MemberSpec declares a field or property. A field declaration may declare
// several variables through Names; they share type and attributes.
type MemberSpec struct {
	Name          string          `yaml:"name" toml:"name" json:"name"`
	Names         []string        `yaml:"names" toml:"names" json:"names"`
	Type          string          `yaml:"type" toml:"type" json:"type"`
	Accessibility string          `yaml:"accessibility" toml:"accessibility" json:"accessibility"`
	Static        bool            `yaml:"static" toml:"static" json:"static"`
	Setter        bool            `yaml:"setter" toml:"setter" json:"setter"`
	Attributes    []AttributeSpec `yaml:"attributes" toml:"attributes" json:"attributes"`
	File          string          `yaml:"file" toml:"file" json:"file"`
	Line          int             `yaml:"line" toml:"line" json:"line"`
	Column        int             `yaml:"column" toml:"column" json:"column"`
}

// AttributeSpec attaches an attribute instance.
type AttributeSpec struct {
	Type string         `yaml:"type" toml:"type" json:"type"`
	Args map[string]any `yaml:"args" toml:"args" json:"args"`
}

// DefaultReferences are known to every non-standalone document.
var DefaultReferences = []ReferenceSpec{
	{Name: "System.Object", Kind: "class"},
	{Name: "System.Attribute", Kind: "class"},
	{Name: "System.ComponentModel.INotifyPropertyChanged", Kind: "interface"},
	{Name: "System.Text.Json.JsonElement", Kind: "struct"},
	{Name: "System.DateTime", Kind: "struct"},
}

// Format is a model document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.WithHint(
		errors.Newf("unsupported model file extension %q", filepath.Ext(path)),
		"use .yaml, .yml, .toml or .json")
}

// Decode parses a document.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return nil, errors.Newf("unknown model format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s model", format)
	}
	return &doc, nil
}

// Parse decodes and builds a graph in one step.
func Parse(data []byte, format Format) (*Graph, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Load reads a model file, choosing the decoder from its extension.
func Load(path string) (*Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read model %s", path)
	}
	g, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load model %s", path)
	}
	return g, nil
}
