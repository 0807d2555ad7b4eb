// Package ingest is the external collaborator that turns files on disk
// into the generic inputs the core consumes: a canonical value.Value
// document and (filename, text) rule sources. It is explicitly outside
// the core (spec §1): deserialization and directory walking live here so
// internal/value and internal/lang never import encoding/json, yaml.v3,
// or os/filepath.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/ruleweave/ruleweave/internal/value"
)

// Document pairs a canonicalized value with the name of the file it came
// from (spec §6.3: "a pre-parsed generic value with optional document
// name").
type Document struct {
	Name  string
	Value value.Value
}

// LoadDocument reads path and canonicalizes it as JSON or YAML based on
// its extension (".json" → encoding/json-compatible streaming decode via
// value.FromJSON; anything else → YAML via value.FromYAMLNode, since YAML
// is a superset of JSON and the teacher's pack treats ".yaml"/".yml" as
// the default template format).
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, oops.Code("FORMAT_ERROR").
			With("path", path).
			Wrapf(err, "read document")
	}
	return ParseDocument(path, data)
}

// ParseDocument canonicalizes raw bytes already read from name, dispatching
// on name's extension the same way LoadDocument does. Exposed separately
// so callers that already have the bytes (an HTTP request body, a test
// fixture) do not need to round-trip through the filesystem.
func ParseDocument(name string, data []byte) (Document, error) {
	var v value.Value
	var err error
	if strings.EqualFold(filepath.Ext(name), ".json") {
		v, err = value.FromJSON(bytes.NewReader(data))
	} else {
		var node yaml.Node
		if decErr := yaml.Unmarshal(data, &node); decErr != nil {
			err = decErr
		} else {
			v, err = value.FromYAMLNode(&node)
		}
	}
	if err != nil {
		return Document{}, oops.Code("FORMAT_ERROR").
			With("name", name).
			Wrapf(err, "parse document")
	}
	return Document{Name: name, Value: v}, nil
}

// RuleSource pairs rule DSL text with the filename it was read from (spec
// §6.3: "a UTF-8 text buffer of rules plus a file name").
type RuleSource struct {
	Filename string
	Text     string
}

// LoadRuleFile reads a single rules file from disk.
func LoadRuleFile(path string) (RuleSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSource{}, oops.Code("FORMAT_ERROR").
			With("path", path).
			Wrapf(err, "read rules file")
	}
	return RuleSource{Filename: path, Text: string(data)}, nil
}

// WalkRuleDir walks dir (spec D.2: "directory walking lives here") and
// returns every file whose extension matches one of exts (case
// insensitive, each including the leading dot, e.g. ".guard"), in
// lexical traversal order.
func WalkRuleDir(dir string, exts ...string) ([]RuleSource, error) {
	var sources []RuleSource
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !hasAnyExt(path, exts) {
			return nil
		}
		src, err := LoadRuleFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, oops.Code("FORMAT_ERROR").
			With("dir", dir).
			Wrapf(err, "walk rules directory")
	}
	return sources, nil
}

func hasAnyExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// DefaultRuleExtensions is the extension set cmd/ruleweave uses when the
// caller does not name specific extensions.
var DefaultRuleExtensions = []string{".guard", ".ruleweave"}

// ErrNoRulesFound is returned by convenience callers that expect at least
// one rule source and got none.
var ErrNoRulesFound = fmt.Errorf("ingest: no rule files found")
