package query

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// caseConverter is one member of the case-conversion fallback family used
// for Key lookups that miss an exact match (spec §4.2, §9): "implement as
// an ordered list of (predicate, converter) pairs; first converter to
// succeed becomes the preferred converter for the remainder of the current
// query traversal" (spec §9).
type caseConverter struct {
	name    string
	convert func(string) string
}

// caseConverters is the fixed-order family spec §4.2 names: camel, pascal,
// kebab, snake, title, train, class. strcase supplies camel/pascal/kebab/
// snake directly; title and train are composed on top of its delimiter
// splitter since strcase has no built-in capitalized-word-per-segment
// renderer. "class" case is treated as a synonym for pascal (no separator,
// leading capital per word) per common case-conversion library convention
// (e.g. Rust's convert_case crate treats Class case as equivalent to
// Pascal for ASCII identifiers); this is a design decision, not specified.
var caseConverters = []caseConverter{
	{"camel", strcase.ToLowerCamel},
	{"pascal", strcase.ToCamel}, // iancoleman/strcase.ToCamel yields PascalCase
	{"kebab", strcase.ToKebab},
	{"snake", strcase.ToSnake},
	{"title", toTitleCase},
	{"train", toTrainCase},
	{"class", strcase.ToCamel},
}

func toTitleCase(s string) string {
	words := strings.Fields(strcase.ToDelimited(s, ' '))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func toTrainCase(s string) string {
	words := strings.Split(strcase.ToDelimited(s, '-'), "-")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, "-")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// resolveKeyWithFallback looks up key in keys (the insertion-order key
// list of a map). It tries an exact match first; failing that, it tries
// each case converter in fixed order, short-circuiting on the first one
// whose converted form of key matches a converted form of some key in
// keys. preferred, if non-empty, is tried before the fixed-order list (the
// "sibling lookups prefer it" rule from spec §4.2) and is updated via the
// returned usedConverter value.
func resolveKeyWithFallback(keys []string, key string, preferred string) (resolvedKey string, usedConverter string, ok bool) {
	for _, k := range keys {
		if k == key {
			return k, "", true
		}
	}

	tryConverter := func(name string, convert func(string) string) (string, bool) {
		target := convert(key)
		for _, k := range keys {
			if convert(k) == target {
				return k, true
			}
		}
		return "", false
	}

	if preferred != "" {
		for _, c := range caseConverters {
			if c.name == preferred {
				if k, ok := tryConverter(c.name, c.convert); ok {
					return k, c.name, true
				}
			}
		}
	}

	for _, c := range caseConverters {
		if c.name == preferred {
			continue
		}
		if k, ok := tryConverter(c.name, c.convert); ok {
			return k, c.name, true
		}
	}

	return "", "", false
}
