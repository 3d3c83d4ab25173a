// Package schema resolves the declarative record descriptions shipped with
// pseudo-crawl seeds into typed schema trees and validates decoded records
// against them.
//
// A description mirrors the JSON metadata the crawl tooling writes next to
// each seed: a leaf is an object carrying "_type": "Value" and a "dtype"
// tag, a sequence is a single-element array, and a struct is any other
// non-empty object. Descriptions are data, so resolution failures are
// reported as ESCHEMA errors rather than panics.
package schema

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/seedcorpus"
)

// maxDepth bounds description recursion. Real seed descriptions are a few
// levels deep; anything past this is cyclic or malformed.
const maxDepth = 100

// Kind identifies the shape of a schema node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindStruct
)

// Scalar identifies the value type of a leaf node.
type Scalar int

const (
	Int16 Scalar = iota + 1
	Int32
	Int64
	Float32
	Float64
	String
	Timestamp
)

var scalarTags = map[string]Scalar{
	"int16":   Int16,
	"int32":   Int32,
	"int64":   Int64,
	"float32": Float32,
	"float64": Float64,
	"string":  String,
}

// Node is one resolved node of a schema tree.
type Node struct {
	Kind   Kind
	Scalar Scalar           // set when Kind == KindScalar
	Elem   *Node            // set when Kind == KindSequence
	Fields map[string]*Node // set when Kind == KindStruct
}

// Resolve converts a declarative description into a schema tree. It returns
// an ESCHEMA error when the description names an unknown value type, when a
// sequence does not hold exactly one element description, when a struct has
// no fields, or when the description recurses past a sane depth.
func Resolve(desc any) (*Node, error) {
	return resolve(desc, "", 0)
}

func resolve(desc any, path string, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "description at %q exceeds depth %d: cyclic or malformed", displayPath(path), maxDepth)
	}

	switch d := desc.(type) {
	case map[string]any:
		if _, ok := d["_type"]; ok {
			return resolveLeaf(d, path)
		}
		if len(d) == 0 {
			return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "struct description at %q has no fields", displayPath(path))
		}
		fields := make(map[string]*Node, len(d))
		for key, child := range d {
			node, err := resolve(child, joinPath(path, key), depth+1)
			if err != nil {
				return nil, err
			}
			fields[key] = node
		}
		return &Node{Kind: KindStruct, Fields: fields}, nil

	case []any:
		if len(d) != 1 {
			return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "sequence description at %q must hold exactly one element, got %d", displayPath(path), len(d))
		}
		elem, err := resolve(d[0], path+"[]", depth+1)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindSequence, Elem: elem}, nil

	default:
		return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "unsupported description at %q: neither object nor array", displayPath(path))
	}
}

// resolveLeaf resolves an object carrying a "_type" key. Keys other than
// "_type" and "dtype" (such as the "id" the crawl tooling emits) are
// ignored.
func resolveLeaf(d map[string]any, path string) (*Node, error) {
	typ, ok := d["_type"].(string)
	if !ok || typ != "Value" {
		return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "unsupported _type at %q: %v", displayPath(path), d["_type"])
	}
	tag, ok := d["dtype"].(string)
	if !ok {
		return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "leaf at %q has no dtype", displayPath(path))
	}
	scalar, ok := scalarTags[tag]
	if !ok {
		// Timestamps carry their unit in the tag, e.g. timestamp[ns].
		if strings.HasPrefix(tag, "timestamp[") && strings.HasSuffix(tag, "]") {
			scalar = Timestamp
		} else {
			return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "unknown dtype %q at %q", tag, displayPath(path))
		}
	}
	return &Node{Kind: KindScalar, Scalar: scalar}, nil
}

// ValidateRecord checks a decoded record against the schema. The node must
// be a struct; records are objects. The record must come from a decoder
// with UseNumber set, so integer fields survive undamaged.
//
// Every declared field must be present; a field that is present may hold
// null anywhere in the tree, since columnar crawl outputs serialize absent
// values as null. Keys the schema does not declare are ignored. Callers
// that cannot tolerate null in a specific field (the pipeline reads four of
// them) enforce that themselves.
func (n *Node) ValidateRecord(rec map[string]any) error {
	if n.Kind != KindStruct {
		return seedcorpus.Errorf(seedcorpus.ESCHEMA, "record schema root must be a struct")
	}
	for _, key := range sortedKeys(n.Fields) {
		v, ok := rec[key]
		if !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record missing required field %q", key)
		}
		if err := validate(v, n.Fields[key], key); err != nil {
			return err
		}
	}
	return nil
}

func validate(v any, node *Node, path string) error {
	if v == nil {
		return nil
	}

	switch node.Kind {
	case KindScalar:
		return validateScalar(v, node.Scalar, path)

	case KindSequence:
		arr, ok := v.([]any)
		if !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an array", path)
		}
		for i, elem := range arr {
			if err := validate(elem, node.Elem, elemPath(path, i)); err != nil {
				return err
			}
		}
		return nil

	case KindStruct:
		m, ok := v.(map[string]any)
		if !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an object", path)
		}
		for _, key := range sortedKeys(node.Fields) {
			if err := validate(m[key], node.Fields[key], joinPath(path, key)); err != nil {
				return err
			}
		}
		return nil

	default:
		return seedcorpus.Errorf(seedcorpus.EINTERNAL, "unknown schema node kind %d", node.Kind)
	}
}

func validateScalar(v any, scalar Scalar, path string) error {
	switch scalar {
	case String:
		if _, ok := v.(string); !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not a string", path)
		}

	case Int16, Int32, Int64:
		num, ok := v.(json.Number)
		if !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an integer", path)
		}
		i, err := num.Int64()
		if err != nil {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an integer", path)
		}
		if scalar == Int16 && (i < -1<<15 || i > 1<<15-1) {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q overflows int16", path)
		}
		if scalar == Int32 && (i < -1<<31 || i > 1<<31-1) {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q overflows int32", path)
		}

	case Float32, Float64:
		num, ok := v.(json.Number)
		if !ok {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not a number", path)
		}
		if _, err := num.Float64(); err != nil {
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not a number", path)
		}

	case Timestamp:
		// Timestamps arrive serialized as strings or epoch numbers
		// depending on the writer; the exact format is the producer's
		// business, only the shape is checked here.
		switch v.(type) {
		case string, json.Number:
		default:
			return seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not a timestamp", path)
		}

	default:
		return seedcorpus.Errorf(seedcorpus.EINTERNAL, "unknown scalar kind %d", scalar)
	}
	return nil
}

// sortedKeys keeps validation error messages deterministic.
func sortedKeys(fields map[string]*Node) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
