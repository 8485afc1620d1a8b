// Package astio reads syntax trees from YAML.
//
// A program is a sequence of nodes. Each node is a mapping with
// exactly one key naming its kind:
//
//	---
//	- declare: {name: x, type: INTEGER}
//	- array: {name: a, type: INTEGER, start: 1, end: 3}
//	- assign: {name: x, value: {binary: {op: +, left: {ident: x}, right: {int: 1}}}}
//	- postfix: {op: +, x: {ident: x}}
//	- output: [{ident: x}, {str: " done"}]
//
// Positions are source line numbers of the YAML document.
package astio

import (
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ast"
)

type decoder func(n *yaml.Node, base ast.Base) (ast.Node, error)

var kinds map[string]decoder

func init() {
	kinds = map[string]decoder{
		"int":       decodeInt,
		"real":      decodeReal,
		"char":      decodeChar,
		"str":       decodeString,
		"date":      decodeDate,
		"bool":      decodeBool,
		"ident":     decodeIdent,
		"declare":   decodeDecl,
		"array":     decodeArray,
		"assign":    decodeAssign,
		"elem":      decodeElem,
		"binary":    decodeBinary,
		"unary":     decodeUnary,
		"postfix":   decodePostfix,
		"compare":   decodeCompare,
		"logical":   decodeLogical,
		"if":        decodeIf,
		"for":       decodeFor,
		"while":     decodeWhile,
		"repeat":    decodeRepeat,
		"procedure": decodeProcedure,
		"function":  decodeFunction,
		"call":      decodeCall,
		"return":    decodeReturn,
		"output":    decodeOutput,
		"input":     decodeInput,
		"block":     decodeBlock,
	}
}

func ReadFile(name string) ([]ast.Node, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Decode(data)
}

// Decode parses a YAML program.
func Decode(data []byte) ([]ast.Node, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrap(err, "yaml")
	}

	if doc.Kind == 0 {
		return nil, nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}

		root = root.Content[0]
	}

	return list(root)
}

func list(n *yaml.Node) ([]ast.Node, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}

	if n.Kind != yaml.SequenceNode {
		return nil, errors.New("line %d: expected a list of nodes", n.Line)
	}

	r := make([]ast.Node, 0, len(n.Content))

	for i, c := range n.Content {
		x, err := node(c)
		if err != nil {
			return nil, errors.Wrap(err, "item %d", i)
		}

		r = append(r, x)
	}

	return r, nil
}

func node(n *yaml.Node) (ast.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, errors.New("line %d: node must be a single key mapping", n.Line)
	}

	key, val := n.Content[0], n.Content[1]

	dec, ok := kinds[key.Value]
	if !ok {
		return nil, errors.New("line %d: unknown node kind %q", key.Line, key.Value)
	}

	x, err := dec(val, ast.Base{Pos: key.Line})
	if err != nil {
		return nil, errors.Wrap(err, "%v", key.Value)
	}

	return x, nil
}

// optional decodes a child node that may be absent.
func optional(n *yaml.Node) (ast.Node, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}

	return node(n)
}

func required(n *yaml.Node, field string) (ast.Node, error) {
	if n == nil || isNull(n) {
		return nil, errors.New("missing %v", field)
	}

	x, err := node(n)
	if err != nil {
		return nil, errors.Wrap(err, "%v", field)
	}

	return x, nil
}

// fields indexes the values of a mapping by key.
func fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("line %d: expected a mapping", n.Line)
	}

	m := make(map[string]*yaml.Node, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}

	return m, nil
}

func scalar(n *yaml.Node, field string, v any) error {
	if n == nil {
		return errors.New("missing %v", field)
	}

	err := n.Decode(v)
	if err != nil {
		return errors.Wrap(err, "%v", field)
	}

	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
