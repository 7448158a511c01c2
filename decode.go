package ygggo_upsert

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DecodeRows parses a JSON or YAML document into an Input. A top-level object
// becomes Single, a top-level array of objects becomes Batch. Key order in the
// document is the column order of each row.
//
// Values must be scalars (string, number, bool or null); nested objects or
// arrays are rejected with ErrInvalidShape.
func DecodeRows(data []byte) (Input, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Input{}, errors.Wrap(err, "decode rows")
	}
	if len(doc.Content) == 0 {
		return Input{}, errors.Wrap(ErrEmptyInput, "empty document")
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		row, err := rowFromNode(root)
		if err != nil {
			return Input{}, err
		}
		return Single(row), nil
	case yaml.SequenceNode:
		if len(root.Content) == 0 {
			return Input{}, errors.Wrap(ErrEmptyInput, "empty batch")
		}
		rows := make([]Row, 0, len(root.Content))
		for i, n := range root.Content {
			if n.Kind != yaml.MappingNode {
				return Input{}, errors.Wrapf(ErrInvalidShape, "element %d (line %d) is not an object", i, n.Line)
			}
			row, err := rowFromNode(n)
			if err != nil {
				return Input{}, errors.WithMessagef(err, "element %d", i)
			}
			rows = append(rows, row)
		}
		return Batch(rows...), nil
	}
	return Input{}, errors.Wrapf(ErrInvalidShape, "top-level value (line %d) is neither an object nor an array", root.Line)
}

func rowFromNode(n *yaml.Node) (Row, error) {
	r := Row{cols: make([]string, 0, len(n.Content)/2), vals: make([]any, 0, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind == yaml.MappingNode || v.Kind == yaml.SequenceNode {
			return Row{}, errors.Wrapf(ErrInvalidShape, "column %q (line %d) holds a nested value", k.Value, v.Line)
		}
		var val any
		if err := v.Decode(&val); err != nil {
			return Row{}, errors.Wrapf(err, "column %q", k.Value)
		}
		if err := r.add(k.Value, val); err != nil {
			return Row{}, errors.WithMessagef(err, "line %d", k.Line)
		}
	}
	return r, nil
}
