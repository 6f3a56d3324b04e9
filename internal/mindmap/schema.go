package mindmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type wireMindmap struct {
	CentralTopic *string       `json:"central_topic"`
	Branches     *[]wireBranch `json:"branches"`
}

type wireBranch struct {
	Topic    *string     `json:"topic"`
	Children *[]wireLeaf `json:"children"`
}

type wireLeaf struct {
	Topic *string `json:"topic"`
}

// ParseStrict decodes raw into a Mindmap, requiring every field with the
// right type and rejecting unknown keys.
func ParseStrict(raw []byte) (Mindmap, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var wire wireMindmap
	if err := dec.Decode(&wire); err != nil {
		return Mindmap{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Mindmap{}, fmt.Errorf("%w: trailing data after object", ErrSchemaMismatch)
	}

	if wire.CentralTopic == nil {
		return Mindmap{}, fmt.Errorf("%w: central_topic is required", ErrSchemaMismatch)
	}
	if wire.Branches == nil {
		return Mindmap{}, fmt.Errorf("%w: branches is required", ErrSchemaMismatch)
	}

	m := Mindmap{
		CentralTopic: *wire.CentralTopic,
		Branches:     make([]Branch, 0, len(*wire.Branches)),
	}
	for i, wb := range *wire.Branches {
		if wb.Topic == nil {
			return Mindmap{}, fmt.Errorf("%w: branches[%d].topic is required", ErrSchemaMismatch, i)
		}
		if wb.Children == nil {
			return Mindmap{}, fmt.Errorf("%w: branches[%d].children is required", ErrSchemaMismatch, i)
		}
		b := Branch{Topic: *wb.Topic, Children: make([]Leaf, 0, len(*wb.Children))}
		for j, wl := range *wb.Children {
			if wl.Topic == nil {
				return Mindmap{}, fmt.Errorf("%w: branches[%d].children[%d].topic is required", ErrSchemaMismatch, i, j)
			}
			b.Children = append(b.Children, Leaf{Topic: *wl.Topic})
		}
		m.Branches = append(m.Branches, b)
	}

	if err := m.Validate(); err != nil {
		return Mindmap{}, err
	}
	return m, nil
}
