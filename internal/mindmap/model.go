package mindmap

import (
	"fmt"
	"strings"
)

// Mindmap is one central topic with branches of leaf topics.
type Mindmap struct {
	CentralTopic string   `json:"central_topic"`
	Branches     []Branch `json:"branches"`
}

type Branch struct {
	Topic    string `json:"topic"`
	Children []Leaf `json:"children"`
}

type Leaf struct {
	Topic string `json:"topic"`
}

// Validate reports the first empty topic, if any.
func (m Mindmap) Validate() error {
	if strings.TrimSpace(m.CentralTopic) == "" {
		return fmt.Errorf("%w: central_topic must be a non-empty string", ErrSchemaMismatch)
	}
	for i, b := range m.Branches {
		if strings.TrimSpace(b.Topic) == "" {
			return fmt.Errorf("%w: branches[%d].topic must be a non-empty string", ErrSchemaMismatch, i)
		}
		for j, leaf := range b.Children {
			if strings.TrimSpace(leaf.Topic) == "" {
				return fmt.Errorf("%w: branches[%d].children[%d].topic must be a non-empty string", ErrSchemaMismatch, i, j)
			}
		}
	}
	return nil
}

// Count returns the number of branches and leaves.
func (m Mindmap) Count() (branches, leaves int) {
	for _, b := range m.Branches {
		leaves += len(b.Children)
	}
	return len(m.Branches), leaves
}
