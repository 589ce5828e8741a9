package instance

import (
	"errors"
	"fmt"
	"slices"
)

// Owner errors.
var (
	ErrNoOwner        = errors.New("no owner set")
	ErrAmbiguousOwner = errors.New("more than one owner set")
)

// Owner is the single populated case of an exclusive group of
// relationships, e.g. an event acted by either a person or an
// organisation.
type Owner struct {
	Property string
	Target   string
}

// Owner returns the one edge from nodeID whose type is among properties.
func (g *Graph) Owner(nodeID string, properties ...string) (Owner, error) {
	var found []Owner
	for _, e := range g.EdgesFrom(nodeID) {
		if slices.Contains(properties, e.Type) {
			found = append(found, Owner{Property: e.Type, Target: e.To})
		}
	}
	switch len(found) {
	case 0:
		return Owner{}, fmt.Errorf("node %s: %w among %v", nodeID, ErrNoOwner, properties)
	case 1:
		return found[0], nil
	default:
		return Owner{}, fmt.Errorf("node %s: %w: %d edges among %v", nodeID, ErrAmbiguousOwner, len(found), properties)
	}
}
