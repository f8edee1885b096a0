// Package tree holds the pure tree algorithms of the document store: the
// materialized path builder and the breadth-first descendant resolver. Both
// operate through narrow lookup interfaces so the service layer can back
// them with scoped database queries and tests can back them with maps.
package tree

import (
	"errors"
	"strings"
)

// ErrCorruptTree reports an ancestry that violates the tree invariants,
// usually a cycle. It is an internal consistency failure, never a user
// error.
var ErrCorruptTree = errors.New("corrupt folder tree")

// Node is the minimal folder shape the algorithms need.
type Node struct {
	ID       string
	ParentID *string
	Name     string
}

// Lookup resolves a folder id to its node. It must return nil without an
// error when the id does not exist.
type Lookup func(id string) (*Node, error)

// BuildPath walks the parent chain from n to its root and joins the names
// with "/", root first. The stored path column is only a cache of this
// value; every structural mutation recomputes it through here.
//
// A visited set guards the walk: if the chain revisits a node or refers to a
// missing parent, BuildPath fails with ErrCorruptTree instead of looping.
func BuildPath(n *Node, lookup Lookup) (string, error) {
	if n == nil {
		return "", ErrCorruptTree
	}
	names := []string{n.Name}
	visited := map[string]struct{}{n.ID: {}}
	current := n
	for current.ParentID != nil {
		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			return "", ErrCorruptTree
		}
		parent, err := lookup(parentID)
		if err != nil {
			return "", err
		}
		if parent == nil {
			return "", ErrCorruptTree
		}
		visited[parentID] = struct{}{}
		names = append(names, parent.Name)
		current = parent
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/"), nil
}
