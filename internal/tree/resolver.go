package tree

// ChildLister returns the ids of the direct children of any of the given
// folders. Implementations must already be scoped to a single facility.
type ChildLister interface {
	ListChildIDs(parentIDs []string) ([]string, error)
}

// Descendants resolves the complete descendant set of rootID, excluding the
// root itself, by iterative level-by-level expansion: fetch the children of
// the current frontier, make them the next frontier, repeat until a level
// comes back empty. No recursive query support is assumed of the store.
//
// maxLevels bounds the walk; a tree deeper than the configured depth limit
// can only mean a cycle or corrupted parent links, reported as
// ErrCorruptTree. Ids are returned in breadth-first order.
func Descendants(rootID string, maxLevels int, lister ChildLister) ([]string, error) {
	var (
		result  []string
		visited = map[string]struct{}{rootID: {}}
	)
	frontier := []string{rootID}
	for level := 0; len(frontier) > 0; level++ {
		if level >= maxLevels {
			return nil, ErrCorruptTree
		}
		children, err := lister.ListChildIDs(frontier)
		if err != nil {
			return nil, err
		}
		next := make([]string, 0, len(children))
		for _, id := range children {
			if _, seen := visited[id]; seen {
				return nil, ErrCorruptTree
			}
			visited[id] = struct{}{}
			next = append(next, id)
		}
		result = append(result, next...)
		frontier = next
	}
	return result, nil
}
