package graph

// Relations holds the parent and children maps of one window.
type Relations struct {
	// Parents maps every window commit to its raw, ordered parent list,
	// including parents that are outside the window.
	Parents map[string][]string

	// Children maps window commits to their in-window children, in window
	// order. Commits outside the window never get an entry.
	Children map[string][]string
}

// InWindow reports whether id is one of the window's commits.
func (r Relations) InWindow(id string) bool {
	_, ok := r.Parents[id]
	return ok
}

// MapRelationships derives the parent and children maps from the window alone.
func MapRelationships(window []WindowCommit) Relations {
	rel := Relations{
		Parents:  make(map[string][]string, len(window)),
		Children: make(map[string][]string, len(window)),
	}
	for _, c := range window {
		rel.Parents[c.ID] = c.Parents
	}

	for _, c := range window {
		for _, p := range c.Parents {
			if !rel.InWindow(p) {
				continue
			}
			rel.Children[p] = append(rel.Children[p], c.ID)
		}
	}
	return rel
}
