package graph

// Assemble runs the relationship mapper and the lane engine over window and
// combines their output with refsByCommit into a CommitGraph. Commits that
// appear twice in window are kept only at their first position.
func Assemble(window []WindowCommit, refsByCommit map[string][]RefAnnotation) *CommitGraph {
	window = dedupe(window)
	rel := MapRelationships(window)

	order := make([]string, len(window))
	for i, c := range window {
		order[i] = c.ID
	}
	lanes := AssignLanes(order, rel)

	g := &CommitGraph{
		Nodes:        make([]CommitNode, 0, len(window)),
		TotalCommits: len(window),
		MaxLane:      lanes.Max,
	}
	for _, c := range window {
		g.Nodes = append(g.Nodes, buildNode(c, rel, lanes, refsByCommit[c.ID]))
	}
	return g
}

func buildNode(c WindowCommit, rel Relations, lanes Lanes, refs []RefAnnotation) CommitNode {
	lane := lanes.ByID[c.ID]
	children := rel.Children[c.ID]

	node := CommitNode{
		ID:              c.ID,
		ShortID:         ShortID(c.ID),
		Message:         c.Message,
		AuthorName:      c.AuthorName,
		AuthorEmail:     c.AuthorEmail,
		AuthorTimestamp: c.AuthorTimestamp,
		Parents:         copyIDs(c.Parents),
		Children:        copyIDs(children),
		Lane:            lane,
		IsMerge:         len(c.Parents) > 1,
		IsFork:          len(children) > 1,
		Refs:            refs,
		Edges:           make([]GraphEdge, 0, len(c.Parents)),
	}
	if node.Refs == nil {
		node.Refs = []RefAnnotation{}
	}

	for i, p := range c.Parents {
		edge := GraphEdge{
			FromID:   c.ID,
			ToID:     p,
			FromLane: lane,
			ToLane:   lane,
			Kind:     EdgeNormal,
		}
		if i > 0 {
			edge.Kind = EdgeMerge
		}
		if toLane, ok := lanes.ByID[p]; ok {
			edge.ToLane = toLane
		}
		node.Edges = append(node.Edges, edge)
	}
	return node
}

func dedupe(window []WindowCommit) []WindowCommit {
	seen := make(map[string]bool, len(window))
	out := window[:0:0]
	for _, c := range window {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

func copyIDs(ids []string) []string {
	return append(make([]string, 0, len(ids)), ids...)
}
