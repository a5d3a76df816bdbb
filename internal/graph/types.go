// Package graph turns a window of commits into a lane-annotated commit graph
// that a presentation layer can draw without further layout work.
package graph

import (
	"encoding/json"
	"fmt"
)

// ShortIDLength is the display truncation applied to commit identifiers.
const ShortIDLength = 7

// RefKind classifies a ref annotation. It is decided once by the annotator.
type RefKind int

const (
	RefBranch RefKind = iota
	RefRemoteBranch
	RefTag
	RefHead
)

var refKindNames = map[RefKind]string{
	RefBranch:       "branch",
	RefRemoteBranch: "remoteBranch",
	RefTag:          "tag",
	RefHead:         "head",
}

func (k RefKind) String() string {
	if name, ok := refKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RefKind(%d)", int(k))
}

func (k RefKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *RefKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range refKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown ref kind %q", s)
}

// EdgeKind distinguishes the first-parent line from merge lines.
type EdgeKind int

const (
	EdgeNormal EdgeKind = iota
	EdgeMerge
)

func (k EdgeKind) String() string {
	if k == EdgeMerge {
		return "merge"
	}
	return "normal"
}

func (k EdgeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EdgeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "normal":
		*k = EdgeNormal
	case "merge":
		*k = EdgeMerge
	default:
		return fmt.Errorf("unknown edge kind %q", s)
	}
	return nil
}

// RefAnnotation is a named pointer shown next to a commit.
type RefAnnotation struct {
	Name          string  `json:"name"`
	Kind          RefKind `json:"kind"`
	IsCurrentHead bool    `json:"isCurrentHead"`
}

// GraphEdge is one line from a commit to one of its parents.
// When the parent is not part of the window, ToLane equals FromLane.
type GraphEdge struct {
	FromID   string   `json:"fromId"`
	ToID     string   `json:"toId"`
	FromLane int      `json:"fromLane"`
	ToLane   int      `json:"toLane"`
	Kind     EdgeKind `json:"kind"`
}

// CommitNode is a commit with its layout information.
type CommitNode struct {
	ID              string          `json:"id"`
	ShortID         string          `json:"shortId"`
	Message         string          `json:"message"`
	AuthorName      string          `json:"authorName"`
	AuthorEmail     string          `json:"authorEmail"`
	AuthorTimestamp int64           `json:"authorTimestamp"`
	Parents         []string        `json:"parents"`
	Children        []string        `json:"children"`
	Lane            int             `json:"lane"`
	IsMerge         bool            `json:"isMerge"`
	IsFork          bool            `json:"isFork"`
	Refs            []RefAnnotation `json:"refs"`
	Edges           []GraphEdge     `json:"edges"`
}

// CommitGraph is the result of one construction call. Lane values are only
// meaningful within the graph that carries them.
type CommitGraph struct {
	Nodes        []CommitNode `json:"nodes"`
	TotalCommits int          `json:"totalCommits"`
	MaxLane      int          `json:"maxLane"`
}

// Width returns the number of lanes needed to draw the graph.
func (g *CommitGraph) Width() int {
	if len(g.Nodes) == 0 {
		return 0
	}
	return g.MaxLane + 1
}

// Node returns the node with the given id, or nil.
func (g *CommitGraph) Node(id string) *CommitNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// CommitMetadata is what the commit provider knows about a single commit.
type CommitMetadata struct {
	Parents         []string
	AuthorName      string
	AuthorEmail     string
	AuthorTimestamp int64
	Message         string
}

// WindowCommit pairs an identifier with its metadata, in traversal order.
type WindowCommit struct {
	ID string
	CommitMetadata
}

// ShortID truncates a commit identifier for display.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}
