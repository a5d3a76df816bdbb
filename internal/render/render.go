// Package render draws a commit graph as text, one row per commit.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/kurobon/gitgraph/internal/graph"
)

const (
	lineVertical  = "│"
	commitNormal  = "●"
	commitMerge   = "◎"
	commitInitial = "◆"
	empty         = " "

	maxSubject = 72
)

var laneColors = []lipgloss.Color{
	lipgloss.Color("#00D7FF"),
	lipgloss.Color("#AF87FF"),
	lipgloss.Color("#00FF87"),
	lipgloss.Color("#FFD700"),
	lipgloss.Color("#FF5F87"),
	lipgloss.Color("#5FD7FF"),
	lipgloss.Color("#FFD787"),
	lipgloss.Color("#87FFD7"),
}

var (
	idColor     = lipgloss.Color("#FFD700")
	refColor    = lipgloss.Color("#00FF87")
	authorColor = lipgloss.Color("#5FD7FF")
)

// Options controls how a graph is drawn.
type Options struct {
	Color  bool
	Author bool
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Renderer draws one graph.
type Renderer struct {
	graph *graph.CommitGraph
	opts  Options
	cells [][]string
}

// New lays out g for drawing.
func New(g *graph.CommitGraph, opts Options) *Renderer {
	r := &Renderer{graph: g, opts: opts}
	r.layout()
	return r
}

// Render returns the whole graph as text.
func Render(g *graph.CommitGraph, opts Options) string {
	return New(g, opts).String()
}

// Write renders g to w.
func Write(w io.Writer, g *graph.CommitGraph, opts Options) error {
	_, err := io.WriteString(w, Render(g, opts))
	return err
}

func (r *Renderer) String() string {
	var sb strings.Builder
	for i := range r.graph.Nodes {
		sb.WriteString(r.Row(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Row renders the i-th commit: lane glyphs, short id, refs and subject.
func (r *Renderer) Row(i int) string {
	node := r.graph.Nodes[i]

	var sb strings.Builder
	for lane, cell := range r.cells[i] {
		if lane > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(r.paint(cell, laneColors[lane%len(laneColors)]))
	}
	sb.WriteString("  ")
	sb.WriteString(r.paint(node.ShortID, idColor))
	if refs := decorate(node.Refs); refs != "" {
		sb.WriteString(" ")
		sb.WriteString(r.paint(refs, refColor))
	}
	sb.WriteString(" ")
	sb.WriteString(subject(node.Message))
	if r.opts.Author {
		sb.WriteString(" ")
		sb.WriteString(r.paint("<"+node.AuthorName+">", authorColor))
	}
	return sb.String()
}

// layout fills the glyph grid. Each edge draws a vertical line between its
// endpoints, in the child's lane for first parents and in the parent's lane
// for merge parents. Edges to commits outside the window run to the bottom.
func (r *Renderer) layout() {
	nodes := r.graph.Nodes
	width := r.graph.Width()

	row := make(map[string]int, len(nodes))
	r.cells = make([][]string, len(nodes))
	for i, n := range nodes {
		row[n.ID] = i
		r.cells[i] = make([]string, width)
		for lane := range r.cells[i] {
			r.cells[i][lane] = empty
		}
		r.cells[i][n.Lane] = marker(n)
	}

	for i, n := range nodes {
		for _, e := range n.Edges {
			end, ok := row[e.ToID]
			if !ok {
				end = len(nodes)
			}
			lane := e.FromLane
			if e.Kind == graph.EdgeMerge {
				lane = e.ToLane
			}
			for j := i + 1; j < end; j++ {
				if r.cells[j][lane] == empty {
					r.cells[j][lane] = lineVertical
				}
			}
		}
	}
}

func (r *Renderer) paint(s string, c lipgloss.Color) string {
	if !r.opts.Color || s == empty {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func marker(n graph.CommitNode) string {
	switch {
	case n.IsMerge:
		return commitMerge
	case len(n.Parents) == 0:
		return commitInitial
	}
	return commitNormal
}

// decorate formats refs the way git log --decorate does.
func decorate(refs []graph.RefAnnotation) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for i := 0; i < len(refs); i++ {
		ref := refs[i]
		switch ref.Kind {
		case graph.RefHead:
			if i+1 < len(refs) && refs[i+1].IsCurrentHead && refs[i+1].Kind == graph.RefBranch {
				parts = append(parts, "HEAD -> "+refs[i+1].Name)
				i++
				continue
			}
			parts = append(parts, "HEAD")
		case graph.RefTag:
			parts = append(parts, "tag: "+ref.Name)
		default:
			parts = append(parts, ref.Name)
		}
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func subject(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	if r := []rune(line); len(r) > maxSubject {
		return string(r[:maxSubject-3]) + "..."
	}
	return line
}
