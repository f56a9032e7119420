// Package diagnostic turns solved contradictions into user-facing
// reports: one flow per contradiction node (the nil path from the
// Nullable singleton, and the non-null path from the contradiction node
// to the NonNull singleton), grouped when multiple contradictions share
// the same flow, and optionally colorized for a terminal (spec.md
// section 4.5's "Contradiction" output plus the ambient presentation
// concerns this module needs as a complete CLI tool).
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/solver"
)

// FlowStep is one edge along a reported path, reduced to what a
// diagnostic message needs: where it was introduced and a short
// provenance label (spec.md section 3's Edge.Label, e.g. "assign",
// "deref", "arg:out").
type FlowStep struct {
	Loc   lang.Location
	Label string
}

func (s FlowStep) String() string {
	pos := "<synthesized>"
	if s.Loc.IsValid() {
		pos = s.Loc.String()
	}
	return fmt.Sprintf("\t- %s: %s", pos, s.Label)
}

func stepsFromEdges(edges []*node.Edge) []FlowStep {
	steps := make([]FlowStep, len(edges))
	for i, e := range edges {
		steps[i] = FlowStep{Loc: e.Loc, Label: e.Label}
	}
	return steps
}

// Contradiction is a single node the solver classified as both
// forced-nullable and forced-non-null, together with one witness path in
// each direction and any other contradictions whose flow is identical
// (see Group).
type Contradiction struct {
	ID       string
	Node     *node.Node
	NilPath  []FlowStep // Nullable singleton -> node
	LivePath []FlowStep // node -> NonNull singleton
	Similar  []*Contradiction
}

func (c *Contradiction) flowKey() string {
	var b strings.Builder
	for _, s := range c.NilPath {
		b.WriteString(s.Loc.String())
		b.WriteByte(';')
		b.WriteString(s.Label)
		b.WriteByte('|')
	}
	b.WriteString(">>")
	for _, s := range c.LivePath {
		b.WriteString(s.Loc.String())
		b.WriteByte(';')
		b.WriteString(s.Label)
		b.WriteByte('|')
	}
	return b.String()
}

// position is the location a contradiction is reported at: the last step
// of its non-null path, i.e. the point forcing non-nullness, falling back
// to the first nil-path step when the non-null path is empty (no path to
// the NonNull singleton was found).
func (c *Contradiction) position() lang.Location {
	if len(c.LivePath) > 0 {
		return c.LivePath[len(c.LivePath)-1].Loc
	}
	if len(c.NilPath) > 0 {
		return c.NilPath[0].Loc
	}
	return lang.Location{}
}

// String renders a contradiction as a multi-line flow, in the teacher's
// "Potential nil panic... Observed nil flow" register, adapted to name a
// contradiction rather than a dereference-time nil panic since this
// module reports at build time over the whole flow graph rather than at
// one AST dereference site.
func (c *Contradiction) String() string {
	var b strings.Builder
	b.WriteString("Contradictory nullability requirement detected. Observed flow forcing nullable:\n")
	for _, s := range c.NilPath {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	b.WriteString("Observed flow forcing non-null:\n")
	for _, s := range c.LivePath {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	if len(c.Similar) > 0 {
		positions := make([]string, len(c.Similar))
		for i, s := range c.Similar {
			positions[i] = s.position().String()
		}
		b.WriteString(fmt.Sprintf("\n(Same contradiction also reported at %d other place(s): %s.)\n",
			len(c.Similar), strings.Join(positions, ", ")))
	}
	return b.String()
}

// Collect builds one Contradiction per node r.Contradictions reports,
// each carrying a witness path reconstructed with solver.Path.
// nullableSource and nonNullSink must be the graph's Nullable and NonNull
// singletons; Collect takes them explicitly since a solver.Result does
// not retain a reference back to the graph it was computed from.
func Collect(r *solver.Result, nullableSource, nonNullSink *node.Node) []*Contradiction {
	contradictions := r.Contradictions()
	out := make([]*Contradiction, 0, len(contradictions))
	for _, n := range contradictions {
		nilPath, _ := solver.Path(nullableSource, n)
		livePath, _ := solver.Path(n, nonNullSink)
		out = append(out, &Contradiction{
			ID:       uuid.NewString(),
			Node:     n,
			NilPath:  stepsFromEdges(nilPath),
			LivePath: stepsFromEdges(livePath),
		})
	}
	return out
}

// Group merges contradictions that share an identical flow key into the
// first one encountered, recording the rest as Similar (spec.md's ambient
// presentation concerns, mirroring the teacher's groupConflicts so that
// the same underlying bug reported at many call sites produces one
// primary diagnostic instead of a wall of duplicates).
func Group(all []*Contradiction) []*Contradiction {
	seen := make(map[string]*Contradiction, len(all))
	var out []*Contradiction
	for _, c := range all {
		key := c.flowKey()
		if primary, ok := seen[key]; ok {
			primary.Similar = append(primary.Similar, c)
			continue
		}
		seen[key] = c
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].position(), out[j].position()
		if pi.File != pj.File {
			return pi.File < pj.File
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
	return out
}

// ansi wraps s in the given SGR code when color is enabled.
func ansi(color bool, code, s string) string {
	if !color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Render formats contradictions for display, one per paragraph, preceded
// by a bold position header. color enables ANSI styling; callers
// typically pass isatty.IsTerminal on the destination file descriptor
// (see ShouldColor) rather than forcing it unconditionally, matching the
// teacher's CLI's general deference to terminal detection for pretty
// output.
func Render(contradictions []*Contradiction, color bool) string {
	var b strings.Builder
	for i, c := range contradictions {
		if i > 0 {
			b.WriteByte('\n')
		}
		pos := c.position()
		header := pos.String()
		if !pos.IsValid() {
			header = "<no position>"
		}
		b.WriteString(ansi(color, "1", header))
		b.WriteString(": ")
		b.WriteString(ansi(color, "31", "contradiction"))
		b.WriteByte('\n')
		b.WriteString(c.String())
	}
	return b.String()
}

// ShouldColor reports whether fd (an *os.File's Fd()) refers to a
// terminal, the signal this module uses to decide whether Render should
// emit ANSI escapes (spec.md's ambient presentation concerns; grounded on
// the pack's github.com/mattn/go-isatty, the common way Go CLIs make this
// decision rather than hand-rolling a terminal probe).
func ShouldColor(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
