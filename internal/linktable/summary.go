package linktable

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Summary counts the links of a table by status.
type Summary struct {
	Total      int
	Active     int
	Corridors  int
	Components int
	WithinCore int
	ByType     map[types.LinkType]int
}

// Summarize tallies t.
func (t *Table) Summarize() Summary {
	s := Summary{Total: len(t.links), ByType: make(map[types.LinkType]int)}
	for _, r := range t.links {
		s.ByType[r.Type]++
		switch r.Type {
		case types.LinkCorridor:
			s.Corridors++
		case types.LinkComponent:
			s.Components++
		case types.LinkWithinCore:
			s.WithinCore++
		}
		if r.Type.Active() {
			s.Active++
		}
	}
	return s
}

// Dropped returns the number of inactive links.
func (s Summary) Dropped() int { return s.Total - s.Active }

// String renders the report shown after each step.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "There are %d links in the table.\n", s.Total)
	switch {
	case s.Components > 0:
		fmt.Fprintf(&b, "This includes %d potential corridor links and %d component links.\n", s.Corridors, s.Components)
	case s.Corridors > 0:
		fmt.Fprintf(&b, "This includes %d potential corridor links.\n", s.Corridors)
	default:
		b.WriteString("***NOTE: There are NO corridors to map!\n")
	}
	if s.Dropped() > 0 {
		codes := make([]types.LinkType, 0, len(s.ByType))
		for lt := range s.ByType {
			if !lt.Active() {
				codes = append(codes, lt)
			}
		}
		slices.Sort(codes)
		fmt.Fprintf(&b, "%d links are inactive:\n", s.Dropped())
		for _, lt := range codes {
			fmt.Fprintf(&b, "  %-28s %d\n", lt.String(), s.ByType[lt])
		}
	}
	b.WriteString("---------------------\n")
	return b.String()
}
