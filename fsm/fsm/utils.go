package fsm

import (
	"bytes"
	"fmt"
	"sort"
)

// Visualize renders the machine transitions in graphviz dot format.
// Transitions leaving the current state come first.
func Visualize(fsm *FSM) string {
	var buf bytes.Buffer

	keys := make([]trKey, 0, len(fsm.transitions))
	for k := range fsm.transitions {
		keys = append(keys, k)
	}
	current := fsm.State()
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i].source == current) != (keys[j].source == current) {
			return keys[i].source == current
		}
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		return keys[i].event < keys[j].event
	})

	buf.WriteString("digraph fsm {\n")

	states := make(map[State]bool)
	for _, k := range keys {
		v := fsm.transitions[k]
		states[k.source] = true
		states[v.dstState] = true
		buf.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [ label = \"%s\" ];\n", k.source, v.dstState, k.event))
	}

	buf.WriteString("\n")

	sorted := make([]State, 0, len(states))
	for s := range states {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, s := range sorted {
		buf.WriteString(fmt.Sprintf("    \"%s\";\n", s))
	}
	buf.WriteString("}\n")

	return buf.String()
}
