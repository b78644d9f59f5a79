package padseq

import "fmt"

type (
	// EmptyScaleError is returned when a pitch is looked up from a scale with
	// no degrees.
	EmptyScaleError struct{}

	// InvalidGraphError is returned when a NodeGraphSpec cannot be compiled:
	// a routing target does not exist, the routing forms a cycle, or a
	// parameter cannot be resolved. Node is the node where the problem was
	// detected.
	InvalidGraphError struct {
		Node   NodeID
		Reason string
	}

	// UnknownNodeKindError is returned when a node has a kind that the
	// compiler does not know how to instantiate.
	UnknownNodeKindError struct {
		Node NodeID
		Kind NodeKind
	}
)

func (*EmptyScaleError) Error() string { return "scale has no degrees" }

func (e *InvalidGraphError) Error() string {
	return fmt.Sprintf("invalid node graph at node %q: %s", e.Node, e.Reason)
}

func (e *UnknownNodeKindError) Error() string {
	return fmt.Sprintf("node %q has unknown kind %q", e.Node, e.Kind)
}
