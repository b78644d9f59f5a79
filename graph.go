package padseq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

type (
	// NodeID identifies a node within a NodeGraphSpec. Integer ids in the wire
	// format are kept in their decimal form.
	NodeID string

	// NodeKind is the type of processing unit a node instantiates, e.g.
	// "oscillator" or "gain". Kinds not listed in NodeKinds can be decoded, but
	// fail to validate.
	NodeKind string

	// NodeGraphSpec is a declarative description of a signal processing
	// network. Each node routes its output to exactly one target: the final
	// mix, the signal input of another node or a parameter of another node.
	// A valid spec is acyclic and all targets exist.
	NodeGraphSpec map[NodeID]NodeSpec

	// NodeSpec describes one node. The kind can also be given with the key
	// "node" in the wire format.
	NodeSpec struct {
		Kind   NodeKind         `yaml:"kind" json:"kind"`
		Output OutputTarget     `yaml:"output" json:"output"`
		Params map[string]Param `yaml:"params,omitempty" json:"params,omitempty"`
	}

	// Param is a parameter value before compilation: either a plain number or
	// an arithmetic expression over the compile time bindings, e.g.
	// "frequency * 2 * (4 - gain) / 4".
	Param struct {
		Value float64
		Expr  string
	}

	// TargetKind tells which variant an OutputTarget holds.
	TargetKind int

	// OutputTarget is where a node sends its signal. The zero value is the
	// final mix.
	OutputTarget struct {
		kind  TargetKind
		node  NodeID
		param string
	}

	// NodeParameter documents one parameter of a node kind.
	NodeParameter struct {
		Name        string
		Default     float64
		CanModulate bool // if the parameter can be the destination of a parameter modulation
	}

	// NodeType documents a node kind: whether it processes a signal input and
	// what parameters it takes.
	NodeType struct {
		Input      bool
		Parameters []NodeParameter
	}
)

const (
	TargetFinalMix TargetKind = iota
	TargetNodeInput
	TargetParameter
)

const (
	Oscillator NodeKind = "oscillator"
	Gain       NodeKind = "gain"
	Filter     NodeKind = "filter"
	Constant   NodeKind = "constant"
)

// Oscillator waveforms and filter responses, as the numeric values of the
// "type" parameter. The names can be used in expressions of a "type" param.
const (
	Sine = iota
	Square
	Sawtooth
	Triangle
)

const (
	Lowpass = iota
	Highpass
	Bandpass
)

// WaveformNames and FilterTypeNames map the names usable in a "type" param to
// their numeric values.
var (
	WaveformNames   = map[string]int{"sine": Sine, "square": Square, "sawtooth": Sawtooth, "triangle": Triangle}
	FilterTypeNames = map[string]int{"lowpass": Lowpass, "highpass": Highpass, "bandpass": Bandpass}
)

// finalMixName is the sentinel used in the wire format for the final mix.
const finalMixName = "output"

// NodeKinds documents all the available node kinds.
var NodeKinds = map[NodeKind]NodeType{
	Oscillator: {Parameters: []NodeParameter{
		{Name: "type", Default: Sine},
		{Name: "frequency", Default: 440, CanModulate: true},
		{Name: "detune", Default: 0, CanModulate: true},
		{Name: "startTime", Default: 0},
		{Name: "stopTime", Default: math.Inf(1)}}},
	Gain: {Input: true, Parameters: []NodeParameter{
		{Name: "gain", Default: 1, CanModulate: true}}},
	Filter: {Input: true, Parameters: []NodeParameter{
		{Name: "type", Default: Lowpass},
		{Name: "frequency", Default: 350, CanModulate: true},
		{Name: "q", Default: 1, CanModulate: true}}},
	Constant: {Parameters: []NodeParameter{
		{Name: "offset", Default: 1, CanModulate: true},
		{Name: "startTime", Default: 0},
		{Name: "stopTime", Default: math.Inf(1)}}},
}

// Parameter finds the documentation of the named parameter of the kind.
func (k NodeKind) Parameter(name string) (NodeParameter, bool) {
	t, ok := NodeKinds[k]
	if !ok {
		return NodeParameter{}, false
	}
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return NodeParameter{}, false
}

func FinalMix() OutputTarget { return OutputTarget{} }

func NodeInput(id NodeID) OutputTarget {
	return OutputTarget{kind: TargetNodeInput, node: id}
}

func ParameterModulation(id NodeID, param string) OutputTarget {
	return OutputTarget{kind: TargetParameter, node: id, param: param}
}

func (t OutputTarget) Kind() TargetKind { return t.kind }

// Node returns the target node; empty for the final mix.
func (t OutputTarget) Node() NodeID { return t.node }

// Param returns the modulated parameter of a TargetParameter.
func (t OutputTarget) Param() string { return t.param }

func (t OutputTarget) String() string {
	switch t.kind {
	case TargetNodeInput:
		return string(t.node)
	case TargetParameter:
		return fmt.Sprintf("%s.%s", t.node, t.param)
	}
	return finalMixName
}

func parseTarget(key, destination string) OutputTarget {
	switch {
	case destination != "":
		return ParameterModulation(NodeID(key), destination)
	case key == finalMixName:
		return FinalMix()
	}
	return NodeInput(NodeID(key))
}

// UnmarshalYAML accepts "output", a node id, a one element list of either, or
// a mapping {key: <node id>, destination: <parameter>}.
func (t *OutputTarget) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = parseTarget(n.Value, "")
		return nil
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return fmt.Errorf("line %d: output list must have exactly one element, got %d", n.Line, len(n.Content))
		}
		return t.UnmarshalYAML(n.Content[0])
	case yaml.MappingNode:
		var key, dest string
		for i := 0; i+1 < len(n.Content); i += 2 {
			switch n.Content[i].Value {
			case "key":
				key = n.Content[i+1].Value
			case "destination":
				dest = n.Content[i+1].Value
			default:
				return fmt.Errorf("line %d: unknown output field %q", n.Content[i].Line, n.Content[i].Value)
			}
		}
		if key == "" {
			return fmt.Errorf("line %d: output mapping has no key", n.Line)
		}
		*t = parseTarget(key, dest)
		return nil
	}
	return fmt.Errorf("line %d: cannot decode output target", n.Line)
}

func (t OutputTarget) MarshalYAML() (any, error) {
	if t.kind == TargetParameter {
		return map[string]string{"key": string(t.node), "destination": t.param}, nil
	}
	return t.String(), nil
}

func (t *OutputTarget) UnmarshalJSON(b []byte) error {
	var v any
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return err
	}
	if l, ok := v.([]any); ok {
		if len(l) != 1 {
			return fmt.Errorf("output list must have exactly one element, got %d", len(l))
		}
		v = l[0]
	}
	switch x := v.(type) {
	case string:
		*t = parseTarget(x, "")
	case json.Number:
		*t = NodeInput(NodeID(x.String()))
	case map[string]any:
		key, ok := jsonScalar(x["key"])
		if !ok {
			return fmt.Errorf("output mapping has no key")
		}
		dest, _ := x["destination"].(string)
		*t = parseTarget(key, dest)
	default:
		return fmt.Errorf("cannot decode output target %s", b)
	}
	return nil
}

func (t OutputTarget) MarshalJSON() ([]byte, error) {
	v, _ := t.MarshalYAML()
	return json.Marshal(v)
}

func jsonScalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	}
	return "", false
}

// Number returns a constant param.
func Number(v float64) Param { return Param{Value: v} }

// Expr returns a param evaluated from the bindings at compile time.
func Expr(e string) Param { return Param{Expr: e} }

func (p Param) IsExpr() bool { return p.Expr != "" }

func (p Param) String() string {
	if p.IsExpr() {
		return p.Expr
	}
	return strconv.FormatFloat(p.Value, 'g', -1, 64)
}

func (p *Param) set(s string) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*p = Number(v)
		return
	}
	*p = Expr(s)
}

func (p *Param) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: param must be a number or an expression", n.Line)
	}
	p.set(n.Value)
	return nil
}

func (p Param) MarshalYAML() (any, error) {
	if p.IsExpr() {
		return p.Expr, nil
	}
	return p.Value, nil
}

func (p *Param) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		p.set(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("param must be a number or an expression: %w", err)
	}
	*p = Number(v)
	return nil
}

func (p Param) MarshalJSON() ([]byte, error) {
	if p.IsExpr() {
		return json.Marshal(p.Expr)
	}
	return json.Marshal(p.Value)
}

type nodeSpecWire struct {
	Kind   NodeKind         `yaml:"kind" json:"kind"`
	Node   NodeKind         `yaml:"node" json:"node"`
	Output OutputTarget     `yaml:"output" json:"output"`
	Params map[string]Param `yaml:"params" json:"params"`
}

func (w nodeSpecWire) spec() NodeSpec {
	kind := w.Kind
	if kind == "" {
		kind = w.Node
	}
	return NodeSpec{Kind: kind, Output: w.Output, Params: w.Params}
}

func (s *NodeSpec) UnmarshalYAML(n *yaml.Node) error {
	var w nodeSpecWire
	if err := n.Decode(&w); err != nil {
		return err
	}
	*s = w.spec()
	return nil
}

func (s *NodeSpec) UnmarshalJSON(b []byte) error {
	var w nodeSpecWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = w.spec()
	return nil
}

// UnmarshalYAML reads the node ids as written, so that 0 and "0" are the same
// node.
func (g *NodeGraphSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: node graph must be a mapping", n.Line)
	}
	ret := make(NodeGraphSpec, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		id := NodeID(n.Content[i].Value)
		if _, ok := ret[id]; ok {
			return fmt.Errorf("line %d: duplicate node id %q", n.Content[i].Line, id)
		}
		var s NodeSpec
		if err := n.Content[i+1].Decode(&s); err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
		ret[id] = s
	}
	*g = ret
	return nil
}

// IDs returns the node ids in a stable order: numeric ids first, in numeric
// order, then the rest alphabetically.
func (g NodeGraphSpec) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b NodeID) int {
	x, errA := strconv.Atoi(string(a))
	y, errB := strconv.Atoi(string(b))
	switch {
	case errA == nil && errB == nil:
		return x - y
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Validate checks that all nodes have known kinds and known parameters, that
// all output targets exist and accept the signal, and that the routing is
// acyclic.
func (g NodeGraphSpec) Validate() error {
	_, err := g.TopologicalOrder()
	return err
}

func (g NodeGraphSpec) checkNodes() error {
	ids := g.IDs()
	for _, id := range ids {
		s := g[id]
		if _, ok := NodeKinds[s.Kind]; !ok {
			return &UnknownNodeKindError{Node: id, Kind: s.Kind}
		}
	}
	for _, id := range ids {
		s := g[id]
		for name := range s.Params {
			if _, ok := s.Kind.Parameter(name); !ok {
				return &InvalidGraphError{Node: id, Reason: fmt.Sprintf("%s has no parameter %q", s.Kind, name)}
			}
		}
		out := s.Output
		if out.kind == TargetFinalMix {
			continue
		}
		target, ok := g[out.node]
		if !ok {
			return &InvalidGraphError{Node: id, Reason: fmt.Sprintf("output target %q does not exist", out.node)}
		}
		switch out.kind {
		case TargetNodeInput:
			if !NodeKinds[target.Kind].Input {
				return &InvalidGraphError{Node: id, Reason: fmt.Sprintf("target %q (%s) has no signal input", out.node, target.Kind)}
			}
		case TargetParameter:
			p, ok := target.Kind.Parameter(out.param)
			if !ok || !p.CanModulate {
				return &InvalidGraphError{Node: id, Reason: fmt.Sprintf("target %q (%s) has no modulatable parameter %q", out.node, target.Kind, out.param)}
			}
		}
	}
	return nil
}

// TopologicalOrder validates the graph and returns the node ids ordered so that
// every node comes before the node it outputs to. Ties are broken by the order
// of IDs, so the result is deterministic.
func (g NodeGraphSpec) TopologicalOrder() ([]NodeID, error) {
	if err := g.checkNodes(); err != nil {
		return nil, err
	}
	ids := g.IDs()
	indegree := make(map[NodeID]int, len(ids))
	for _, id := range ids {
		if out := g[id].Output; out.kind != TargetFinalMix {
			indegree[out.node]++
		}
	}
	var ready []NodeID
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]NodeID, 0, len(ids))
	for len(ready) > 0 {
		slices.SortFunc(ready, compareIDs)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		if out := g[id].Output; out.kind != TargetFinalMix {
			indegree[out.node]--
			if indegree[out.node] == 0 {
				ready = append(ready, out.node)
			}
		}
	}
	if len(order) < len(ids) {
		for _, id := range ids {
			if indegree[id] > 0 {
				return nil, &InvalidGraphError{Node: id, Reason: "output routing forms a cycle"}
			}
		}
	}
	return order, nil
}
