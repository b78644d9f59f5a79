package vm

import (
	"fmt"
	"math"

	"github.com/padseq/padseq"
)

type (
	// Graph is a compiled NodeGraphSpec: an arena of processing units in
	// topological order, producers before the units they feed. Units refer to
	// each other only by their index in the arena.
	//
	// A Graph is owned by whoever compiled it and is not safe for concurrent
	// use.
	Graph struct {
		sampleRate float64
		units      []unit
		index      map[padseq.NodeID]int
		mix        []int // units routed to the final mix
	}

	unit struct {
		id     padseq.NodeID
		kind   padseq.NodeKind
		output padseq.OutputTarget
		target int // arena index of the output target, -1 for the final mix
		params map[string]padseq.Param
		values []float64   // in the order of padseq.NodeKinds[kind].Parameters
		mods   [][]int     // modulating units per parameter
		ctrl   [][]float32 // modulated parameter values for the current block
		inputs []int
		gated  bool
		start  float64
		stop   float64
		out    []float32
		phase  float64
		s1, s2 float64 // biquad state
	}

	// UnitInfo describes one compiled unit. Indices refer to Graph.Unit.
	UnitInfo struct {
		ID     padseq.NodeID
		Kind   padseq.NodeKind
		Output padseq.OutputTarget
		Target int // -1 for the final mix
		Inputs []int
		Params []ParamInfo
	}

	// ParamInfo is the compiled value of a parameter and the units that
	// modulate it; a modulated parameter is the sum of Value and the
	// modulators' signals.
	ParamInfo struct {
		Name       string
		Value      float64
		Modulators []int
	}
)

const blockSize = 128

// Compile validates the spec, evaluates its params with the bindings and
// instantiates one unit per node. All errors are detected before anything is
// allocated; graph errors are *padseq.InvalidGraphError or
// *padseq.UnknownNodeKindError.
func Compile(spec padseq.NodeGraphSpec, bindings Bindings, sampleRate int) (*Graph, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	order, err := spec.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(order))
	for i, id := range order {
		if values[i], err = evalParams(id, spec[id], bindings); err != nil {
			return nil, err
		}
	}
	g := &Graph{
		sampleRate: float64(sampleRate),
		units:      make([]unit, len(order)),
		index:      make(map[padseq.NodeID]int, len(order)),
	}
	for i, id := range order {
		g.index[id] = i
	}
	for i, id := range order {
		s := spec[id]
		n := len(padseq.NodeKinds[s.Kind].Parameters)
		g.units[i] = unit{
			id:     id,
			kind:   s.Kind,
			output: s.Output,
			target: -1,
			params: s.Params,
			values: values[i],
			mods:   make([][]int, n),
			ctrl:   make([][]float32, n),
			out:    make([]float32, blockSize),
		}
		g.units[i].gate()
	}
	for i := range g.units {
		u := &g.units[i]
		switch u.output.Kind() {
		case padseq.TargetFinalMix:
			g.mix = append(g.mix, i)
		case padseq.TargetNodeInput:
			u.target = g.index[u.output.Node()]
			t := &g.units[u.target]
			t.inputs = append(t.inputs, i)
		case padseq.TargetParameter:
			u.target = g.index[u.output.Node()]
			t := &g.units[u.target]
			p := paramIndex(t.kind, u.output.Param())
			t.mods[p] = append(t.mods[p], i)
			if t.ctrl[p] == nil {
				t.ctrl[p] = make([]float32, blockSize)
			}
		}
	}
	return g, nil
}

func paramIndex(kind padseq.NodeKind, name string) int {
	for i, p := range padseq.NodeKinds[kind].Parameters {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func evalParams(id padseq.NodeID, s padseq.NodeSpec, b Bindings) ([]float64, error) {
	params := padseq.NodeKinds[s.Kind].Parameters
	ret := make([]float64, len(params))
	for i, p := range params {
		ret[i] = p.Default
		v, ok := s.Params[p.Name]
		if !ok {
			continue
		}
		if !v.IsExpr() {
			ret[i] = v.Value
			continue
		}
		names := map[string]int(nil)
		if p.Name == "type" {
			names = padseq.WaveformNames
			if s.Kind == padseq.Filter {
				names = padseq.FilterTypeNames
			}
		}
		x, err := evalString(v.Expr, func(name string) (float64, bool) {
			if n, ok := names[name]; ok {
				return float64(n), true
			}
			x, ok := b[name]
			return x, ok
		})
		if err != nil {
			return nil, &padseq.InvalidGraphError{Node: id, Reason: fmt.Sprintf("param %s: %v", p.Name, err)}
		}
		ret[i] = x
	}
	return ret, nil
}

func (u *unit) gate() {
	u.gated = u.kind == padseq.Oscillator || u.kind == padseq.Constant
	if !u.gated {
		return
	}
	u.start = u.values[paramIndex(u.kind, "startTime")]
	u.stop = u.values[paramIndex(u.kind, "stopTime")]
}

// Update re-evaluates the params with new bindings, keeping the phase of the
// oscillators and the filter states, so the sound changes without
// retriggering. Start and stop times are not changed.
func (g *Graph) Update(bindings Bindings) error {
	values := make([][]float64, len(g.units))
	for i := range g.units {
		u := &g.units[i]
		v, err := evalParams(u.id, padseq.NodeSpec{Kind: u.kind, Output: u.output, Params: u.params}, bindings)
		if err != nil {
			return err
		}
		values[i] = v
	}
	for i := range g.units {
		g.units[i].values = values[i]
	}
	return nil
}

// Release moves the stop time of every source unit to at, if that is
// earlier than its current stop time.
func (g *Graph) Release(at float64) {
	for i := range g.units {
		if u := &g.units[i]; u.gated && at < u.stop {
			u.stop = at
		}
	}
}

// Done reports if all the sources of the graph have stopped by time t, so
// that the graph produces only silence from now on.
func (g *Graph) Done(t float64) bool {
	for i := range g.units {
		if u := &g.units[i]; u.gated && t < u.stop {
			return false
		}
	}
	return true
}

// StopTime returns the time when the last source of the graph stops, or
// +Inf if some source is held.
func (g *Graph) StopTime() float64 {
	ret := math.Inf(-1)
	for i := range g.units {
		if u := &g.units[i]; u.gated {
			ret = math.Max(ret, u.stop)
		}
	}
	return ret
}

// Order returns the node ids in the order the units are processed.
func (g *Graph) Order() []padseq.NodeID {
	ret := make([]padseq.NodeID, len(g.units))
	for i := range g.units {
		ret[i] = g.units[i].id
	}
	return ret
}

func (g *Graph) Len() int { return len(g.units) }

// Index returns the arena index of a node.
func (g *Graph) Index(id padseq.NodeID) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

func (g *Graph) Unit(i int) UnitInfo {
	u := &g.units[i]
	ret := UnitInfo{ID: u.id, Kind: u.kind, Output: u.output, Target: u.target, Inputs: append([]int(nil), u.inputs...)}
	for j, p := range padseq.NodeKinds[u.kind].Parameters {
		v := u.values[j]
		if u.gated && p.Name == "stopTime" {
			v = u.stop
		}
		ret.Params = append(ret.Params, ParamInfo{Name: p.Name, Value: v, Modulators: append([]int(nil), u.mods[j]...)})
	}
	return ret
}

func (g *Graph) SampleRate() int { return int(g.sampleRate) }
