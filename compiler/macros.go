package compiler

import (
	"github.com/padseq/padseq"
	"github.com/padseq/padseq/vm"
)

// Macros is the data given to the templates.
type Macros struct {
	Name       string
	SampleRate int
	Units      []vm.UnitInfo
	StopTime   float64
}

func NewMacros(name string, g *vm.Graph) *Macros {
	m := &Macros{Name: name, SampleRate: g.SampleRate(), StopTime: g.StopTime()}
	for i := 0; i < g.Len(); i++ {
		m.Units = append(m.Units, g.Unit(i))
	}
	return m
}

// Names returns the node ids of the units at indices.
func (m *Macros) Names(indices []int) []string {
	ret := make([]string, len(indices))
	for i, j := range indices {
		ret[i] = string(m.Units[j].ID)
	}
	return ret
}

// Modulates reports if the unit drives a parameter of its target.
func (m *Macros) Modulates(u vm.UnitInfo) bool {
	return u.Output.Kind() == padseq.TargetParameter
}

// Modulated returns the parameters of the unit that have modulators.
func (m *Macros) Modulated(u vm.UnitInfo) []vm.ParamInfo {
	var ret []vm.ParamInfo
	for _, p := range u.Params {
		if len(p.Modulators) > 0 {
			ret = append(ret, p)
		}
	}
	return ret
}
