package circuit

import (
	"fmt"
	"strings"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

type Topology int

const (
	Series Topology = iota
	Parallel
)

func (t Topology) String() string {
	switch t {
	case Series:
		return "series"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("topology(%d)", int(t))
	}
}

func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "series":
		return Series, nil
	case "parallel":
		return Parallel, nil
	}
	return 0, fmt.Errorf("unknown topology %q (want series or parallel)", s)
}

func (t Topology) MarshalText() ([]byte, error) {
	if t != Series && t != Parallel {
		return nil, fmt.Errorf("invalid topology %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Topology) UnmarshalText(b []byte) error {
	v, err := ParseTopology(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SourceUnit is the unit of the forcing magnitude for the topology.
func (t Topology) SourceUnit() string {
	if t == Parallel {
		return "A"
	}
	return "V"
}

type Excitation int

const (
	Natural Excitation = iota
	Step
)

func (e Excitation) String() string {
	switch e {
	case Natural:
		return "natural"
	case Step:
		return "step"
	default:
		return fmt.Sprintf("excitation(%d)", int(e))
	}
}

func ParseExcitation(s string) (Excitation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural":
		return Natural, nil
	case "step":
		return Step, nil
	}
	return 0, fmt.Errorf("unknown excitation %q (want natural or step)", s)
}

func (e Excitation) MarshalText() ([]byte, error) {
	if e != Natural && e != Step {
		return nil, fmt.Errorf("invalid excitation %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *Excitation) UnmarshalText(b []byte) error {
	v, err := ParseExcitation(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// InitialState holds the physical initial conditions. Their position in the
// state vector depends on the topology.
type InitialState struct {
	IL float64 `yaml:"i_l" json:"i_l"`
	VC float64 `yaml:"v_c" json:"v_c"`
}

// Pack orders the initial conditions the way the topology's system expects.
func (s InitialState) Pack(t Topology) dynamo.State {
	if t == Parallel {
		return dynamo.State{s.VC, s.IL}
	}
	return dynamo.State{s.IL, s.VC}
}

// Unpack returns (i_L, v_C) from a state vector of topology t.
func Unpack(t Topology, x dynamo.State) (iL, vC float64) {
	if t == Parallel {
		return x[1], x[0]
	}
	return x[0], x[1]
}
