package integrators

var eulerTableau = Tableau{
	Name:  "euler",
	Order: 1,
	C:     []float64{0},
	A:     [][]float64{{}},
	B:     []float64{1},
}

func NewEuler() *Explicit {
	return NewExplicit(&eulerTableau)
}
