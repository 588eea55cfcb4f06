package lattice

// Engine is the model-independent view of a Lattice. Every *Lattice[N, C]
// satisfies it, which lets callers hold lattices of different models side
// by side.
type Engine interface {
	Build(periods int) error
	Update(p *Params) error
	Built() bool
	Periods() int
	Generation() uint64
	NodeCount() int
	UsesChain() bool
	Value(timeStep, state int, attr string) (float64, error)
	ChainValue(timeStep int, attr string) (float64, error)
	Render(attr string, layout Layout) (string, error)
	RenderChain(attrs ...string) (string, error)
	Stats() Stats
}
