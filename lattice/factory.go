package lattice

// DefaultFormat is the printf verb used for attributes without a registered format.
const DefaultFormat = "%.2f"

// Factory binds a model's node constructors to the engine and records a
// display format per attribute. It holds no per-lattice state and may be
// shared by any number of lattices of the same model once its formats are
// registered.
type Factory[N Node[N, C], C Chain[C]] struct {
	newNode  func() N
	newChain func() C
	formats  map[string]string
}

// NewFactory returns a Factory building lattice nodes with newNode and
// chain nodes with newChain. A nil newChain declares the chain inert: it is
// never allocated and never traversed.
//
// Panics if newNode is nil; a factory without nodes is a programming error.
func NewFactory[N Node[N, C], C Chain[C]](newNode func() N, newChain func() C) *Factory[N, C] {
	if newNode == nil {
		panic("lattice: NewFactory requires a node constructor")
	}

	return &Factory[N, C]{
		newNode:  newNode,
		newChain: newChain,
		formats:  make(map[string]string),
	}
}

// RegisterFormat records the printf verb used to render attr, e.g. "%6.2f".
// It returns f for chaining.
func (f *Factory[N, C]) RegisterFormat(attr, format string) *Factory[N, C] {
	f.formats[attr] = format

	return f
}

// Format returns the verb registered for attr, or DefaultFormat.
func (f *Factory[N, C]) Format(attr string) string {
	if form, ok := f.formats[attr]; ok {
		return form
	}

	return DefaultFormat
}

// UsesChain reports whether the factory builds a chain.
func (f *Factory[N, C]) UsesChain() bool {
	return f.newChain != nil
}
