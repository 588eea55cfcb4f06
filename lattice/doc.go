// Package lattice implements a recombining binomial lattice and the
// induction engine that prices instruments on it.
//
// What:
//
//   - Params: named model inputs with declared defaults, unrecognized-name
//     warnings, and model-supplied recomputation of derived quantities.
//   - Node / Chain: the per-node contract a pricing model implements.
//     LocalUpdate runs forward from the node's own coordinate; BackInduct
//     aggregates the already-updated children (and the co-located chain node).
//   - Factory: binds concrete node constructors and display formats.
//   - Lattice: owns the triangular node arena, rebuilds it when the period
//     count changes, and runs one memoized post-order traversal per Update.
//
// Why:
//
//   - Every interior node of a recombining lattice has two parents. A naive
//     recursive walk visits it once per path, which is exponential in depth.
//     Generation stamps make each Update touch every node exactly once.
//
// Complexity:
//
//   - Build:  O(P²) time and memory, (P+1)(P+2)/2 nodes for P periods.
//   - Update: O(P²) time, O(P) recursion depth.
//   - Render: O(P²) time and memory.
//
// Errors:
//
//   - ErrNilParams     Update called with a nil *Params.
//   - ErrBadPeriods    the "periods" parameter is missing, negative or fractional.
//   - ErrRecalc        the model's recalculation step failed.
//   - ErrNonFinite     a derived quantity evaluated to NaN or ±Inf.
//   - ErrNotBuilt      inspection or rendering before the first Build/Update.
//   - ErrOutOfRange    coordinate outside the built lattice.
//   - ErrNoChain       chain access on a model whose chain is inert.
//   - ErrUnknownAttr   attribute name not exposed by the node.
//
// A Lattice is not safe for concurrent use. Fan out independent scenarios
// by giving each goroutine its own Lattice and its own Params.
package lattice
