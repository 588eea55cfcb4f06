// Package pricing puts the lattice models behind one model-independent
// surface: a name-keyed Registry of Models, and Price / Sweep operations
// that build, update and read an Engine and report rounded decimal quotes.
//
// Both the CLI and the HTTP server go through this package; neither knows
// the concrete node types.
//
// Errors:
//
//   - ErrUnknownModel: Registry.Get with an unregistered name.
//   - ErrDuplicateModel: Registry.Register with a name already taken.
//   - ErrUnknownParam: Sweep over a parameter the model does not declare.
//   - ErrNoValues: Sweep with an empty value list.
//   - lattice errors from parameter validation, Update and rendering pass
//     through wrapped.
//
// Cancellation is checked before each lattice update; a single Update is
// not interrupted.
package pricing
