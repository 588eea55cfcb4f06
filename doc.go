// Package lattix prices path-dependent instruments on recombining binomial
// lattices.
//
// What is lattix?
//
//	A lattice engine plus the models and surfaces around it:
//		• lattice/          generic recombining lattice, parameters, rendering
//		• models/european/  European puts and calls on a CRR lattice
//		• models/mortgage/  level-payment mortgage with a prepayment option
//		• pricing/          model registry, Price and Sweep with decimal quotes
//		• config/           YAML scenarios and NAME=VALUE overrides
//		• telemetry/        slog setup and Prometheus collectors
//		• server/           gin HTTP API
//		• cmd/lattix        cobra CLI
//
// Why a lattice?
//
//   - A recombining tree of P periods has (P+1)(P+2)/2 nodes, not 2^P.
//   - Backward induction visits every node once per update.
//   - Parameters change without rebuilding the graph; only a new period
//     count reallocates.
//
// Quick start:
//
//	p, _ := european.NewParams(map[string]float64{"strike": 95})
//	l := european.New(european.Put)
//	_ = l.Update(p)
//	v, _ := l.Value(0, 0, european.AttrValue)
package lattix
