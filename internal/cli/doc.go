// Package cli implements the lattix command tree.
//
//	lattix [--json] <command> [flags]
//
// Commands:
//
//	models  list registered models and their defaults
//	price   value a scenario and print root attributes
//	render  print one attribute of a scenario as a grid
//	sweep   value a scenario across a range of one parameter
//	serve   run the HTTP pricing API
package cli
