// Package european prices European options on a Cox–Ross–Rubinstein
// binomial lattice built by package lattice.
//
// What:
//
//   - Params: defaults {initialPrice, strike, numYears, volatility, periods,
//     rate, divRate} and the derived step quantities periodRate, stepVol,
//     flipVol, qUp, qDown.
//   - Node: underlying price S·u^offset; terminal payoff; risk-neutral
//     discounted expectation of the two children.
//   - PutFactory / CallFactory: the two payoff variants.
//   - BlackScholes: closed-form reference price.
//
// Errors:
//
//   - ErrDegenerate: inputs that make the step factors or risk-neutral
//     probabilities meaningless (non-positive volatility, horizon or
//     periods; qUp outside (0,1)).
package european
