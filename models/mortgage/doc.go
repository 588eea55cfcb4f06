// Package mortgage values a level-payment mortgage, with and without the
// borrower's option to prepay, on a binomial short-rate lattice.
//
// The amortization balance depends on elapsed time only and lives on the
// lattice chain. Each lattice node carries the one-period short rate
// interestStart·upMult^offset; values are discounted expectations of the
// next payment plus the child value, with equal branch weights. The
// callable value is capped at the outstanding balance plus the prepayment
// cost, which is what the borrower pays to retire the loan.
package mortgage
