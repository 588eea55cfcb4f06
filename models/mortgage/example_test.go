package mortgage_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/models/mortgage"
)

// ExampleValue values the default thirty-period loan.
func ExampleValue() {
	v, err := mortgage.Value(nil, quietLogger())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("payment=%.4f noncall=%.4f call=%.4f\n", v.PeriodPayment, v.NonCallValue, v.CallValue)

	// Output:
	// payment=8.0586 noncall=152.9071 call=100.0000
}

// ExampleNew_chain prints the amortization schedule of a two-period loan.
func ExampleNew_chain() {
	p, _ := mortgage.NewParams(map[string]float64{"periods": 2})
	l := mortgage.New()
	if err := l.Update(p); err != nil {
		fmt.Println("error:", err)
		return
	}

	s, _ := l.RenderChain(mortgage.AttrRemainPrincipal, lattice.AttrTimeStep)
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}

	// Output:
	// remainPrincipal  100.00   51.69    0.00
	//        timeStep    0.00    1.00    2.00
}
