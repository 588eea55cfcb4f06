package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/pricing"
)

func newPriceCmd(e *env) *cobra.Command {
	var (
		sf     scenarioFlags
		render string
		layout string
		chain  []string
		places int32
	)

	cmd := &cobra.Command{
		Use:   "price [MODEL]",
		Short: "Value a scenario and print its root attributes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, m, params, err := sf.resolve(e, args)
			if err != nil {
				return err
			}

			req := s.Request()
			if cmd.Flags().Changed("render") {
				req.Render = render
			}
			if cmd.Flags().Changed("layout") {
				if req.Layout, err = lattice.ParseLayout(layout); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("chain") {
				req.Chain = chain
			}

			res, err := pricing.Price(cmd.Context(), m, params, req,
				pricing.WithLogger(e.cfg.Logger), pricing.WithPlaces(places))
			if err != nil {
				return err
			}

			out := e.out()
			rows := make([][]string, 0, len(res.Root)+1)
			rows = append(rows, []string{"periods", fmt.Sprint(res.Periods)})
			for _, attr := range m.Attributes() {
				rows = append(rows, []string{attr, res.Root[attr].String()})
			}
			if err = out.Print([]string{"ATTRIBUTE", "VALUE"}, rows, res); err != nil {
				return err
			}
			out.Text(res.Tree)
			out.Text(res.Chain)

			return nil
		},
	}

	sf.bind(cmd)
	cmd.Flags().StringVar(&render, "render", "", "Node attribute to draw as a grid")
	cmd.Flags().StringVar(&layout, "layout", "tree", "Grid layout: tree or triangle")
	cmd.Flags().StringSliceVar(&chain, "chain", nil, "Chain attributes to draw")
	cmd.Flags().Int32Var(&places, "places", pricing.DefaultPlaces, "Decimal places in reported values")

	return cmd
}

func newRenderCmd(e *env) *cobra.Command {
	var (
		sf     scenarioFlags
		attr   string
		layout string
	)

	cmd := &cobra.Command{
		Use:   "render [MODEL]",
		Short: "Print one node attribute of a scenario as a grid",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, m, params, err := sf.resolve(e, args)
			if err != nil {
				return err
			}

			req := s.Request()
			if attr != "" {
				req.Render = attr
			}
			if req.Render == "" {
				req.Render = m.Headline()
			}
			if cmd.Flags().Changed("layout") {
				if req.Layout, err = lattice.ParseLayout(layout); err != nil {
					return err
				}
			}

			res, err := pricing.Price(cmd.Context(), m, params, req, pricing.WithLogger(e.cfg.Logger))
			if err != nil {
				return err
			}

			out := e.out()
			if out.jsonMode {
				return out.JSON(map[string]string{"tree": res.Tree, "chain": res.Chain})
			}
			fmt.Fprint(out.w, res.Tree)
			if res.Chain != "" {
				fmt.Fprintln(out.w)
				fmt.Fprint(out.w, res.Chain)
			}

			return nil
		},
	}

	sf.bind(cmd)
	cmd.Flags().StringVar(&attr, "attr", "", "Node attribute (default: the model headline)")
	cmd.Flags().StringVar(&layout, "layout", "tree", "Grid layout: tree or triangle")

	return cmd
}
