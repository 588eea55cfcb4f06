package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lattix/config"
)

type modelListing struct {
	Name        string             `json:"name"`
	Headline    string             `json:"headline"`
	Description string             `json:"description"`
	Defaults    map[string]float64 `json:"defaults"`
}

func newModelsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models and their default parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := e.cfg.Registry.Names()
			rows := make([][]string, 0, len(names))
			listing := make([]modelListing, 0, len(names))
			for _, name := range names {
				m, err := e.cfg.Registry.Get(name)
				if err != nil {
					return err
				}
				defaults := map[string]float64(m.Defaults())
				rows = append(rows, []string{
					m.Name(), m.Headline(), strings.Join(config.FormatOverrides(defaults), " "),
				})
				listing = append(listing, modelListing{
					Name:        m.Name(),
					Headline:    m.Headline(),
					Description: m.Description(),
					Defaults:    defaults,
				})
			}

			return e.out().Print([]string{"NAME", "HEADLINE", "DEFAULTS"}, rows, listing)
		},
	}
}
