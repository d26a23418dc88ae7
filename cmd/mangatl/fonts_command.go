package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangatl/internal/fonts"
)

func newFontsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List installed font families",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			families, err := fonts.Default(cfg, ctx.localLogger()).Families(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, families)
			}
			rows := make([][]string, 0, len(families))
			for i, family := range families {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), family})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(tableSpec{
				headers: []string{"#", "Family"},
				aligns:  []columnAlignment{alignRight, alignLeft},
				footer:  []string{"", fmt.Sprintf("%d families", len(families))},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the families as a JSON array")
	return cmd
}
