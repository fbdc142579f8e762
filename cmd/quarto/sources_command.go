package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List enabled sources and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, fetcher := range orch.Fetchers() {
				var types []string
				for _, typ := range catalog.Types() {
					if fetcher.CanFetch(typ) {
						types = append(types, string(typ))
					}
				}
				var keys []string
				for _, kind := range fetch.KeyKinds() {
					if fetcher.CanSearch(kind) {
						keys = append(keys, kind.String())
					}
				}
				optional := make([]string, 0, len(fetcher.OptionalFields()))
				for name := range fetcher.OptionalFields() {
					optional = append(optional, name)
				}
				sort.Strings(optional)

				rows = append(rows, []string{
					fetcher.Source(),
					strings.Join(types, ", "),
					strings.Join(keys, ", "),
					strings.Join(optional, ", "),
				})
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sources enabled.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Source", "Types", "Search Keys", "Optional Fields"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
