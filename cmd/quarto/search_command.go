package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/logging"
	"quarto/internal/merge"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		typeFlag     string
		keyFlag      string
		optionalFlag []string
		resolveFlag  bool
		saveFlag     bool
	)

	cmd := &cobra.Command{
		Use:   "search <value>",
		Short: "Search all eligible sources for collection metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := catalog.ParseType(typeFlag)
			if !ok {
				return fmt.Errorf("unknown collection type %q (valid: %s)", typeFlag, typeNames())
			}
			key, ok := fetch.ParseKeyKind(keyFlag)
			if !ok {
				return fmt.Errorf("unknown search key %q (valid: %s)", keyFlag, keyNames())
			}

			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			req := fetch.Request{
				Key:            key,
				Value:          args[0],
				Type:           typ,
				OptionalFields: optionalFlag,
			}
			if len(orch.Eligible(req)) == 0 {
				return fmt.Errorf("no enabled source can search %s by %s", typ, key)
			}

			search := orch.Execute(cmd.Context(), req)
			var results []fetch.Result
			for result := range search.Results() {
				results = append(results, result)
			}
			<-search.Done()

			errOut := cmd.ErrOrStderr()
			for _, msg := range search.Messages() {
				fmt.Fprintf(errOut, "%s: %s: %s\n", msg.Severity, msg.Source, msg.Text)
			}

			if resolveFlag || saveFlag {
				for i, result := range results {
					rec, err := search.ResolveFull(cmd.Context(), result.ID)
					if err != nil {
						fmt.Fprintf(errOut, "warning: %s: %v\n", result.Source, err)
						continue
					}
					results[i].Record = rec
				}
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}

			extra, extraHeader := summaryField(typ)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{
					shortID(result.ID),
					result.Source,
					result.Record.Field("title"),
					result.Record.Field(extra),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Source", "Title", extraHeader},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if saveFlag {
				return saveResults(cmd, ctx, typ, results)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "video", "Collection type to search ("+typeNames()+")")
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "title", "Search key kind ("+keyNames()+")")
	cmd.Flags().StringSliceVar(&optionalFlag, "optional", nil, "Optional fields to request from sources")
	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "Resolve each result to its full record")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "Save resolved results into the local catalog")
	return cmd
}

// saveResults folds resolved records into the catalog: records matching an
// existing one update it in place, the rest are inserted.
func saveResults(cmd *cobra.Command, ctx *commandContext, typ catalog.Type, results []fetch.Result) error {
	store, err := ctx.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	incoming := make([]*catalog.Record, 0, len(results))
	for _, result := range results {
		if !result.Record.IsEmpty() {
			incoming = append(incoming, result.Record)
		}
	}
	existing, err := store.List(cmd.Context(), catalog.SchemaFor(typ))
	if err != nil {
		return err
	}

	scanner := merge.NewScanner(cfg.Fetch.MergeThreshold, ctx.logger())
	proposals, err := scanner.Scan(cmd.Context(), existing, incoming)
	if err != nil {
		return err
	}

	merged := map[string]bool{}
	var updated, inserted int
	for _, proposal := range proposals {
		if merged[proposal.Incoming.ID()] {
			continue
		}
		changed, err := merge.Apply(proposal)
		if err != nil {
			return err
		}
		merged[proposal.Incoming.ID()] = true
		if !changed {
			continue
		}
		if err := store.Put(cmd.Context(), proposal.Existing); err != nil {
			return err
		}
		updated++
	}
	for _, rec := range incoming {
		if merged[rec.ID()] {
			continue
		}
		if err := store.Put(cmd.Context(), rec); err != nil {
			return err
		}
		inserted++
	}

	ctx.logger().Info("catalog updated",
		logging.Int("inserted", inserted),
		logging.Int("updated", updated))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d new and updated %d existing records.\n", inserted, updated)
	return nil
}

func summaryField(typ catalog.Type) (name, header string) {
	switch typ {
	case catalog.TypeBook:
		return "author", "Author"
	case catalog.TypeGame:
		return "platform", "Platform"
	default:
		return "year", "Year"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func typeNames() string {
	names := make([]string, 0, len(catalog.Types()))
	for _, typ := range catalog.Types() {
		names = append(names, string(typ))
	}
	return strings.Join(names, ", ")
}

func keyNames() string {
	names := make([]string, 0, len(fetch.KeyKinds()))
	for _, kind := range fetch.KeyKinds() {
		names = append(names, kind.String())
	}
	return strings.Join(names, ", ")
}
