package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quarto/internal/catalog"
	"quarto/internal/fetch"
	"quarto/internal/match"
	"quarto/internal/merge"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		typeFlag   string
		sourceFlag string
	)

	cmd := &cobra.Command{
		Use:   "update <record-id>",
		Short: "Refresh a stored record from a data source",
		Long: "Derives a search request from the stored record (identifier first, " +
			"title otherwise), re-fetches it, and fills the record's empty fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := catalog.ParseType(typeFlag)
			if !ok {
				return fmt.Errorf("unknown collection type %q (valid: %s)", typeFlag, typeNames())
			}

			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			schema := catalog.SchemaFor(typ)
			rec, err := store.Get(cmd.Context(), schema, args[0])
			if err != nil {
				return err
			}

			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}
			var req fetch.Request
			if sourceFlag != "" {
				req = orch.UpdateRequest(sourceFlag, rec)
			} else {
				for _, fetcher := range orch.Fetchers() {
					if !fetcher.CanFetch(typ) {
						continue
					}
					if candidate := fetcher.UpdateRequest(rec); !candidate.IsEmpty() {
						req = candidate
						break
					}
				}
			}
			if req.IsEmpty() {
				return fmt.Errorf("record %s has no usable search field", args[0])
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
			if len(results) == 0 {
				return fmt.Errorf("no source returned a match for record %s", args[0])
			}

			// best scoring result against the stored record wins
			var (
				best      *catalog.Record
				bestScore float64
			)
			for _, result := range results {
				resolved, err := search.ResolveFull(cmd.Context(), result.ID)
				if err != nil {
					fmt.Fprintf(errOut, "warning: %s: %v\n", result.Source, err)
					continue
				}
				if score := match.SameEntry(rec, resolved); best == nil || score > bestScore {
					best, bestScore = resolved, score
				}
			}
			if best == nil {
				return fmt.Errorf("no result could be resolved for record %s", args[0])
			}

			changed, err := merge.Apply(merge.Proposal{Existing: rec, Incoming: best})
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "Record is already complete; nothing to update.")
				return nil
			}
			if err := store.Put(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated record %s.\n", rec.ID())
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "video", "Collection type of the record ("+typeNames()+")")
	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source to derive the refresh request from")
	return cmd
}
