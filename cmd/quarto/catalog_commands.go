package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quarto/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the local catalog database",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogDeleteCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
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

			records, err := store.List(cmd.Context(), catalog.SchemaFor(typ))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty.")
				return nil
			}

			extra, extraHeader := summaryField(typ)
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.ID(),
					rec.Field("title"),
					rec.Field(extra),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", extraHeader},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "video", "Collection type to list ("+typeNames()+")")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Print every populated field of a record",
		Args:  cobra.ExactArgs(1),
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

			rows := make([][]string, 0)
			for _, name := range rec.FieldNames() {
				title := name
				if field, ok := schema.FieldByName(name); ok {
					title = field.Title
				}
				rows = append(rows, []string{title, rec.Field(name)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "video", "Collection type of the record ("+typeNames()+")")
	return cmd
}

func newCatalogDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a record from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s.\n", args[0])
			return nil
		},
	}
}
