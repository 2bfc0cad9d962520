package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-regform/components/countries"
	"github.com/goliatone/go-regform/pkg/model"
)

func newCountriesCmd(a *app) *cobra.Command {
	var (
		query  string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List the selectable countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.countries()
			if err != nil {
				return err
			}
			opts := countries.NewOptions()
			matches := countries.Search(list, query, limit, opts)
			if matches == nil {
				matches = []model.Country{}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}
			for _, country := range matches {
				fmt.Fprintf(out, "%s\t%s\n", country.ID, country.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
