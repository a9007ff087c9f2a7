package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index the content directory once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.cfg, "indexer")
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.indexer().Run(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
