package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lading/internal/index"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the candidate index and print its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			idx, err := index.Build(cmd.Context(), cfg.Paths.SourceDir, index.Options{
				Workers: cfg.Indexing.Workers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s\n", idx.Root())
			fmt.Fprintf(out, "Files indexed: %d\n", idx.Len())
			fmt.Fprintf(out, "Distinct keys: %d\n", idx.Keys())

			if showFiles {
				rows := make([][]string, 0, idx.Len())
				for _, cand := range idx.Candidates() {
					rows = append(rows, []string{
						cand.RelPath,
						strconv.FormatInt(cand.Size, 10),
						cand.Checksum,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"File", "Size", "CRC32"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "List every indexed file")
	return cmd
}
