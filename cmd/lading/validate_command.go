package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lading/internal/manifest"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest.csv> [more...]",
		Short: "Parse manifests and report row problems without reconciling",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(args))
			var unreadable int
			for _, path := range args {
				doc, err := manifest.Load(path, logger)
				if err != nil {
					unreadable++
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				rows = append(rows, []string{
					doc.ID,
					strconv.Itoa(len(doc.Entries)),
					strconv.Itoa(doc.Dropped),
					strconv.Itoa(len(doc.DuplicateKeys)),
					yesNo(doc.HeaderSkipped),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Manifest", "Rows", "Dropped", "Duplicate keys", "Header"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
			}
			if unreadable > 0 {
				return &exitError{code: 2, message: fmt.Sprintf("%d manifest(s) could not be read", unreadable)}
			}
			return nil
		},
	}
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
