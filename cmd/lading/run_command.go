package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lading/internal/reconcile"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile manifests against the source pool and move complete sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if assumeYes {
				cfg.Conflicts.AutoConfirm = true
			}

			var progress func(done, total int)
			var bar *progressbar.ProgressBar
			if stdoutIsTerminal() {
				progress = func(done, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetDescription("indexing"),
							progressbar.OptionShowCount(),
							progressbar.OptionClearOnFinish(),
						)
					}
					_ = bar.Set(done)
				}
			}

			summary, err := reconcile.Run(runCtx, reconcile.Options{
				Config:   cfg,
				Logger:   logger,
				DryRun:   dryRun,
				Prompter: newStdinPrompter(cmd),
				Progress: progress,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.Table != "" {
				fmt.Fprintln(out, summary.Table)
			}
			for _, m := range summary.Manifests {
				if m.MissingReport != "" {
					fmt.Fprintf(out, "Missing-files report: %s\n", m.MissingReport)
				}
			}
			if summary.ConflictReport != "" {
				fmt.Fprintf(out, "Conflict report: %s\n", summary.ConflictReport)
				if !summary.ConflictsVerified {
					fmt.Fprintln(out, "Conflict checksums were not verified; the report compares sizes only.")
				}
			}
			if summary.DryRun {
				fmt.Fprintln(out, "Dry run: no files were moved.")
			}

			if summary.Incomplete() {
				return &exitError{code: 2}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decide and report without moving any file")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")
	return cmd
}
