package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lading/internal/conflict"
)

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// newStdinPrompter builds the interactive confirmation used by the conflict
// verification pass. Without a terminal the answer is always no; unattended
// runs opt in with --yes or auto_confirm instead.
func newStdinPrompter(cmd *cobra.Command) conflict.Prompter {
	return conflict.ConfirmFunc(func(message string) (bool, error) {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return false, nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", message)
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}
