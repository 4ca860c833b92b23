package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorUnwrapsThroughWrapping(t *testing.T) {
	// Exit codes must survive fmt wrapping on the way out of cobra.
	wrapped := fmt.Errorf("command failed: %w", &exitError{code: 2, message: "incomplete"})
	var exit *exitError
	if !errors.As(wrapped, &exit) {
		t.Fatalf("exit error not extracted from %v", wrapped)
	}
	if exit.code != 2 || exit.Error() != "incomplete" {
		t.Fatalf("unexpected exit error: %+v", exit)
	}
}

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()
	want := map[string]bool{
		"run": false, "index": false, "validate": false,
		"config": false, "version": false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %s not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, version)
}
