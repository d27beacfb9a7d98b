package cmd

import (
	"testing"
)

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "bosun" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "bosun")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"up", "bootstrap", "services", "env"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range expectedCmds {
		if !cmdMap[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestServicesSubcommands(t *testing.T) {
	expected := []string{"list", "attach"}
	cmdMap := make(map[string]bool)
	for _, cmd := range servicesCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range expected {
		if !cmdMap[name] {
			t.Errorf("missing services subcommand %q", name)
		}
	}
}

func TestUpFlags(t *testing.T) {
	if upCmd.Flags().Lookup("settle") == nil {
		t.Error("up command should have a --settle flag")
	}
	if upCmd.Flags().Lookup("skip-bootstrap") == nil {
		t.Error("up command should have a --skip-bootstrap flag")
	}
}
