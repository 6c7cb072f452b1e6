package cli

import (
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}

	expected := map[string]bool{
		"latest":  false,
		"history": false,
		"relay":   false,
		"led":     false,
		"ingest":  false,
		"watch":   false,
		"seed":    false,
	}

	for _, cmd := range rootCmd.Commands() {
		name := cmd.Use
		for key := range expected {
			if len(name) >= len(key) && name[:len(key)] == key {
				expected[key] = true
				break
			}
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("expected command %q to be registered with root command", name)
		}
	}
}

func TestActuatorSubcommands(t *testing.T) {
	for _, tree := range []struct {
		name string
	}{
		{"relay"},
		{"led"},
	} {
		var found bool
		for _, cmd := range rootCmd.Commands() {
			if cmd.Use != tree.name {
				continue
			}
			found = true

			subs := map[string]bool{"on": false, "off": false, "status": false}
			for _, sub := range cmd.Commands() {
				subs[sub.Use] = true
			}
			for sub, ok := range subs {
				if !ok {
					t.Errorf("expected %s to have subcommand %q", tree.name, sub)
				}
			}
		}
		if !found {
			t.Errorf("expected %s command to exist", tree.name)
		}
	}
}

func TestCoerceGuessesTypes(t *testing.T) {
	cases := []struct {
		raw  string
		want interface{}
	}{
		{"true", true},
		{"false", false},
		{"24.5", 24.5},
		{"100", 100.0},
		{"garbage", "garbage"},
	}
	for _, tc := range cases {
		if got := coerce(tc.raw); got != tc.want {
			t.Errorf("coerce(%q) = %v (%T), want %v (%T)", tc.raw, got, got, tc.want, tc.want)
		}
	}
}
