package main

import (
	"slices"
	"testing"
)

func newTestCompleter(t *testing.T) *replCompleter {
	t.Helper()
	sess, _ := newTestSession(t, "ansi")
	return &replCompleter{sess: sess}
}

func completions(c *replCompleter, line string) []string {
	cands, _ := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, len(cands))
	for i, r := range cands {
		out[i] = string(r)
	}
	return out
}

// --- Command completion ---

func TestCompleteCommandsEmpty(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	if got, want := len(completions(c, "")), len(c.sess.commandNames()); got != want {
		t.Errorf("expected %d commands, got %d", want, got)
	}
}

func TestCompleteCommandsPrefix(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	got := completions(c, "se")
	if !slices.Equal(got, []string{"ed "}) {
		t.Errorf("expected [seed], got %v", got)
	}
}

func TestCompleteCommandsMultiMatch(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	got, length := c.Do([]rune("d"), 1)
	if length != 1 {
		t.Errorf("expected prefix length 1, got %d", length)
	}
	var names []string
	for _, r := range got {
		names = append(names, "d"+string(r))
	}
	for _, want := range []string{"dialect ", "ddl ", "disconnect "} {
		if !slices.Contains(names, want) {
			t.Errorf("expected %q in %v", want, names)
		}
	}
}

func TestHiddenCommandsAreNotCompleted(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	if slices.Contains(c.sess.commandNames(), "exec") {
		t.Error("exec is an alias and should be hidden")
	}
}

// --- Argument completion ---

func TestCompleteDialectArgs(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	got := completions(c, "dialect p")
	if !slices.Equal(got, []string{"ostgres "}) {
		t.Errorf("expected [postgres], got %v", got)
	}
}

func TestCompleteSampleArgs(t *testing.T) {
	t.Parallel()
	c := newTestCompleter(t)
	got := completions(c, "run s")
	for _, want := range []string{"elect ", "earch ", "oftdelete "} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q in %v", want, got)
		}
	}
	if got := completions(c, "show cte"); !slices.Equal(got, []string{" "}) {
		t.Errorf("expected exact match to complete to a space, got %v", got)
	}
}

func TestFilterPrefixIgnoresCase(t *testing.T) {
	t.Parallel()
	got := filterPrefix([]string{"Alpha", "beta", "alps"}, "AL")
	if !slices.Equal(got, []string{"Alpha", "alps"}) {
		t.Errorf("got %v", got)
	}
}
