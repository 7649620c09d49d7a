package main

import (
	"encoding/json"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/query"
)

func TestSourcesCmdNoArgs(t *testing.T) {
	t.Parallel()
	cmd := newSourcesCmd(&rootConfig{})
	if cmd.Args == nil {
		t.Fatal("sources: expected Args validator")
	}
	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("sources: expected error for extra arg, got nil")
	}
	if err := cmd.Args(cmd, []string{}); err != nil {
		t.Errorf("sources: expected no error for zero args, got %v", err)
	}
}

func decodeSources(t *testing.T, out string) []query.SourceInfo {
	t.Helper()
	var got []query.SourceInfo
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	return got
}

func TestSourcesCmdLists(t *testing.T) {
	t.Parallel()
	users := writeFile(t, "users.json", usersJSON)
	out, _, err := execRoot(t, "", "-s", "users="+users, "-s", "orders=sqlite://shop.db?table=orders", "sources")
	if err != nil {
		t.Fatal(err)
	}
	got := decodeSources(t, out)
	want := []query.SourceInfo{
		{Name: "orders", Spec: "sqlite://shop.db?table=orders"},
		{Name: "users", Spec: users},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSourcesCmdLoad(t *testing.T) {
	t.Parallel()
	users := writeFile(t, "users.json", usersJSON)
	out, _, err := execRoot(t, "", "-s", "users="+users, "sources", "--load")
	if err != nil {
		t.Fatal(err)
	}
	got := decodeSources(t, out)
	if len(got) != 1 || !got[0].Loaded || got[0].Rows != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestSourcesCmdLoadError(t *testing.T) {
	t.Parallel()
	_, _, err := execRoot(t, "", "-s", "orders=sqlite://"+t.TempDir()+"/none.db?table=orders", "sources", "--load")
	if err == nil {
		t.Error("expected load error for a table that does not exist")
	}
}
