package operations

import (
	"context"
	"strings"
	"testing"
	"time"

	"onmodulus/xervo/cmd/commands/cmdtest"
	"onmodulus/xervo/internal/opstore"
)

func seed(t *testing.T, ops ...*opstore.Operation) {
	t.Helper()
	repo, err := opstore.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	for _, op := range ops {
		if err := repo.Save(context.Background(), op); err != nil {
			t.Fatal(err)
		}
	}
}

func load(t *testing.T) []opstore.Operation {
	t.Helper()
	repo, err := opstore.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	ops, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	return ops
}

func TestList_PendingOnly(t *testing.T) {
	cmdtest.Setup(t)
	seed(t,
		&opstore.Operation{Ref: "aaaa1111", Command: "project restart", Kind: opstore.KindProject, ResourceID: "p1", ResourceName: "api", TargetStatus: "running"},
		&opstore.Operation{Ref: "bbbb2222", Command: "project stop", Kind: opstore.KindProject, ResourceID: "p2", TargetStatus: "stopped", State: opstore.StateSucceeded},
	)

	stdout, stderr, err := cmdtest.Run(t, NewCommand())
	if err != nil {
		t.Fatalf("operations error = %v", err)
	}
	if !strings.Contains(stdout, "aaaa1111") || strings.Contains(stdout, "bbbb2222") {
		t.Errorf("stdout = %s", stdout)
	}
	if !strings.Contains(stderr, "--resume") {
		t.Errorf("stderr = %q, want --resume hint", stderr)
	}

	stdout, _, err = cmdtest.Run(t, NewCommand(), "--all")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "bbbb2222") {
		t.Errorf("--all output missing finished operation:\n%s", stdout)
	}
}

func TestList_Empty(t *testing.T) {
	cmdtest.Setup(t)

	stdout, _, err := cmdtest.Run(t, NewCommand())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "No pending operations.") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestResume(t *testing.T) {
	env := cmdtest.Setup(t)
	seed(t, &opstore.Operation{
		Ref: "cccc3333", Command: "project start", Kind: opstore.KindProject,
		ResourceID: "p1", ResourceName: "api", TargetStatus: "running", LastStatus: "starting",
	})
	env.API.Sequence("GET", "/project/p1",
		`{"id":"p1","name":"api","status":"starting"}`,
		`{"id":"p1","name":"api","status":"running"}`,
	)

	stdout, _, err := cmdtest.Run(t, NewCommand(), "--resume")
	if err != nil {
		t.Fatalf("resume error = %v", err)
	}
	if !strings.Contains(stdout, "project api is running.") {
		t.Errorf("stdout = %q", stdout)
	}
	if n := len(env.API.Find("GET", "/project/p1/start")); n != 0 {
		t.Errorf("resume resent the start request %d times", n)
	}

	ops := load(t)
	if len(ops) != 1 || ops[0].State != opstore.StateSucceeded || ops[0].LastStatus != "running" {
		t.Errorf("operations = %+v", ops)
	}
}

func TestResume_Failure(t *testing.T) {
	env := cmdtest.Setup(t)
	seed(t, &opstore.Operation{
		Ref: "dddd4444", Command: "database create", Kind: opstore.KindDatabase,
		ResourceID: "d1", TargetStatus: "running",
	})
	env.API.JSON("GET", "/database/d1", `{"error":{"id":"DATABASE_NOT_FOUND","message":"Database not found."}}`)

	_, stderr, err := cmdtest.Run(t, NewCommand(), "--resume")
	if err == nil || !strings.Contains(err.Error(), "did not complete") {
		t.Fatalf("resume error = %v", err)
	}
	if !strings.Contains(stderr, "[dddd4444] Error") {
		t.Errorf("stderr = %q", stderr)
	}
	ops := load(t)
	if len(ops) != 1 || ops[0].State != opstore.StateFailed || !strings.Contains(ops[0].ErrorMessage, "Database not found.") {
		t.Errorf("operations = %+v", ops)
	}
}

func TestResume_NeedsLogin(t *testing.T) {
	env := cmdtest.Setup(t)
	env.Logout(t)

	_, _, err := cmdtest.Run(t, NewCommand(), "--resume")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("error = %v", err)
	}
}

func TestPrune(t *testing.T) {
	cmdtest.Setup(t)
	seed(t, &opstore.Operation{Ref: "eeee5555", Command: "project stop", Kind: opstore.KindProject, ResourceID: "p1", TargetStatus: "stopped", State: opstore.StateSucceeded})

	stdout, _, err := cmdtest.Run(t, NewCommand(), "--prune")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Removed 0 finished operation(s).") {
		t.Errorf("stdout = %q (a fresh operation must be kept)", stdout)
	}
	if n := len(load(t)); n != 1 {
		t.Errorf("operations left = %d, want 1", n)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{72 * time.Hour, "3d"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
