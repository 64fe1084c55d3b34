package agent

import (
	"errors"
	"testing"

	"taskboard/pkg/task"
)

func seededTasks(ids ...string) []task.Task {
	tasks := make([]task.Task, len(ids))
	for i, id := range ids {
		tasks[i] = task.Task{ID: id}
	}
	return tasks
}

func TestFormatTaskID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"507f1f77bcf86cd799439011", "TASK-9011"},
		{"00000000000000000000abcd", "TASK-abcd"},
		{"ab", "TASK-ab"}, // shorter than the suffix: kept whole
	}
	for _, tc := range cases {
		if got := FormatTaskID(tc.in); got != tc.want {
			t.Errorf("FormatTaskID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShortIDIndexResolve(t *testing.T) {
	idx := buildShortIDIndex(seededTasks("507f1f77bcf86cd799439011"))

	full, err := idx.resolve("TASK-9011")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if full != "507f1f77bcf86cd799439011" {
		t.Errorf("resolve = %q", full)
	}

	// A full id passes through unchanged.
	full, err = idx.resolve("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("resolve full id: %v", err)
	}
	if full != "507f1f77bcf86cd799439011" {
		t.Errorf("resolve full id = %q", full)
	}

	if _, err := idx.resolve("TASK-ffff"); !errors.Is(err, ErrInvalidTaskID) {
		t.Errorf("unknown id err = %v, want ErrInvalidTaskID", err)
	}
}

func TestShortIDIndexCollisionLaterWins(t *testing.T) {
	idx := buildShortIDIndex(seededTasks(
		"aaaaaaaaaaaaaaaaaaaa1234",
		"bbbbbbbbbbbbbbbbbbbb1234",
	))
	full, err := idx.resolve("TASK-1234")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if full != "bbbbbbbbbbbbbbbbbbbb1234" {
		t.Errorf("collision resolved to %q, want the later task", full)
	}
}

func TestResolveAllFailsFast(t *testing.T) {
	idx := buildShortIDIndex(seededTasks("00000000000000000000abcd"))
	_, err := idx.resolveAll([]string{"TASK-abcd", "TASK-0000", "TASK-abcd"})
	if !errors.Is(err, ErrInvalidTaskID) {
		t.Fatalf("err = %v, want ErrInvalidTaskID", err)
	}
}
