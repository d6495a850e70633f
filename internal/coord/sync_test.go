package coord

import (
	"errors"
	"testing"

	"github.com/89pl/strixer/pkg/models"
)

func TestCreateSyncPoint(t *testing.T) {
	c := newTestCoordinator()

	sp, err := c.CreateSyncPoint("after-recon", []string{"a", "b"}, "wait for recon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sp.Status != models.SyncStatusWaiting {
		t.Errorf("expected waiting, got %s", sp.Status)
	}
	if len(sp.CheckedIn) != 0 {
		t.Errorf("expected empty check-in list, got %v", sp.CheckedIn)
	}
	if got := sp.Remaining(); len(got) != 2 {
		t.Errorf("expected 2 remaining, got %v", got)
	}
}

func TestCreateSyncPointNeedsAgents(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.CreateSyncPoint("empty", nil, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCheckInNotFound(t *testing.T) {
	c := newTestCoordinator()

	if _, err := c.CheckIn("sync_missing", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckInUnrequiredAgent(t *testing.T) {
	c := newTestCoordinator()

	sp, _ := c.CreateSyncPoint("gate", []string{"a"}, "")
	if _, err := c.CheckIn(sp.ID, "stranger"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCheckInReleasesBarrier(t *testing.T) {
	c := newTestCoordinator()

	sp, _ := c.CreateSyncPoint("gate", []string{"a", "b", "c"}, "")

	got, err := c.CheckIn(sp.ID, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.SyncStatusWaiting {
		t.Fatalf("expected waiting after partial check-in, got %s", got.Status)
	}

	// Checking in twice is a no-op, not progress.
	got, _ = c.CheckIn(sp.ID, "a")
	if len(got.CheckedIn) != 1 {
		t.Fatalf("duplicate check-in must not grow the list, got %v", got.CheckedIn)
	}

	c.CheckIn(sp.ID, "b")
	got, err = c.CheckIn(sp.ID, "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.SyncStatusReleased {
		t.Errorf("expected released, got %s", got.Status)
	}
	if got.ReleasedAt == nil {
		t.Error("expected ReleasedAt to be stamped")
	}
	if remaining := got.Remaining(); len(remaining) != 0 {
		t.Errorf("expected no remaining agents, got %v", remaining)
	}
}
