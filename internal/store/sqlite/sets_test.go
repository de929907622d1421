package sqlite

import (
	"context"
	"testing"

	"github.com/bookendsapp/bookends-server/internal/store"
)

func TestReconcileBookSetsCreatesAndAttaches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi", "Favorites"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	sets, err := s.ListSets(ctx, account.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	// ListSets sorts by title.
	if sets[0].Title != "Favorites" || sets[1].Title != "Sci-Fi" {
		t.Errorf("unexpected titles: %q, %q", sets[0].Title, sets[1].Title)
	}
	for _, set := range sets {
		if set.BookCount != 1 {
			t.Errorf("set %q count = %d, want 1", set.Title, set.BookCount)
		}
	}

	got, err := s.GetBook(ctx, account.ID, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if len(got.SetIDs) != 2 {
		t.Errorf("book SetIDs = %v, want 2 entries", got.SetIDs)
	}
}

func TestReconcileBookSetsReusesExistingSets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	dune := seedBook(t, s, account.ID, "Dune")
	foundation := seedBook(t, s, account.ID, "Foundation")

	if err := s.ReconcileBookSets(ctx, dune, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile dune: %v", err)
	}
	if err := s.ReconcileBookSets(ctx, foundation, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile foundation: %v", err)
	}

	sets, err := s.ListSets(ctx, account.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected a single shared set, got %d", len(sets))
	}
	if sets[0].BookCount != 2 {
		t.Errorf("shared set count = %d, want 2", sets[0].BookCount)
	}
}

func TestReconcileBookSetsReplacesMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi", "Favorites"}); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	// The book moves: old memberships go away entirely, the abandoned set
	// stays behind empty until DeleteEmptySets runs.
	if err := s.ReconcileBookSets(ctx, book, []string{"Classics"}); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	got, err := s.GetBook(ctx, account.ID, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if len(got.SetIDs) != 1 {
		t.Fatalf("SetIDs = %v, want exactly the new membership", got.SetIDs)
	}

	set, err := s.GetSet(ctx, account.ID, got.SetIDs[0])
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if set.Title != "Classics" {
		t.Errorf("set title = %q, want Classics", set.Title)
	}
}

func TestReconcileBookSetsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	for i := 0; i < 3; i++ {
		if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi", "Favorites"}); err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}

	sets, err := s.ListSets(ctx, account.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("expected 2 sets after repeats, got %d", len(sets))
	}
	for _, set := range sets {
		if set.BookCount != 1 {
			t.Errorf("set %q count = %d, want 1", set.Title, set.BookCount)
		}
	}
}

func TestReconcileBookSetsDuplicateTitles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	// "{Sci-Fi} {Sci-Fi}" parses to two identical titles; one membership.
	if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi", "Sci-Fi"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	sets, err := s.ListSets(ctx, account.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 1 || sets[0].BookCount != 1 {
		t.Fatalf("expected one set with one member, got %+v", sets)
	}
}

func TestReconcileBookSetsTitlesAreVerbatim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	// Whitespace is significant: " Sci-Fi" and "Sci-Fi" are distinct sets.
	if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi", " Sci-Fi"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	sets, err := s.ListSets(ctx, account.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 distinct sets, got %d", len(sets))
	}
}

func TestReconcileBookSetsEmptyTitlesClearsAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	account := seedAccount(t, s, "reader@example.com")
	book := seedBook(t, s, account.ID, "Dune")

	if err := s.ReconcileBookSets(ctx, book, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := s.ReconcileBookSets(ctx, book, nil); err != nil {
		t.Fatalf("clearing reconcile: %v", err)
	}

	got, err := s.GetBook(ctx, account.ID, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if len(got.SetIDs) != 0 {
		t.Errorf("SetIDs = %v, want none", got.SetIDs)
	}
}

func TestSetsAreScopedPerAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedAccount(t, s, "alice@example.com")
	bob := seedAccount(t, s, "bob@example.com")

	aliceBook := seedBook(t, s, alice.ID, "Dune")
	bobBook := seedBook(t, s, bob.ID, "Dune")

	// Same title, different accounts: two separate sets.
	if err := s.ReconcileBookSets(ctx, aliceBook, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile alice: %v", err)
	}
	if err := s.ReconcileBookSets(ctx, bobBook, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile bob: %v", err)
	}

	aliceSets, err := s.ListSets(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list alice sets: %v", err)
	}
	bobSets, err := s.ListSets(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list bob sets: %v", err)
	}
	if len(aliceSets) != 1 || len(bobSets) != 1 {
		t.Fatalf("expected one set each, got %d and %d", len(aliceSets), len(bobSets))
	}
	if aliceSets[0].ID == bobSets[0].ID {
		t.Error("accounts share a set row")
	}

	// Cross-account get reads as not found.
	if _, err := s.GetSet(ctx, bob.ID, aliceSets[0].ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for cross-account set get, got %v", err)
	}
}

func TestDeleteEmptySets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedAccount(t, s, "alice@example.com")
	bob := seedAccount(t, s, "bob@example.com")

	aliceBook := seedBook(t, s, alice.ID, "Dune")
	bobBook := seedBook(t, s, bob.ID, "Foundation")

	if err := s.ReconcileBookSets(ctx, aliceBook, []string{"Sci-Fi", "Favorites"}); err != nil {
		t.Fatalf("reconcile alice: %v", err)
	}
	if err := s.ReconcileBookSets(ctx, bobBook, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("reconcile bob: %v", err)
	}

	// Move alice's book out of Favorites; Favorites is now empty.
	if err := s.ReconcileBookSets(ctx, aliceBook, []string{"Sci-Fi"}); err != nil {
		t.Fatalf("re-reconcile alice: %v", err)
	}

	// Empty bob's set too, then clean up only alice's.
	if err := s.ReconcileBookSets(ctx, bobBook, nil); err != nil {
		t.Fatalf("clear bob: %v", err)
	}

	removed, err := s.DeleteEmptySets(ctx, alice.ID)
	if err != nil {
		t.Fatalf("delete empty sets: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	aliceSets, _ := s.ListSets(ctx, alice.ID)
	if len(aliceSets) != 1 || aliceSets[0].Title != "Sci-Fi" {
		t.Errorf("alice sets after cleanup: %+v", aliceSets)
	}

	// Bob's empty set survives alice's cleanup.
	bobSets, _ := s.ListSets(ctx, bob.ID)
	if len(bobSets) != 1 {
		t.Errorf("bob's set should be untouched, got %+v", bobSets)
	}
}
