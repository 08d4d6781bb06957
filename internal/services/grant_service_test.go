package services

import (
	"context"
	"sort"
	"testing"
)

func TestGrantIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()
	doc := env.addDocument(t, "Overview")
	userID := env.addUser(t, "a@fund.example", true)

	if err := env.grant.Grant(ctx, doc.ID, userID, 1); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if err := env.grant.Grant(ctx, doc.ID, userID, 1); err != nil {
		t.Fatalf("repeat Grant: %v", err)
	}

	grants, _ := env.grants.ListByDocument(ctx, doc.ID)
	if len(grants) != 1 {
		t.Errorf("grants: got %d, want 1", len(grants))
	}
	if env.grants.creates != 1 {
		t.Errorf("insert count: got %d, want 1", env.grants.creates)
	}
}

func TestRevokeMissingGrantIsNoop(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	doc := env.addDocument(t, "Overview")

	if err := env.grant.Revoke(context.Background(), doc.ID, 42, 1); err != nil {
		t.Errorf("Revoke of absent grant: got %v, want nil", err)
	}
}

func TestGrantMissingDocument(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	err := env.grant.Grant(context.Background(), "no-such-doc", 1, 1)
	if !isNotFoundErr(err) {
		t.Errorf("Grant on missing document: got %v, want NotFoundError", err)
	}
}

func TestSyncGrantsAppliesExactDiff(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()
	doc := env.addDocument(t, "Financials")

	a := env.addUser(t, "a@fund.example", true)
	b := env.addUser(t, "b@fund.example", true)
	cUser := env.addUser(t, "c@fund.example", true)

	// A already holds a grant; syncing to {A,B,C} must insert exactly B and
	// C and delete nothing.
	if err := env.grant.Grant(ctx, doc.ID, a, 1); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	insertsBefore := env.grants.creates
	deletesBefore := env.grants.deletes

	if err := env.grant.SyncGrants(ctx, doc.ID, []uint{a, b, cUser}, 1); err != nil {
		t.Fatalf("SyncGrants: %v", err)
	}

	if got := env.grants.creates - insertsBefore; got != 2 {
		t.Errorf("inserts: got %d, want 2", got)
	}
	if got := env.grants.deletes - deletesBefore; got != 0 {
		t.Errorf("deletes: got %d, want 0", got)
	}

	userIDs, _ := env.grant.ListGrantedUserIDs(ctx, doc.ID)
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	want := []uint{a, b, cUser}
	if len(userIDs) != len(want) {
		t.Fatalf("grant set: got %v, want %v", userIDs, want)
	}
	for i := range want {
		if userIDs[i] != want[i] {
			t.Errorf("grant set: got %v, want %v", userIDs, want)
			break
		}
	}
}

func TestSyncGrantsRemovesUndesired(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()
	doc := env.addDocument(t, "Financials")

	a := env.addUser(t, "a@fund.example", true)
	b := env.addUser(t, "b@fund.example", true)

	if err := env.grant.SyncGrants(ctx, doc.ID, []uint{a, b}, 1); err != nil {
		t.Fatalf("SyncGrants: %v", err)
	}
	if err := env.grant.SyncGrants(ctx, doc.ID, []uint{b}, 1); err != nil {
		t.Fatalf("SyncGrants shrink: %v", err)
	}

	userIDs, _ := env.grant.ListGrantedUserIDs(ctx, doc.ID)
	if len(userIDs) != 1 || userIDs[0] != b {
		t.Errorf("grant set after shrink: got %v, want [%d]", userIDs, b)
	}
}

func TestSyncGrantsUnchangedSetWritesNothing(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()
	doc := env.addDocument(t, "Financials")
	a := env.addUser(t, "a@fund.example", true)

	if err := env.grant.SyncGrants(ctx, doc.ID, []uint{a}, 1); err != nil {
		t.Fatalf("SyncGrants: %v", err)
	}
	inserts, deletes := env.grants.creates, env.grants.deletes

	if err := env.grant.SyncGrants(ctx, doc.ID, []uint{a}, 1); err != nil {
		t.Fatalf("repeat SyncGrants: %v", err)
	}
	if env.grants.creates != inserts || env.grants.deletes != deletes {
		t.Errorf("writes on unchanged sync: inserts %d->%d, deletes %d->%d",
			inserts, env.grants.creates, deletes, env.grants.deletes)
	}
}

func TestAssignAllDocumentsSkipsHeldGrants(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	d1 := env.addDocument(t, "One")
	d2 := env.addDocument(t, "Two")
	env.addDocument(t, "Three")
	userID := env.addUser(t, "a@fund.example", true)

	if err := env.grant.Grant(ctx, d1.ID, userID, 1); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	insertsBefore := env.grants.creates

	added, err := env.grant.AssignAllDocumentsToUser(ctx, userID, 1)
	if err != nil {
		t.Fatalf("AssignAllDocumentsToUser: %v", err)
	}
	if added != 2 {
		t.Errorf("added: got %d, want 2", added)
	}
	if got := env.grants.creates - insertsBefore; got != 2 {
		t.Errorf("inserts: got %d, want 2", got)
	}

	held, _ := env.grants.ListByUser(ctx, userID)
	if len(held) != 3 {
		t.Errorf("grants held: got %d, want 3", len(held))
	}
	if _, err := env.grants.Get(ctx, d2.ID, userID); err != nil {
		t.Errorf("expected grant on %s: %v", d2.ID, err)
	}
}
