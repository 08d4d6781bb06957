package services

import (
	"context"
	"errors"
	"testing"

	"github.com/crestline-ir/internal/db/models"
)

func TestAuditRecordAppends(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	env.audit.Record(context.Background(), 7, models.ActionNdaReset, map[string]interface{}{"user_id": 3})

	actions := env.activity.actions()
	if len(actions) != 1 || actions[0] != models.ActionNdaReset {
		t.Errorf("recorded actions: got %v, want [nda_reset]", actions)
	}
}

func TestAuditRecordSwallowsAppendFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.activity.appendErr = errors.New("disk full")

	// Must not panic or surface anything; auditing never fails the action
	// it describes.
	env.audit.Record(context.Background(), 7, models.ActionNdaReset, nil)
}

func TestAuditListPaginates(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		env.audit.Record(ctx, 1, models.ActionGrantAdded, map[string]interface{}{"n": i})
	}

	page, err := env.audit.List(ctx, 2, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("total: got %d, want 7", page.Total)
	}
	if len(page.Entries) != 3 {
		t.Errorf("page size: got %d, want 3", len(page.Entries))
	}
	if page.Page != 2 || page.PerPage != 3 {
		t.Errorf("page meta: got %d/%d, want 2/3", page.Page, page.PerPage)
	}
}

func TestAuditListClampsPageParams(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	env.audit.Record(ctx, 1, models.ActionGrantAdded, nil)

	page, err := env.audit.List(ctx, -1, 100000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page: got %d, want 1", page.Page)
	}
	if page.PerPage != 25 {
		t.Errorf("per_page: got %d, want 25", page.PerPage)
	}
}
