//go:build integration

package integration

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/testutil"
)

func TestConcurrentWritersShareOneHandle(t *testing.T) {
	h := testutil.NewSQLiteHarness(t, memo.DriverCGO)

	const writers, perWriter = 8, 25
	var g errgroup.Group

	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				m, err := h.Service.Create(memo.CreateRequest{Title: fmt.Sprintf("w%d-%d", w, i)})
				if err != nil {
					return err
				}
				if _, err := h.Service.Update(memo.UpdateRequest{ID: *m.ID, Title: m.Title, Content: "touched"}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent write failed: %v", err)
	}

	st, err := h.Service.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalMemos != writers*perWriter {
		t.Errorf("expected %d memos, got %d", writers*perWriter, st.TotalMemos)
	}
	if got := h.EventCount(event.MemoUpdated); got != writers*perWriter {
		t.Errorf("expected %d update events, got %d", writers*perWriter, got)
	}

	memos, err := h.Service.List()
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(memos); i++ {
		if memos[i-1].UpdatedAt < memos[i].UpdatedAt {
			t.Fatalf("list not ordered by updated_at at %d", i)
		}
	}
}
