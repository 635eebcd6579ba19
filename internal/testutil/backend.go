package testutil

import (
	"errors"

	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/memo"
)

// ErrEngine is the cause wrapped by every FailingBackend error.
var ErrEngine = errors.New("disk I/O error")

// FailingBackend is a memo.Backend whose every operation fails with a
// STORAGE error, for exercising error paths above the store.
type FailingBackend struct {
	Closed bool
}

var _ memo.Backend = (*FailingBackend)(nil)

func (b *FailingBackend) fail(op string) error {
	return apperrors.Wrap(apperrors.CodeStorage, "failed to "+op, ErrEngine)
}

func (b *FailingBackend) Create(string, string) (*memo.Memo, error) {
	return nil, b.fail("create memo")
}

func (b *FailingBackend) List() ([]*memo.Memo, error) { return nil, b.fail("list memos") }

func (b *FailingBackend) Get(int64) (*memo.Memo, error) { return nil, b.fail("get memo") }

func (b *FailingBackend) Update(int64, string, string) (*memo.Memo, error) {
	return nil, b.fail("update memo")
}

func (b *FailingBackend) Delete(int64) (bool, error) { return false, b.fail("delete memo") }

func (b *FailingBackend) Search(string) ([]*memo.Memo, error) {
	return nil, b.fail("search memos")
}

func (b *FailingBackend) Stats() (*memo.Stats, error) { return nil, b.fail("read stats") }

func (b *FailingBackend) Path() string { return "failing" }

func (b *FailingBackend) Close() error {
	b.Closed = true
	return nil
}
