package memo

import (
	"io"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/memodesk/memodesk/internal/appdir"
	"github.com/memodesk/memodesk/internal/config"
	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/telemetry"
)

// Options carries the collaborators a Service reports to. Zero values are
// replaced with silent defaults.
type Options struct {
	Bus     *event.Bus
	Metrics *telemetry.Metrics
	Logger  *telemetry.Logger
}

// Service is the long-lived memo handle shared by the CLI, HTTP and tool
// surfaces. It is safe for concurrent use when its backend is.
type Service struct {
	backend Backend
	bus     *event.Bus
	metrics *telemetry.Metrics
	logger  *telemetry.Logger
}

// NewService wraps a backend.
func NewService(backend Backend, opts Options) *Service {
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.NewLoggerWith("error", "text", io.Discard)
	}
	return &Service{
		backend: backend,
		bus:     opts.Bus,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
}

// OpenBackend builds the backend named by the storage config, resolving the
// data directory for file-backed drivers.
func OpenBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case DriverCGO, DriverPureGo:
		dir, err := appdir.Resolve(cfg.DataDir)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInitialization, "failed to prepare data directory", err).
				WithSuggestion("Set storage.data_dir in memodesk.yaml or pass --data-dir")
		}
		return NewSQLiteStore(cfg.Driver, filepath.Join(dir, cfg.File))
	default:
		return nil, apperrors.Newf(apperrors.CodeInitialization, "unsupported storage driver: %s", cfg.Driver)
	}
}

// Open builds the backend from config and wraps it in a Service.
func Open(cfg *config.Config, opts Options) (*Service, error) {
	backend, err := OpenBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	svc := NewService(backend, opts)
	svc.logger.Debug("Memo store opened", "driver", cfg.Storage.Driver, "path", backend.Path())
	svc.bus.Emitf(event.StoreOpened, map[string]interface{}{
		"driver": cfg.Storage.Driver,
		"path":   backend.Path(),
	})
	return svc, nil
}

// Backend exposes the underlying backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// Metrics exposes the operation metrics.
func (s *Service) Metrics() *telemetry.Metrics {
	return s.metrics
}

// Close closes the backend.
func (s *Service) Close() error {
	err := s.backend.Close()
	s.bus.Emitf(event.StoreClosed, map[string]interface{}{"path": s.backend.Path()})
	return err
}

// Create stores a new memo.
func (s *Service) Create(req CreateRequest) (*Memo, error) {
	if err := validText(req.Title, req.Content); err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := s.backend.Create(req.Title, req.Content)
	s.observe("create", start, err)
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated()
	s.logger.Debug("Memo created", "memo_id", m.IDValue())
	s.bus.Emitf(event.MemoCreated, memoData(m))
	s.metrics.Flush(string(event.MemoCreated), nil)
	return m, nil
}

// List returns every memo, most recently updated first.
func (s *Service) List() ([]*Memo, error) {
	start := time.Now()
	memos, err := s.backend.List()
	s.observe("list", start, err)
	if err != nil {
		return nil, err
	}
	s.metrics.IncReads()
	return memos, nil
}

// Get returns the memo or nil when absent.
func (s *Service) Get(id int64) (*Memo, error) {
	start := time.Now()
	m, err := s.backend.Get(id)
	s.observe("get", start, err)
	if err != nil {
		return nil, err
	}
	s.metrics.IncReads()
	return m, nil
}

// Update rewrites title and content of an existing memo.
func (s *Service) Update(req UpdateRequest) (*Memo, error) {
	if err := validText(req.Title, req.Content); err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := s.backend.Update(req.ID, req.Title, req.Content)
	s.observe("update", start, err)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUpdated()
	s.logger.Debug("Memo updated", "memo_id", m.IDValue())
	s.bus.Emitf(event.MemoUpdated, memoData(m))
	s.metrics.Flush(string(event.MemoUpdated), nil)
	return m, nil
}

// Delete removes a memo and reports whether it existed.
func (s *Service) Delete(id int64) (bool, error) {
	start := time.Now()
	deleted, err := s.backend.Delete(id)
	s.observe("delete", start, err)
	if err != nil {
		return false, err
	}

	if deleted {
		s.metrics.IncDeleted()
		s.logger.Debug("Memo deleted", "memo_id", id)
		s.bus.Emitf(event.MemoDeleted, map[string]interface{}{"memo_id": id})
		s.metrics.Flush(string(event.MemoDeleted), nil)
	}
	return deleted, nil
}

// Search returns memos whose title or content matches query.
func (s *Service) Search(query string) ([]*Memo, error) {
	start := time.Now()
	memos, err := s.backend.Search(query)
	s.observe("search", start, err)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSearches()
	s.bus.Emitf(event.MemoSearched, map[string]interface{}{
		"query":   query,
		"results": len(memos),
	})
	return memos, nil
}

// Stats returns the memo count, database path and size.
func (s *Service) Stats() (*Stats, error) {
	start := time.Now()
	st, err := s.backend.Stats()
	s.observe("stats", start, err)
	if err != nil {
		return nil, err
	}
	s.metrics.IncReads()
	return st, nil
}

func (s *Service) observe(op string, start time.Time, err error) {
	s.metrics.RecordLatency(time.Since(start))
	if err != nil && !apperrors.IsNotFound(err) {
		s.metrics.IncErrors()
		s.logger.Error("Memo store operation failed", "op", op, "error", err)
	}
}

func validText(title, content string) error {
	if !utf8.ValidString(title) {
		return apperrors.New(apperrors.CodeInvalidInput, "title is not valid UTF-8")
	}
	if !utf8.ValidString(content) {
		return apperrors.New(apperrors.CodeInvalidInput, "content is not valid UTF-8")
	}
	return nil
}

func memoData(m *Memo) map[string]interface{} {
	return map[string]interface{}{
		"memo_id":    m.IDValue(),
		"title":      m.Title,
		"updated_at": m.UpdatedAt,
	}
}
