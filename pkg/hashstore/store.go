package hashstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// FreshnessMargin is how much newer than a file's mtime a record must be
// to be trusted without re-reading the file. Filesystem timestamps are
// coarse, so a file rewritten right after a record was made can carry an
// mtime equal to or slightly below the record's creation time.
const FreshnessMargin = time.Second

// Store is an open hash record database
type Store struct {
	db *bun.DB
	fs types.FS

	// mu serializes database access and guards cache
	mu    sync.Mutex
	cache map[cacheKey]string

	now    func() time.Time
	margin time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the timestamp source for new records
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithFreshnessMargin overrides FreshnessMargin
func WithFreshnessMargin(d time.Duration) Option {
	return func(s *Store) { s.margin = d }
}

// Open opens (creating if needed) the hash database at dbPath. File content
// is read through fs.
func Open(ctx context.Context, fs types.FS, dbPath string, opts ...Option) (*Store, error) {
	logger := logging.GetLogger("hashstore")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrHashStore, "cannot create hash store directory").
			WithDetail("path", dbPath)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHashStore, "cannot open hash store").
			WithDetail("path", dbPath)
	}
	// Single writer: one connection means inserts never race on the primary key
	sqlDB.SetMaxOpenConns(1)

	s := &Store{
		db:     bun.NewDB(sqlDB, sqlitedialect.New()),
		fs:     fs,
		cache:  make(map[cacheKey]string),
		now:    time.Now,
		margin: FreshnessMargin,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = s.db.Close()
		return nil, errors.Wrap(err, errors.ErrHashStore, "cannot initialize hash store").
			WithDetail("path", dbPath)
	}

	logger.Debug().Str("path", dbPath).Msg("Hash store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*hashRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}
	_, err := s.db.NewCreateIndex().
		Model((*hashRow)(nil)).
		Index("file_hashes_path_idx").
		Column("path", "created").
		IfNotExists().
		Exec(ctx)
	return err
}

// Close releases the database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Record inserts a hash record. Inserting an existing (hash, path) pair is
// a no-op and keeps the original timestamp.
func (s *Store) Record(ctx context.Context, hash, path string, kind types.FileKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked(ctx, hash, path, kind, s.now(), false)
}

// recordLocked inserts a record created at created. With refresh an
// existing (hash, path) row moves forward to created: the caller read the
// file at that time, so the hash held then.
func (s *Store) recordLocked(ctx context.Context, hash, path string, kind types.FileKind, created time.Time, refresh bool) error {
	row := &hashRow{
		Created:    created.UnixNano(),
		Hash:       hash,
		Path:       path,
		SourceFile: kind.IsSource(),
	}
	q := s.db.NewInsert().Model(row)
	if refresh {
		q = q.On("CONFLICT (hash, path) DO UPDATE").
			Set("created = MAX(created, EXCLUDED.created)")
	} else {
		q = q.On("CONFLICT DO NOTHING")
	}
	if _, err := q.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrHashStore, "failed to insert hash record").
			WithDetail("path", path)
	}
	return nil
}

// AnySourceHashMatches reports whether hash was ever recorded as source
// content at path
func (s *Store) AnySourceHashMatches(ctx context.Context, hash, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anySourceHashMatchesLocked(ctx, hash, path)
}

func (s *Store) anySourceHashMatchesLocked(ctx context.Context, hash, path string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*hashRow)(nil)).
		Where("hash = ?", hash).
		Where("path = ?", path).
		Where("source_file = ?", true).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrHashStore, "failed to query hash records").
			WithDetail("path", path)
	}
	return exists, nil
}

// ContentHashOf returns the content hash of path. The newest record for
// path created at least FreshnessMargin after mtime is trusted; otherwise
// the file is hashed and the result recorded.
func (s *Store) ContentHashOf(ctx context.Context, path string, kind types.FileKind, mtime time.Time) (string, error) {
	return s.contentHashOf(ctx, path, kind, mtime, true)
}

func (s *Store) contentHashOf(ctx context.Context, path string, kind types.FileKind, mtime time.Time, write bool) (string, error) {
	key := cacheKey{path: path, kind: kind, mtime: mtime.UnixNano()}

	s.mu.Lock()
	if h, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return h, nil
	}
	h, err := s.freshHashLocked(ctx, path, kind, mtime)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if h != "" {
		if write {
			s.cache[key] = h
		}
		s.mu.Unlock()
		return h, nil
	}
	s.mu.Unlock()

	// Hash outside the lock so workers read files in parallel. The record
	// is dated before the read so a concurrent edit can never look older.
	readAt := s.now()
	h, err = hashutil.CalculateFileChecksum(s.fs, path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileHash, "failed to hash file").
			WithDetail("path", path)
	}
	if !write {
		return h, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recordLocked(ctx, h, path, kind, readAt, true); err != nil {
		return "", err
	}
	s.cache[key] = h
	return h, nil
}

// freshHashLocked returns the newest recorded hash for path created at
// least the freshness margin after mtime, or "" if there is none. A record
// inside the margin, including one with an equal timestamp, is not trusted.
func (s *Store) freshHashLocked(ctx context.Context, path string, kind types.FileKind, mtime time.Time) (string, error) {
	var rows []hashRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("path = ?", path).
		Where("source_file = ?", kind.IsSource()).
		Where("created >= ?", mtime.Add(s.margin).UnixNano()).
		OrderExpr("created DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrHashStore, "failed to query hash records").
			WithDetail("path", path)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Hash, nil
}

// Forget drops cached hashes for path. Callers that rewrite a file must
// forget it: the new mtime may be indistinguishable from the old one.
func (s *Store) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.cache {
		if k.path == path {
			delete(s.cache, k)
		}
	}
}

// Prune deletes target records older than window. Source records are never
// deleted.
func (s *Store) Prune(ctx context.Context, window time.Duration) (int64, error) {
	logger := logging.GetLogger("hashstore")
	cutoff := s.now().Add(-window).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.NewDelete().
		Model((*hashRow)(nil)).
		Where("source_file = ?", false).
		Where("created < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrHashStore, "failed to prune hash records")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrHashStore, "failed to prune hash records")
	}

	// Cached hashes may refer to deleted rows; they are still correct
	// content hashes, so the cache is kept.
	logger.Info().Int64("deleted", n).Dur("window", window).Msg("Pruned target hash records")
	return n, nil
}

// Records returns every record for path, oldest first
func (s *Store) Records(ctx context.Context, path string) ([]types.HashRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []hashRow
	if err := s.db.NewSelect().
		Model(&rows).
		Where("path = ?", path).
		OrderExpr("created ASC, hash ASC").
		Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrHashStore, "failed to list hash records").
			WithDetail("path", path)
	}

	out := make([]types.HashRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

// View returns a read-only hash source over the store
func (s *Store) View() *View {
	return &View{store: s}
}

// View answers the same queries as Store without writing records
type View struct {
	store *Store
}

// ContentHashOf is Store.ContentHashOf without recording computed hashes
func (v *View) ContentHashOf(ctx context.Context, path string, kind types.FileKind, mtime time.Time) (string, error) {
	return v.store.contentHashOf(ctx, path, kind, mtime, false)
}

// AnySourceHashMatches is Store.AnySourceHashMatches
func (v *View) AnySourceHashMatches(ctx context.Context, hash, path string) (bool, error) {
	return v.store.AnySourceHashMatches(ctx, hash, path)
}
