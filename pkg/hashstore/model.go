package hashstore

import (
	"time"

	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/uptrace/bun"
)

// TableName is the hash record table
const TableName = "file_hashes"

// hashRow is the on-disk layout. created holds unix nanoseconds so the
// freshness comparison against file mtimes is exact.
type hashRow struct {
	bun.BaseModel `bun:"table:file_hashes"`

	Created    int64  `bun:"created,notnull"`
	Hash       string `bun:"hash,pk"`
	Path       string `bun:"path,pk"`
	SourceFile bool   `bun:"source_file,notnull"`
}

func (r hashRow) record() types.HashRecord {
	return types.HashRecord{
		Hash:    r.Hash,
		Path:    r.Path,
		Kind:    types.FileKindFromBool(r.SourceFile),
		Created: time.Unix(0, r.Created),
	}
}

type cacheKey struct {
	path  string
	kind  types.FileKind
	mtime int64
}
