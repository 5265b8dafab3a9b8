package tabular

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openkvlab/boltdb"
	boltdb_errors "github.com/openkvlab/boltdb/errors"
)

var (
	tablesBucket = []byte("tables")
	csvBucket    = []byte("csv")
)

type Tx struct {
	tx      *boltdb.Tx
	maUn    MarshalUnmarshaler
	stats   *storeStats
	managed bool
	ended   bool
}

func (tx *Tx) Commit() error {
	if tx.managed {
		panic("cannot commit a managed transaction")
	}
	tx.end()
	return tx.tx.Commit()
}

func (tx *Tx) Rollback() error {
	if tx.managed {
		panic("cannot rollback a managed transaction")
	}
	tx.end()
	return tx.tx.Rollback()
}

func (tx *Tx) end() {
	if !tx.ended {
		tx.ended = true
		tx.stats.endTx()
	}
}

func (tx *Tx) ID() int {
	return tx.tx.ID()
}

// Put stores the rows and columns of t under name, replacing any table stored there before.
// A streamed t is consumed.
func (tx *Tx) Put(name string, t Table) error {
	if t == nil {
		return ErrMissingArgument("table")
	}
	if name == "" {
		return ErrMissingArgument("name")
	}
	root, err := tx.tx.CreateBucketIfNotExists(tablesBucket)
	if err != nil {
		return err
	}
	if err := deleteStorage(root, name); err != nil && !errors.Is(err, boltdb_errors.ErrBucketNotFound) {
		return err
	}
	s, err := newStorage(root, name, tx.maUn)
	if err != nil {
		return err
	}
	start := time.Now()
	count := 0
	for row, err := range t.Rows() {
		if err != nil {
			return err
		}
		if err := s.rows.insert(row); err != nil {
			return err
		}
		count++
	}
	meta := &Metadata{
		Revision: uuid.NewString(),
		Columns:  t.Columns(),
		RowCount: count,
		SavedAt:  time.Now().UTC(),
	}
	if err := s.saveMetadata(meta); err != nil {
		return err
	}
	tx.stats.stored.Add(1)
	tx.stats.rowsWritten.Add(int64(count))
	tx.stats.putNanos.Add(int64(time.Since(start)))
	slog.Debug("stored table", "table", name, "rows", count, "revision", meta.Revision)
	return nil
}

// Load reads the table stored under name into memory.
func (tx *Tx) Load(name string) (*MaterializedTable, error) {
	start := time.Now()
	s, err := tx.loadStorage(name)
	if err != nil {
		return nil, err
	}
	meta, err := s.loadMetadata()
	if err != nil {
		return nil, err
	}
	t := &MaterializedTable{columnList: columnList{columns: meta.Columns}}
	for row, err := range s.rows.all() {
		if err != nil {
			return nil, err
		}
		t.Add(row)
	}
	tx.stats.loaded.Add(1)
	tx.stats.rowsRead.Add(int64(t.Len()))
	tx.stats.loadNanos.Add(int64(time.Since(start)))
	return t, nil
}

// Stream returns a streamed table over the rows stored under name. It is only valid while the
// transaction is open.
func (tx *Tx) Stream(name string) (*StreamedTable, error) {
	s, err := tx.loadStorage(name)
	if err != nil {
		return nil, err
	}
	meta, err := s.loadMetadata()
	if err != nil {
		return nil, err
	}
	tx.stats.loaded.Add(1)
	return newStreamed(meta.Columns, s.rows.cursor(&tx.stats.rowsRead)), nil
}

func (tx *Tx) Info(name string) (*Metadata, error) {
	s, err := tx.loadStorage(name)
	if err != nil {
		return nil, err
	}
	return s.loadMetadata()
}

func (tx *Tx) Delete(name string) error {
	root := tx.tx.Bucket(tablesBucket)
	if root == nil {
		return ErrTableNotFound(name)
	}
	if err := deleteStorage(root, name); err != nil {
		if errors.Is(err, boltdb_errors.ErrBucketNotFound) {
			return ErrTableNotFound(name)
		}
		return err
	}
	tx.stats.deleted.Add(1)
	return nil
}

// Names lists the stored tables in key order.
func (tx *Tx) Names() ([]string, error) {
	root := tx.tx.Bucket(tablesBucket)
	if root == nil {
		return nil, nil
	}
	var names []string
	err := root.ForEach(func(k, v []byte) error {
		if v == nil {
			names = append(names, string(k))
		}
		return nil
	})
	return names, err
}

// PutCsv stores directives under name.
func (tx *Tx) PutCsv(name string, c *Csv) error {
	data, err := MarshalCsv(tx.maUn, c)
	if err != nil {
		return err
	}
	bucket, err := tx.tx.CreateBucketIfNotExists(csvBucket)
	if err != nil {
		return err
	}
	if err := bucket.Put([]byte(name), data); err != nil {
		return err
	}
	tx.stats.directives.Add(1)
	return nil
}

func (tx *Tx) LoadCsv(name string) (*Csv, error) {
	bucket := tx.tx.Bucket(csvBucket)
	if bucket == nil {
		return nil, ErrCsvNotFound(name)
	}
	data := bucket.Get([]byte(name))
	if data == nil {
		return nil, ErrCsvNotFound(name)
	}
	return UnmarshalCsv(tx.maUn, data)
}

func (tx *Tx) loadStorage(name string) (*storage, error) {
	root := tx.tx.Bucket(tablesBucket)
	if root == nil {
		return nil, ErrTableNotFound(name)
	}
	return loadStorage(root, name, tx.maUn)
}
