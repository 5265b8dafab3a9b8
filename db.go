package tabular

import (
	"io"
	"os"
	"time"

	"github.com/openkvlab/boltdb"
)

// DB persists materialized tables and csv directives in a bolt file.
type DB struct {
	db       *boltdb.DB
	maUn     MarshalUnmarshaler
	stats    *storeStats
	openedAt time.Time
}

type DBOptions = boltdb.Options

// OpenDB opens a store that encodes rows and metadata with msgpack.
func OpenDB(path string, mode os.FileMode, options *DBOptions) (*DB, error) {
	return OpenDBWithCodec(MsgpackMaUn, path, mode, options)
}

func OpenDBWithCodec(maUn MarshalUnmarshaler, path string, mode os.FileMode, options *DBOptions) (*DB, error) {
	if maUn == nil {
		return nil, ErrMissingArgument("codec")
	}
	bdb, err := boltdb.Open(path, mode, options)
	if err != nil {
		return nil, err
	}
	return &DB{
		db:       bdb,
		maUn:     maUn,
		stats:    &storeStats{},
		openedAt: time.Now(),
	}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Path() string {
	return d.db.Path()
}

func (d *DB) Begin(writable bool) (*Tx, error) {
	tx, err := d.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	d.stats.beginTx(writable)

	return &Tx{
		tx:    tx,
		maUn:  d.maUn,
		stats: d.stats,
	}, nil
}

// managed runs fn in a transaction whose lifetime bolt controls.
func (d *DB) managed(writable bool, fn func(*Tx) error) func(*boltdb.Tx) error {
	return func(btx *boltdb.Tx) error {
		d.stats.beginTx(writable)
		defer d.stats.endTx()
		return fn(&Tx{
			tx:      btx,
			maUn:    d.maUn,
			stats:   d.stats,
			managed: true,
		})
	}
}

func (d *DB) View(fn func(*Tx) error) error {
	return d.db.View(d.managed(false, fn))
}

func (d *DB) Update(fn func(*Tx) error) error {
	return d.db.Update(d.managed(true, fn))
}

// Batch runs fn in a write transaction possibly shared with concurrent Batch calls. fn may run
// more than once.
func (d *DB) Batch(fn func(*Tx) error) error {
	return d.db.Batch(d.managed(true, fn))
}

// Stats returns a snapshot of the store statistics.
func (d *DB) Stats() Stats {
	return d.stats.snapshot(d.openedAt, d.db.Stats())
}

func (d *DB) ResetStats() {
	d.stats.reset()
}

// Save stores t under name in its own transaction.
func (d *DB) Save(name string, t Table) error {
	return d.Update(func(tx *Tx) error {
		return tx.Put(name, t)
	})
}

// Load reads the table stored under name in its own transaction.
func (d *DB) Load(name string) (*MaterializedTable, error) {
	var result *MaterializedTable
	err := d.View(func(tx *Tx) error {
		t, err := tx.Load(name)
		result = t
		return err
	})
	return result, err
}

// Snapshot writes a consistent copy of the whole store to w.
func (d *DB) Snapshot(w io.Writer) (int64, error) {
	var n int64
	err := d.db.View(func(btx *boltdb.Tx) error {
		var err error
		n, err = btx.WriteTo(w)
		return err
	})
	return n, err
}

func (d *DB) SetMaxBatchDelay(delay time.Duration) {
	d.db.MaxBatchDelay = delay
}

func (d *DB) SetMaxBatchSize(size int) {
	d.db.MaxBatchSize = size
}

func (d *DB) MaxBatchDelay() time.Duration {
	return d.db.MaxBatchDelay
}

func (d *DB) MaxBatchSize() int {
	return d.db.MaxBatchSize
}
