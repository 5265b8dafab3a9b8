package tabular

import (
	"iter"
	"sync/atomic"

	"github.com/openkvlab/boltdb"
)

// dataStorage keeps rows under order-preserving sequence keys, so a cursor returns them in
// insertion order.
type dataStorage struct {
	bucket *boltdb.Bucket
	maUn   MarshalUnmarshaler
}

func newData(parentBucket *boltdb.Bucket, maUn MarshalUnmarshaler) (*dataStorage, error) {
	bucket, err := parentBucket.CreateBucketIfNotExists(dataBucket)
	if err != nil {
		return nil, err
	}
	return &dataStorage{
		bucket: bucket,
		maUn:   maUn,
	}, nil
}

func loadData(parentBucket *boltdb.Bucket, maUn MarshalUnmarshaler) *dataStorage {
	bucket := parentBucket.Bucket(dataBucket)
	if bucket == nil {
		return nil
	}
	return &dataStorage{
		bucket: bucket,
		maUn:   maUn,
	}
}

// rowKey encodes a bucket sequence so that keys sort in insertion order.
func rowKey(seq uint64) ([]byte, error) {
	return orderedMaUn.Marshal([]any{seq})
}

func (d *dataStorage) insert(row *Row) error {
	seq, err := d.bucket.NextSequence()
	if err != nil {
		return err
	}
	value, err := d.maUn.Marshal(row.data)
	if err != nil {
		return err
	}
	key, err := rowKey(seq)
	if err != nil {
		return err
	}
	return d.bucket.Put(key, value)
}

func (d *dataStorage) decode(v []byte) (*Row, error) {
	var data map[string]string
	if err := d.maUn.Unmarshal(v, &data); err != nil {
		return nil, err
	}
	return rowFromMap(data), nil
}

func (d *dataStorage) all() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		c := d.bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			row, err := d.decode(v)
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// cursor walks the bucket one row at a time on behalf of a streamed table, counting the rows it
// decodes in read.
func (d *dataStorage) cursor(read *atomic.Int64) cursor {
	c := d.bucket.Cursor()
	started := false
	return &funcCursor{
		nextFn: func() (*Row, bool, error) {
			var k, v []byte
			if !started {
				k, v = c.First()
				started = true
			} else {
				k, v = c.Next()
			}
			if k == nil {
				return nil, false, nil
			}
			row, err := d.decode(v)
			if err != nil {
				return nil, false, err
			}
			read.Add(1)
			return row, true, nil
		},
	}
}
