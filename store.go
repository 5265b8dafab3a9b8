package tabular

import (
	"github.com/openkvlab/boltdb"
)

var (
	metaKey    = []byte("meta")
	dataBucket = []byte("data")
)

// storage is the bucket of one stored table: a metadata record and a data bucket of rows.
type storage struct {
	bucket *boltdb.Bucket
	rows   *dataStorage
	maUn   MarshalUnmarshaler
}

func newStorage(root *boltdb.Bucket, name string, maUn MarshalUnmarshaler) (*storage, error) {
	bucket, err := root.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, err
	}
	rows, err := newData(bucket, maUn)
	if err != nil {
		return nil, err
	}
	return &storage{
		bucket: bucket,
		rows:   rows,
		maUn:   maUn,
	}, nil
}

func loadStorage(root *boltdb.Bucket, name string, maUn MarshalUnmarshaler) (*storage, error) {
	bucket := root.Bucket([]byte(name))
	if bucket == nil {
		return nil, ErrTableNotFound(name)
	}
	rows := loadData(bucket, maUn)
	if rows == nil {
		return nil, ErrTableNotFound(name)
	}
	return &storage{
		bucket: bucket,
		rows:   rows,
		maUn:   maUn,
	}, nil
}

func deleteStorage(root *boltdb.Bucket, name string) error {
	return root.DeleteBucket([]byte(name))
}

func (s *storage) saveMetadata(meta *Metadata) error {
	data, err := s.maUn.Marshal(meta)
	if err != nil {
		return err
	}
	return s.bucket.Put(metaKey, data)
}

func (s *storage) loadMetadata() (*Metadata, error) {
	data := s.bucket.Get(metaKey)
	if data == nil {
		return &Metadata{}, nil
	}
	var meta Metadata
	if err := s.maUn.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
