package history

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

const bucketName = "history"

// Recorder appends distribution records and reads them back.
type Recorder struct {
	records orm.ModelBucket
	byOwner orm.ModelBucket
	seq     orm.Sequence
}

// NewRecorder returns a recorder using the default buckets.
func NewRecorder() *Recorder {
	return &Recorder{
		records: orm.NewModelBucket(bucketName, &Record{}),
		byOwner: orm.NewModelBucket("history_idx", &index{}),
		seq:     orm.NewSequence(bucketName, "id"),
	}
}

// Append stores the record at the next free position and returns that
// position. Block time and height are taken from the context when the
// record does not set them.
func (r *Recorder) Append(ctx context.Context, db ledger.KVStore, rec Record) (uint64, error) {
	if rec.Timestamp == 0 {
		if now, err := ledger.BlockTime(ctx); err == nil {
			rec.Timestamp = now.Unix()
		}
	}
	if rec.Height == 0 {
		rec.Height, _ = ledger.GetHeight(ctx)
	}

	next, err := r.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "history sequence")
	}
	pos := uint64(next - 1)
	if err := r.records.Put(db, orm.EncodeSequence(int64(pos)), &rec); err != nil {
		return 0, errors.Wrap(err, "cannot store record")
	}

	var idx index
	switch err := r.byOwner.One(db, rec.Beneficiary, &idx); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return 0, errors.Wrap(err, "cannot load beneficiary index")
	}
	idx.Records = append(idx.Records, pos)
	if err := r.byOwner.Put(db, rec.Beneficiary, &idx); err != nil {
		return 0, errors.Wrap(err, "cannot store beneficiary index")
	}
	return pos, nil
}

// HistoryOf returns positions of all records paid to given beneficiary, in
// append order.
func (r *Recorder) HistoryOf(db ledger.ReadOnlyKVStore, beneficiary ledger.Address) ([]uint64, error) {
	var idx index
	switch err := r.byOwner.One(db, beneficiary, &idx); {
	case err == nil:
		return idx.Records, nil
	case errors.ErrNotFound.Is(err):
		return []uint64{}, nil
	default:
		return nil, err
	}
}

// Count returns the total number of records.
func (r *Recorder) Count(db ledger.ReadOnlyKVStore) (uint64, error) {
	n, err := r.seq.Latest(db)
	if err != nil {
		return 0, errors.Wrap(err, "history sequence")
	}
	return uint64(n), nil
}

// Get returns the record stored at given position.
func (r *Recorder) Get(db ledger.ReadOnlyKVStore, pos uint64) (*Record, error) {
	var rec Record
	if err := r.records.One(db, orm.EncodeSequence(int64(pos)), &rec); err != nil {
		return nil, errors.Wrapf(err, "record %d", pos)
	}
	return &rec, nil
}
