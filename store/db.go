package store

import (
	"context"

	"github.com/lumen-ui/state-core/log"
	"github.com/xujiajun/nutsdb"
)

type DBOptions struct {
	//Dir stores the db files
	Dir string
	//Session names the bucket holding this session's state
	Session string
	//SegmentSize overrides the nutsdb default when > 0
	SegmentSize int64
}

// DB is a durable Store on nutsdb, one bucket per session name. A session
// with no bucket yet restores as empty, not as an error.
type DB struct {
	logger  log.Logger
	db      *nutsdb.DB
	session string
}

func NewDB(logger log.Logger, options DBOptions) (*DB, error) {
	opts := nutsdb.DefaultOptions
	opts.Dir = options.Dir
	if options.SegmentSize > 0 {
		opts.SegmentSize = options.SegmentSize
	}
	db, err := nutsdb.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DB{
		logger:  logger,
		db:      db,
		session: options.Session,
	}, nil
}

func (d *DB) GetPersistedState(_ context.Context) (map[string][]byte, error) {
	state := map[string][]byte{}
	if err := d.db.View(func(tx *nutsdb.Tx) error {
		entries, err := tx.GetAll(d.session)
		if err != nil {
			if err == nutsdb.ErrBucketEmpty {
				d.logger.Debugf("no prior state for session %s", d.session)
				return nil
			}
			return err
		}
		for _, entry := range entries {
			payload := make([]byte, len(entry.Value))
			copy(payload, entry.Value)
			state[string(entry.Key)] = payload
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return state, nil
}

func (d *DB) PersistState(_ context.Context, state map[string][]byte) error {
	return d.db.Update(func(tx *nutsdb.Tx) error {
		for key, payload := range state {
			if err := tx.Put(d.session, []byte(key), payload, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) Close() error {
	return d.db.Close()
}
