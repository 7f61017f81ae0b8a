package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	poolsDir = "pools"
	gcPeriod = 30 * time.Minute
)

type repoManager struct {
	store          *badgerhold.Store
	poolRepository domain.PoolRepository
	stopGC         func()
}

// NewRepoManager opens (or creates if not exists) the badger store under
// the given base directory. An empty base directory makes the store live in
// memory only.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, poolsDir)
	}

	store, stopGC, err := OpenStore(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening pools db: %w", err)
	}

	return &repoManager{
		store:          store,
		poolRepository: NewPoolRepositoryImpl(store),
		stopGC:         stopGC,
	}, nil
}

func (r *repoManager) PoolRepository() domain.PoolRepository {
	return r.poolRepository
}

func (r *repoManager) Close() {
	r.stopGC()
	r.store.Close()
}

// OpenStore opens a badgerhold store in the given directory, or in memory
// if empty. On-disk stores get their value log garbage collected
// periodically until the returned stop function is called.
func OpenStore(
	dbDir string, logger badger.Logger,
) (*badgerhold.Store, func(), error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, nil, err
	}

	if isInMemory {
		return db, func() {}, nil
	}

	ticker := time.NewTicker(gcPeriod)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}
	}()

	stop := func() {
		ticker.Stop()
		close(done)
	}
	return db, stop, nil
}
