package open

import (
	"context"
	"fmt"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/store/boltstore"
	"github.com/cognicore/sezam/pkg/sezam/store/memstore"
	"github.com/cognicore/sezam/pkg/sezam/store/sqlite"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Store opens the store for driver at path. The memory driver ignores path.
func Store(ctx context.Context, driver, path string) (store.Store, error) {
	switch driver {
	case DriverSQLite, "":
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite store needs a db path", internalerr.ErrInvalidConfig)
		}
		st, err := sqlite.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
		}
		return st, nil
	case DriverBolt:
		if path == "" {
			return nil, fmt.Errorf("%w: bolt store needs a db path", internalerr.ErrInvalidConfig)
		}
		st, err := boltstore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
		}
		return st, nil
	case DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, driver)
	}
}
