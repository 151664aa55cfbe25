package stores

import (
	"context"
	"errors"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
)

func testDeps(store kv.Store) Deps {
	return Deps{Store: store, Logger: logging.NewDiscardLogger(), ProfileID: "test-profile"}
}

func product(id string, price float64) catalog.ProductRef {
	return catalog.ProductRef{ID: id, Name: "Product " + id, Price: price}
}

// failingStore reads through to a MemoryStore but refuses writes
type failingStore struct {
	*kv.MemoryStore
}

var errWriteRefused = errors.New("write refused")

func (failingStore) Set(context.Context, string, string) error { return errWriteRefused }
func (failingStore) Delete(context.Context, string) error      { return errWriteRefused }
