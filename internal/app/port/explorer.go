package port

import (
	"context"

	"ens_manager/internal/domain/entity"
)

// ExplorerClient reconstructs historical transactions for a name from a
// block-explorer account API. Implementations filter the registry's and
// resolver's transaction lists down to those whose input data references
// the name's node hash.
type ExplorerClient interface {
	TransactionHistory(ctx context.Context, registryAddr, resolverAddr, nodeHex string) ([]entity.ExplorerTransaction, error)
}
