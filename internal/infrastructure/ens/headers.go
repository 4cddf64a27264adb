package ens

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// headerTimestamps memoizes block timestamps during one log-decoding pass,
// so several events in the same block cost a single header fetch.
type headerTimestamps struct {
	backend *ethclient.Client
	seen    map[uint64]time.Time
}

func newHeaderTimestamps(backend *ethclient.Client) *headerTimestamps {
	return &headerTimestamps{backend: backend, seen: make(map[uint64]time.Time)}
}

// at returns the UTC timestamp of the block, or the zero time when the
// header cannot be fetched; a missing timestamp never fails a log query.
func (h *headerTimestamps) at(ctx context.Context, blockNumber uint64) time.Time {
	if ts, ok := h.seen[blockNumber]; ok {
		return ts
	}
	header, err := h.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}
	}
	ts := time.Unix(int64(header.Time), 0).UTC()
	h.seen[blockNumber] = ts
	return ts
}
