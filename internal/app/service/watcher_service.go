package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
	"ens_manager/internal/infrastructure/configloader"
)

// EventCallback receives every new chain event observed for a watched name.
type EventCallback func(name string, event entity.ChainEvent)

// WatcherService polls the registry and resolver logs of watched names and
// records every new event in the activity log. One poll failure for a name
// leaves its cursor untouched so the missed range is retried next tick.
type WatcherService struct {
	gateways port.GatewayProvider
	activity port.ActivityTracker
	logger   port.Logger

	interval time.Duration
	callback EventCallback

	mu      sync.RWMutex
	watched map[string]uint64 // name -> next block to scan from
}

// NewWatcherService creates the watcher. callback may be nil.
func NewWatcherService(
	gateways port.GatewayProvider,
	activity port.ActivityTracker,
	l port.Logger,
	cfg *configloader.Config,
	callback EventCallback,
) *WatcherService {
	interval := time.Duration(cfg.Watcher.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &WatcherService{
		gateways: gateways,
		activity: activity,
		logger:   l,
		interval: interval,
		callback: callback,
		watched:  make(map[string]uint64),
	}
}

// Watch adds name to the polled set, starting from the current chain head
// (fromBlock zero lets the first poll establish the cursor).
func (s *WatcherService) Watch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.watched[name]; !exists {
		s.watched[name] = 0
		s.logger.Info("Watching name", "name", name)
	}
}

// Unwatch removes name from the polled set.
func (s *WatcherService) Unwatch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watched, name)
}

// Watched lists the currently watched names.
func (s *WatcherService) Watched() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.watched))
	for name := range s.watched {
		names = append(names, name)
	}
	return names
}

// Run polls until ctx is cancelled. It blocks; run it in its own goroutine.
func (s *WatcherService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Watcher stopped")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *WatcherService) poll(ctx context.Context) {
	gw, ok := s.gateways.CanonicalGateway()
	if !ok {
		s.logger.Warn("Canonical network unavailable, skipping watch poll")
		return
	}

	s.mu.RLock()
	cursors := make(map[string]uint64, len(s.watched))
	for name, from := range s.watched {
		cursors[name] = from
	}
	s.mu.RUnlock()

	for name, from := range cursors {
		events, next, err := gw.LogsSince(ctx, name, from)
		if err != nil {
			s.logger.Warn("Watch poll failed", "name", name, "error", err)
			continue
		}

		// First poll only establishes the cursor; historical events are the
		// history query's business, not the watcher's.
		if from > 0 {
			for _, ev := range events {
				s.recordEvent(name, ev)
				if s.callback != nil {
					s.callback(name, ev)
				}
			}
		}

		s.mu.Lock()
		if _, still := s.watched[name]; still {
			s.watched[name] = next
		}
		s.mu.Unlock()
	}
}

func (s *WatcherService) recordEvent(name string, ev entity.ChainEvent) {
	meta := ev.Meta()
	data := map[string]string{
		"block":   strconv.FormatUint(meta.BlockNumber, 10),
		"tx_hash": meta.TxHash,
	}

	var eventType string
	switch e := ev.(type) {
	case entity.TransferEvent:
		eventType = entity.ActivityChainTransfer
		data["to"] = e.To
	case entity.NewOwnerEvent:
		eventType = entity.ActivityChainNewOwner
		data["label_hash"] = e.LabelHash
		data["owner"] = e.Owner
	case entity.AddrChangedEvent:
		eventType = entity.ActivityChainAddrChanged
		data["address"] = e.Address
	case entity.TextChangedEvent:
		eventType = entity.ActivityChainTextChanged
		data["key"] = e.Key
	case entity.ContenthashChangedEvent:
		eventType = entity.ActivityChainContenthash
		data["hash"] = e.Hash
	default:
		eventType = string(ev.Kind())
	}

	if err := s.activity.AddActivity(name, eventType, data); err != nil {
		s.logger.Warn("Failed to record watched event", "name", name, "type", eventType, "error", err)
	}
}
