package client

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
)

const defaultConnectTimeout = 10 * time.Second

// Manager holds one live connection per configured network. Construction
// attempts one connection per definition; a network whose endpoint variable
// is unset or whose liveness probe fails is silently omitted from the
// available set. A dead network stays absent until restart; no retries at
// this layer.
type Manager struct {
	logger   port.Logger
	mu       sync.RWMutex
	conns    map[string]*ethclient.Client
	defs     map[string]entity.NetworkDefinition
	defOrder []string
	order    []string
	current  string
}

// NewManager dials every network from the provider. endpointOverrides maps
// a network identifier to an RPC URL taking precedence over the
// definition's environment variable (used to honor the credential store's
// active provider URL for the canonical chain).
func NewManager(
	defProvider port.NetworkDefinitionProvider,
	endpointOverrides map[string]string,
	l port.Logger,
	connectTimeout time.Duration,
) *Manager {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	m := &Manager{
		logger:  l,
		conns:   make(map[string]*ethclient.Client),
		defs:    make(map[string]entity.NetworkDefinition),
		current: entity.CanonicalNetwork,
	}

	for _, def := range defProvider.GetAllNetworkDefinitions() {
		m.defs[def.Identifier] = def
		m.defOrder = append(m.defOrder, def.Identifier)

		rpcURL := endpointOverrides[def.Identifier]
		if rpcURL == "" {
			rpcURL = os.Getenv(def.RPCEnvVar)
		}
		if rpcURL == "" {
			l.Debug("No RPC endpoint configured, skipping network", "network", def.Identifier, "env_var", def.RPCEnvVar)
			continue
		}

		conn, err := dial(rpcURL, def, connectTimeout)
		if err != nil {
			l.Warn("Failed to connect to network, omitting from available set",
				"network", def.Identifier, "error", err)
			continue
		}

		m.conns[def.Identifier] = conn
		m.order = append(m.order, def.Identifier)
		l.Info("Connected to network", "network", def.Identifier, "chain_id", def.ChainID)
	}

	return m
}

// dial connects and runs a liveness probe (eth_chainId round-trip).
func dial(rpcURL string, def entity.NetworkDefinition, timeout time.Duration) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	if _, err := conn.ChainID(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Connection returns the live client for the given network, or false when
// the network is not in the available set.
func (m *Manager) Connection(networkID string) (*ethclient.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.conns[networkID]
	return conn, ok
}

// AvailableNetworks returns the currently live set in definition order.
func (m *Manager) AvailableNetworks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ConfiguredNetworks returns every definition the manager was constructed
// with, live or not, in definition order.
func (m *Manager) ConfiguredNetworks() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(m.defOrder))
	for _, id := range m.defOrder {
		out = append(out, m.defs[id])
	}
	return out
}

// Current returns the network used when a caller does not name one.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetCurrent switches the default network. It succeeds only if that network
// is live; otherwise no state change.
func (m *Manager) SetCurrent(networkID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[networkID]; !ok {
		return false
	}
	m.current = networkID
	return true
}

// Definition returns the static definition for the identifier.
func (m *Manager) Definition(networkID string) (entity.NetworkDefinition, bool) {
	def, ok := m.defs[networkID]
	return def, ok
}

// Close drops every live connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.conns {
		conn.Close()
		delete(m.conns, id)
	}
	m.order = nil
}
