package ens

import (
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
)

// ConnectionSource yields a live client per network; satisfied by the
// connection manager.
type ConnectionSource interface {
	Connection(networkID string) (*ethclient.Client, bool)
	Definition(networkID string) (entity.NetworkDefinition, bool)
}

// Provider implements port.GatewayProvider, constructing one gateway per
// live network on first use.
type Provider struct {
	conns  ConnectionSource
	logger port.Logger

	mu       sync.Mutex
	gateways map[string]port.ENSGateway
}

// NewProvider creates a gateway provider over the given connection source.
func NewProvider(conns ConnectionSource, l port.Logger) *Provider {
	return &Provider{
		conns:    conns,
		logger:   l,
		gateways: make(map[string]port.ENSGateway),
	}
}

// Gateway returns the gateway bound to networkID, or false when the network
// is not live.
func (p *Provider) Gateway(networkID string) (port.ENSGateway, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gw, ok := p.gateways[networkID]; ok {
		return gw, true
	}

	conn, ok := p.conns.Connection(networkID)
	if !ok {
		return nil, false
	}
	def, ok := p.conns.Definition(networkID)
	if !ok {
		return nil, false
	}

	gw := NewGateway(conn, def, p.logger)
	p.gateways[networkID] = gw
	return gw, true
}

// CanonicalGateway returns the gateway for the canonical chain.
func (p *Provider) CanonicalGateway() (port.ENSGateway, bool) {
	return p.Gateway(entity.CanonicalNetwork)
}
