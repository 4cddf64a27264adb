// Package credstore adapts the externally managed credential source (a
// .env file or the process environment) to port.CredentialStore.
package credstore

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"ens_manager/internal/app/port"
)

// Environment variable names recognized by the store.
const (
	envProviderURL = "ETH_MAINNET_RPC"
	envAccountKey  = "ETH_PRIVATE_KEY"
	envExplorerKey = "ETHERSCAN_API_KEY"
)

// EnvStore reads credentials from the environment. Missing values are
// reported as absent, never as errors: configuration gaps are the caller's
// to resolve.
type EnvStore struct{}

// NewEnvStore loads the optional .env file and returns the store. A missing
// .env file is not an error; the process environment still applies.
func NewEnvStore(logger port.Logger) *EnvStore {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded, relying on process environment", "error", err)
	}
	return &EnvStore{}
}

// ActiveProviderURL returns the canonical-chain RPC endpoint, if configured.
func (s *EnvStore) ActiveProviderURL() (string, bool) {
	return lookup(envProviderURL)
}

// ActiveAccountKey returns the hex signing key, if configured.
func (s *EnvStore) ActiveAccountKey() (string, bool) {
	return lookup(envAccountKey)
}

// ExplorerAPIKey returns the block-explorer API key, if configured.
func (s *EnvStore) ExplorerAPIKey() (string, bool) {
	return lookup(envExplorerKey)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
