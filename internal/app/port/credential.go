package port

// CredentialStore supplies the externally managed signing/provider secrets.
// Absence of a value is a configuration precondition gap reported to the
// caller, never an internal error.
type CredentialStore interface {
	// ActiveProviderURL returns the RPC endpoint for the canonical chain.
	ActiveProviderURL() (string, bool)

	// ActiveAccountKey returns the hex-encoded signing key.
	ActiveAccountKey() (string, bool)

	// ExplorerAPIKey returns the block-explorer API key, when configured.
	ExplorerAPIKey() (string, bool)
}
