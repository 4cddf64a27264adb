package service

import "github.com/ethereum/go-ethereum/crypto"

// ERC-165 interface identifiers probed on resolvers.
var (
	textInterfaceID = interfaceID("text(bytes32,string)")
	ccipInterfaceID = interfaceID("resolve(bytes,bytes)")
)

func interfaceID(signature string) [4]byte {
	var id [4]byte
	copy(id[:], crypto.Keccak256([]byte(signature))[:4])
	return id
}
