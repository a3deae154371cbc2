// Package permit defines the shape of an EIP-2612 token permit and a
// pluggable signing interface for it.
//
// No signing backend is shipped. The only bundled implementation,
// UnimplementedSigner, fails unconditionally; callers that want permits must
// supply their own TypedDataSigner. This keeps "not supported" an explicit,
// testable outcome rather than a stub that might pass for the real thing.
package permit

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotSupported is returned whenever permit signing is attempted without a
// concrete backend.
var ErrNotSupported = errors.New("typed-data permit signing is not supported: supply a TypedDataSigner implementation")

// Domain is the EIP-712 domain separator of the token contract.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Message is the Permit struct body: an off-chain authorization for spender
// to move up to Value of owner's tokens until Deadline.
type Message struct {
	Owner    common.Address
	Spender  common.Address
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

// TypedDataSigner signs an EIP-712 permit and returns the 65-byte signature.
type TypedDataSigner interface {
	SignTypedData(domain Domain, msg Message) ([]byte, error)
}

// UnimplementedSigner is the default backend: it refuses every request.
type UnimplementedSigner struct{}

// SignTypedData always fails with ErrNotSupported.
func (UnimplementedSigner) SignTypedData(Domain, Message) ([]byte, error) {
	return nil, ErrNotSupported
}

// Sign dispatches a permit to the given backend. A nil signer behaves like
// UnimplementedSigner.
func Sign(signer TypedDataSigner, domain Domain, msg Message) ([]byte, error) {
	if signer == nil {
		signer = UnimplementedSigner{}
	}
	return signer.SignTypedData(domain, msg)
}
