// Package wallet provides short-lived, single-use Ethereum accounts.
//
// An Account pairs a freshly generated keypair with local lifecycle metadata:
// creation time, an optional expiry, and a used flag that is set exactly once
// by a successful guarded send. Enforcement of TTL and single use is
// client-side and advisory only; nothing on chain knows or cares about either
// flag. Accounts are never persisted — when the process exits the key is gone
// unless the caller explicitly exported a keystore first.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Keypair holds a generated secp256k1 private/public key pair.
// The private key stays in memory and is NEVER logged.
type Keypair struct {
	privateKey *ecdsa.PrivateKey
}

// GenerateKeypair creates a new secp256k1 keypair using go-ethereum's crypto
// library, which draws from crypto/rand internally.
func GenerateKeypair() (*Keypair, error) {
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Keypair{privateKey: privKey}, nil
}

// KeypairFromHex creates a Keypair from a hex-encoded private key, with or
// without a 0x prefix. Intended for sweeping keys the caller already holds.
func KeypairFromHex(privHex string) (*Keypair, error) {
	if len(privHex) >= 2 && privHex[:2] == "0x" {
		privHex = privHex[2:]
	}
	privKey, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Keypair{privateKey: privKey}, nil
}

// Address returns the EVM address derived from this keypair.
func (k *Keypair) Address() common.Address {
	return crypto.PubkeyToAddress(k.privateKey.PublicKey)
}

// PrivateKey returns the underlying ECDSA private key.
// WARNING: This exposes the private key - use with extreme caution.
func (k *Keypair) PrivateKey() *ecdsa.PrivateKey {
	return k.privateKey
}

// PrivateKeyBytes returns the raw private key bytes (32 bytes, left-padded).
// WARNING: This exposes the private key - use with extreme caution.
func (k *Keypair) PrivateKeyBytes() []byte {
	return crypto.FromECDSA(k.privateKey)
}

// PrivateKeyHex returns the private key as a hex string (64 chars, no 0x
// prefix). Only call when the user explicitly requests it.
func (k *Keypair) PrivateKeyHex() string {
	return fmt.Sprintf("%064x", crypto.FromECDSA(k.privateKey))
}
