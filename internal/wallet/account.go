package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/emberwallet/burner/internal/gas"
	"github.com/emberwallet/burner/internal/rpc"
)

// Lifecycle errors for the guarded send. Matched with errors.Is.
var (
	// ErrAlreadyUsed is returned when a send is attempted on an account
	// whose single use has been spent.
	ErrAlreadyUsed = errors.New("burner account already used")

	// ErrExpired is returned when a send is attempted after the account's
	// TTL has passed.
	ErrExpired = errors.New("burner account expired")
)

// Account is an ephemeral Ethereum account: a keypair plus local lifecycle
// metadata. The zero value is not usable; construct with New.
//
// The used flag is not protected by a lock. Two sends racing on the same
// account may both pass the guard and both attempt to submit; single use is
// an advisory, single-caller contract, not a concurrency guarantee.
type Account struct {
	keypair *Keypair

	// Label is an optional human-readable tag, e.g. "deposit-42".
	Label string
	// CreatedAt is the generation timestamp.
	CreatedAt time.Time
	// ExpiresAt is the advisory expiry; the zero value means never expires.
	ExpiresAt time.Time

	used bool
}

// New generates a fresh ephemeral account. A ttl of zero means the account
// never expires.
func New(ttl time.Duration, label string) (*Account, error) {
	kp, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}
	return NewFromKeypair(kp, ttl, label), nil
}

// NewFromKeypair wraps an existing keypair in a fresh lifecycle: created now,
// unused, optionally expiring after ttl. Lifecycle state lives only in this
// process, so rebuilding an account from a key it has seen before yields a
// spendable account again; nothing remembers the earlier use.
func NewFromKeypair(kp *Keypair, ttl time.Duration, label string) *Account {
	now := time.Now()
	acct := &Account{
		keypair:   kp,
		Label:     label,
		CreatedAt: now,
	}
	if ttl > 0 {
		acct.ExpiresAt = now.Add(ttl)
	}
	return acct
}

// Address returns the account's EVM address.
func (a *Account) Address() common.Address {
	return a.keypair.Address()
}

// Keypair returns the account's underlying keypair.
// WARNING: exposes signing capability outside the guarded send.
func (a *Account) Keypair() *Keypair {
	return a.keypair
}

// Used reports whether the account's single use has been spent.
func (a *Account) Used() bool {
	return a.used
}

// Expired reports whether the account's TTL has passed. Accounts created
// without a TTL never expire.
func (a *Account) Expired() bool {
	if a.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(a.ExpiresAt)
}

// SendOptions carries optional transaction fields for a guarded send.
// Zero values are replaced with node-derived or fallback defaults.
type SendOptions struct {
	GasLimit uint64   // default gas.LimitETHTransfer
	GasPrice *big.Int // default eth_gasPrice
	Data     []byte
}

// Send performs the account's single guarded transfer: it signs a transaction
// moving amount wei to the destination, submits it to the given endpoint,
// waits for confirmation, and only then marks the account used.
//
// Guard order is fixed: the used check runs before the expiry check, so an
// account that is both used and expired reports ErrAlreadyUsed. A send that
// fails a guard, or fails on the network, does not consume the account's use.
func (a *Account) Send(ctx context.Context, client *rpc.Client, to common.Address, amount *big.Int, opts SendOptions) (common.Hash, error) {
	if a.used {
		return common.Hash{}, ErrAlreadyUsed
	}
	if a.Expired() {
		return common.Hash{}, ErrExpired
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := client.NonceAt(ctx, a.Address())
	if err != nil {
		return common.Hash{}, err
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice, err = client.GasPrice(ctx)
		if err != nil {
			return common.Hash{}, err
		}
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit = gas.LimitETHTransfer
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    amount,
		Data:     opts.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), a.keypair.PrivateKey())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode transaction: %w", err)
	}

	hash, err := client.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := client.WaitForReceipt(ctx, hash)
	if err != nil {
		return common.Hash{}, err
	}

	a.used = true
	return receipt.TxHash, nil
}
