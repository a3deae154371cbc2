// Package sweep builds and submits balance-sweeping transactions: moving the
// maximum available balance, minus an optional gas buffer, from one address
// to another.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/emberwallet/burner/internal/gas"
	"github.com/emberwallet/burner/internal/rpc"
	"github.com/emberwallet/burner/internal/wallet"
)

var (
	// ErrNoBalance is returned when the source address holds nothing.
	ErrNoBalance = errors.New("no balance to sweep")

	// ErrInsufficientAfterBuffer is returned when the balance does not
	// exceed the requested gas buffer.
	ErrInsufficientAfterBuffer = errors.New("balance does not exceed gas buffer")
)

// Descriptor is an unsigned sweep transaction: destination and value only.
// Gas price and limit are left for the caller to supply before signing.
type Descriptor struct {
	To    common.Address
	Value *big.Int
}

// Build queries the source balance and returns a sweep descriptor moving
// everything above the buffer to the destination.
//
// The buffer reserves wei for anticipated network fees; nil means no buffer.
// Fails with ErrNoBalance on an empty source, and with
// ErrInsufficientAfterBuffer when nothing would remain after the buffer.
func Build(ctx context.Context, client *rpc.Client, from, to common.Address, buffer *big.Int) (*Descriptor, error) {
	balance, err := client.BalanceAt(ctx, from)
	if err != nil {
		return nil, err
	}

	if balance.Sign() == 0 {
		return nil, fmt.Errorf("sweep of %s: %w", from.Hex(), ErrNoBalance)
	}

	if buffer == nil {
		buffer = new(big.Int)
	}

	value := new(big.Int)
	if balance.Cmp(buffer) > 0 {
		value.Sub(balance, buffer)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("sweep of %s (balance %s, buffer %s): %w", from.Hex(), balance, buffer, ErrInsufficientAfterBuffer)
	}

	return &Descriptor{To: to, Value: value}, nil
}

// SubmitOptions carries optional gas fields for a sweep submission.
// Zero values are replaced with node-derived or fallback defaults.
type SubmitOptions struct {
	GasLimit uint64   // default gas.LimitETHTransfer
	GasPrice *big.Int // default eth_gasPrice
}

// Submit signs a sweep descriptor with the given raw private key, submits it,
// waits for confirmation, and returns the transaction hash. Build performs no
// signing; this is the only operation in the package that touches a key.
func Submit(ctx context.Context, client *rpc.Client, privKeyHex string, d *Descriptor, opts SubmitOptions) (common.Hash, error) {
	kp, err := wallet.KeypairFromHex(privKeyHex)
	if err != nil {
		return common.Hash{}, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := client.NonceAt(ctx, kp.Address())
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
		To:       &d.To,
		Value:    d.Value,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), kp.PrivateKey())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign sweep transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode sweep transaction: %w", err)
	}

	hash, err := client.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := client.WaitForReceipt(ctx, hash)
	if err != nil {
		return common.Hash{}, err
	}

	return receipt.TxHash, nil
}
