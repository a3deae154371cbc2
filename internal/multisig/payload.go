// Package multisig shapes transaction payloads for an external multisig
// execution SDK. This package only builds records; execution, signature
// collection, and submission all belong to the SDK consuming them.
package multisig

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/emberwallet/burner/internal/rpc"
)

// Payload is a proposed multisig transaction: destination, wei value, and
// optional call data.
type Payload struct {
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value"`
	Data  []byte         `json:"data"`
}

// BuildPayment builds a payment payload. No validation beyond the address
// type; a nil value is normalized to zero.
func BuildPayment(to common.Address, value *big.Int, data []byte) Payload {
	if value == nil {
		value = new(big.Int)
	}
	return Payload{To: to, Value: value, Data: data}
}

// BuildSweepPayload builds a payload moving the multisig's entire balance to
// the destination.
//
// Unlike sweep.Build, no gas buffer is subtracted: multisig execution fees
// are paid by the executing owner, not out of the swept value. The asymmetry
// with the burner-account sweep is deliberate; do not unify the two.
func BuildSweepPayload(ctx context.Context, client *rpc.Client, multisigAddr, to common.Address) (Payload, error) {
	balance, err := client.BalanceAt(ctx, multisigAddr)
	if err != nil {
		return Payload{}, err
	}
	return Payload{To: to, Value: balance, Data: nil}, nil
}
