// Package gas provides gas-cost arithmetic for burner transactions.
//
// All amounts are wei and all arithmetic is exact big.Int; WithMargin is the
// only operation that truncates (floor division by the bps denominator).
package gas

import "math/big"

// Gas limits used as fallbacks when the node cannot simulate a transaction.
// Conservative upper bounds; actual gas used will be lower.
const (
	LimitETHTransfer   = uint64(21_000)  // native ETH transfer
	LimitERC20Transfer = uint64(60_000)  // ERC-20 transfer
	LimitContractCall  = uint64(200_000) // generic state-changing call
)

// bpsDenominator is the basis-point scale (10000 bps = 100%).
const bpsDenominator = 10_000

// TotalCost returns units * pricePerUnit in wei, exactly.
func TotalCost(units uint64, pricePerUnit *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(units), pricePerUnit)
}

// WithMargin returns the total cost inflated by marginBps basis points:
//
//	TotalCost * (10000 + marginBps) / 10000
//
// using floor division. Callers must tolerate truncation toward zero for
// inputs that do not divide exactly. WithMargin(u, p, 0) == TotalCost(u, p).
func WithMargin(units uint64, pricePerUnit *big.Int, marginBps uint64) *big.Int {
	total := TotalCost(units, pricePerUnit)
	numerator := new(big.Int).SetUint64(marginBps)
	numerator.Add(numerator, big.NewInt(bpsDenominator))
	total.Mul(total, numerator)
	return total.Div(total, big.NewInt(bpsDenominator))
}
