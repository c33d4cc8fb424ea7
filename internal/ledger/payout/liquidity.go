package payout

import "errors"

const (
	WithdrawalFeeBps     = 50    // 0.5%
	MinimumLiquidityLock = 1_000 // shares travadas para sempre no primeiro depósito
	SolvencyTolerance    = 100
)

var (
	ErrZeroDeposit       = errors.New("deposit must be positive")
	ErrInsufficientShare = errors.New("not enough shares")
	ErrEmptyPool         = errors.New("pool has no shares")
)

// SharesForDeposit retorna as shares emitidas para um depósito.
// Primeiro depósito é 1:1; depois proporcional à liquidez existente.
func SharesForDeposit(amount, totalShares, totalLiquidity uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroDeposit
	}
	if totalShares == 0 || totalLiquidity == 0 {
		return amount, nil
	}
	return SatMul(amount, totalShares) / totalLiquidity, nil
}

// Withdrawal é a cotação de resgate de shares.
type Withdrawal struct {
	Gross uint64
	Fee   uint64
	Net   uint64
}

// WithdrawalQuote calcula o resgate proporcional descontando WithdrawalFeeBps.
// As MinimumLiquidityLock shares iniciais nunca podem sair do pool.
func WithdrawalQuote(shares, totalShares, totalLiquidity uint64) (Withdrawal, error) {
	if totalShares == 0 {
		return Withdrawal{}, ErrEmptyPool
	}
	if shares == 0 || shares > SatSub(totalShares, MinimumLiquidityLock) {
		return Withdrawal{}, ErrInsufficientShare
	}
	gross := SatMul(shares, totalLiquidity) / totalShares
	fee := SatMul(gross, WithdrawalFeeBps) / BpsScale
	return Withdrawal{Gross: gross, Fee: fee, Net: gross - fee}, nil
}

// ExpectedLiquidity é a liquidez que o pool deve ter depois de uma atualização:
// old + Δcollected − ΔpaidOut − Δrevenue, cada delta com piso zero.
func ExpectedLiquidity(oldLiquidity, oldCollected, newCollected, oldPaidOut, newPaidOut, oldRevenue, newRevenue uint64) uint64 {
	expected := SatAdd(oldLiquidity, newCollected)
	expected = SatSub(expected, oldCollected)
	expected = SatSub(expected, SatSub(newPaidOut, oldPaidOut))
	return SatSub(expected, SatSub(newRevenue, oldRevenue))
}

// WithinTolerance compara com a margem de arredondamento SolvencyTolerance.
func WithinTolerance(actual, expected uint64) bool {
	if actual > expected {
		return actual-expected <= SolvencyTolerance
	}
	return expected-actual <= SolvencyTolerance
}
