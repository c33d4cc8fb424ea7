package validator

import (
	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
)

func validatePool(b batch) error {
	ins, outs, err := decodeSides[assets.LiquidityPool](b)
	if err != nil {
		return err
	}
	switch {
	case len(outs) == 0:
		return nil
	case len(ins) == 0:
		for i, p := range outs {
			if err := checkPoolCreation(b, i, p); err != nil {
				return err
			}
		}
		return nil
	case len(ins) != len(outs):
		return reject(b.kind, RuleShape, "pool pairs mismatch: %d inputs, %d outputs", len(ins), len(outs))
	}
	for i := range ins {
		if err := checkPoolUpdate(b, i, ins[i], outs[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkPoolCreation(b batch, i int, p assets.LiquidityPool) error {
	switch {
	case p.TotalLiquidity == 0:
		return reject(b.kind, "pool.creation.liquidity", "output %d has no liquidity", i)
	case p.TotalBetsInPlay != 0 || p.TotalPaidOut != 0 || p.TotalCollected != 0 || p.ProtocolRevenue != 0:
		return reject(b.kind, "pool.creation.counters", "output %d starts with non-zero counters", i)
	case p.HouseBalance != p.TotalLiquidity:
		return reject(b.kind, "pool.creation.house_balance", "output %d balance %d != liquidity %d", i, p.HouseBalance, p.TotalLiquidity)
	case !p.IsActive:
		return reject(b.kind, "pool.creation.inactive", "output %d", i)
	case p.MinLiquidity == 0 || p.MinLiquidity > p.TotalLiquidity:
		return reject(b.kind, "pool.creation.min_liquidity", "output %d min %d liquidity %d", i, p.MinLiquidity, p.TotalLiquidity)
	}
	return nil
}

func checkPoolUpdate(b batch, i int, in, out assets.LiquidityPool) error {
	if in.PoolID != out.PoolID {
		return reject(b.kind, "pool.update.id", "pair %d %q -> %q", i, in.PoolID, out.PoolID)
	}
	if out.TotalBetsInPlay > 0 && !out.IsActive {
		return reject(b.kind, "pool.update.inactive", "pair %d has %d in play", i, out.TotalBetsInPlay)
	}
	if out.TotalPaidOut < in.TotalPaidOut || out.TotalCollected < in.TotalCollected || out.ProtocolRevenue < in.ProtocolRevenue {
		return reject(b.kind, "pool.update.monotonic", "pair %d counters decreased", i)
	}
	expected := payout.ExpectedLiquidity(in.TotalLiquidity,
		in.TotalCollected, out.TotalCollected,
		in.TotalPaidOut, out.TotalPaidOut,
		in.ProtocolRevenue, out.ProtocolRevenue)
	if !payout.WithinTolerance(out.TotalLiquidity, expected) {
		return reject(b.kind, "pool.update.solvency", "pair %d liquidity %d, expected %d", i, out.TotalLiquidity, expected)
	}
	if out.IsActive && out.HouseBalance < out.MinLiquidity {
		return reject(b.kind, "pool.update.min_liquidity", "pair %d balance %d below %d", i, out.HouseBalance, out.MinLiquidity)
	}
	return nil
}

// validateLPShare só checa campos obrigatórios; a economia das shares é do pool.
func validateLPShare(b batch) error {
	_, outs, err := decodeSides[assets.LPShare](b)
	if err != nil {
		return err
	}
	for i, s := range outs {
		if s.ShareID == "" || s.LPAddress == "" {
			return reject(b.kind, "lp_share.fields", "output %d missing id or address", i)
		}
	}
	return nil
}
