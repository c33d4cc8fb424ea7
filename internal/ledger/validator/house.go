package validator

import (
	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

// validateHouse não tem regra própria: o House é o ponto de autorização dos outros tipos.
// A política de malformados continua valendo.
func validateHouse(b batch) error {
	_, _, err := decodeSides[assets.House](b)
	return err
}

// validateToken: saídas <= entradas é transferência ou burn; acima disso é mint e
// exige um House entre as entradas da transação.
func validateToken(b batch) error {
	ins, outs, err := decodeSides[assets.TokenAmount](b)
	if err != nil {
		return err
	}
	var in, out uint64
	for _, a := range ins {
		in = payout.SatAdd(in, uint64(a))
	}
	for _, a := range outs {
		out = payout.SatAdd(out, uint64(a))
	}
	if out > in && !b.tx.HasInput(ledger.KindHouse) {
		return reject(b.kind, "token.mint_unauthorized", "mints %d without house input", out-in)
	}
	return nil
}

