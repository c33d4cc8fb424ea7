package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

// WitnessIdentity é a identidade que um NFT de bootstrap declara para o witness dado.
func WitnessIdentity(witness string) string {
	sum := sha256.Sum256([]byte(witness))
	return hex.EncodeToString(sum[:])
}

// validateBootstrap: o witness é um UtxoID; seu hash tem que ser a identidade
// de todo registro bootstrap e a UTXO tem que estar sendo gasta nesta transação.
func validateBootstrap(b batch) error {
	if b.witness == "" {
		return reject(b.kind, "bootstrap.witness_missing", "no witness supplied")
	}
	identity := WitnessIdentity(b.witness)
	for _, side := range [][]ledger.Record{b.ins, b.outs} {
		for _, r := range side {
			if !strings.EqualFold(r.Identity, identity) {
				return reject(b.kind, "bootstrap.identity", "record identity %q does not match witness hash", r.Identity)
			}
		}
	}
	id, err := ledger.ParseUtxoID(b.witness)
	if err != nil {
		return reject(b.kind, "bootstrap.witness_format", "%v", err)
	}
	if !b.tx.Spends(id) {
		return reject(b.kind, "bootstrap.utxo_not_spent", "witness utxo %s is not an input", id)
	}
	return nil
}
