package validator

import (
	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

// batch é tudo o que um validador de tipo enxerga: os registros daquele tipo
// dos dois lados, mais a transação (para checagens de presença) e o witness.
type batch struct {
	kind    ledger.Kind
	ins     []ledger.Record
	outs    []ledger.Record
	tx      *ledger.Transaction
	witness string
	policy  MalformedPolicy
}

// KindResult é o veredito de um tipo de ativo presente na transação.
type KindResult struct {
	Kind    ledger.Kind
	Inputs  int
	Outputs int
	Err     error
}

func (r KindResult) Accepted() bool { return r.Err == nil }

// Verdict é o AND lógico de todos os tipos presentes.
type Verdict struct {
	Accepted bool
	Results  []KindResult
}

// Err retorna a primeira rejeição (na ordem crescente de tag) ou nil.
func (v Verdict) Err() error {
	for _, r := range v.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Dispatcher roteia cada tipo presente para seu validador. Não guarda estado entre chamadas.
type Dispatcher struct {
	policy MalformedPolicy
}

func NewDispatcher(policy MalformedPolicy) *Dispatcher {
	return &Dispatcher{policy: policy}
}

func (d *Dispatcher) Policy() MalformedPolicy { return d.policy }

// Validate avalia todos os tipos presentes em ordem crescente de tag.
// O witness só é usado pelo tipo bootstrap.
func (d *Dispatcher) Validate(tx ledger.Transaction, witness string) Verdict {
	v := Verdict{Accepted: true}
	for _, k := range tx.PresentKinds() {
		b := batch{
			kind:    k,
			ins:     tx.InputsOf(k),
			outs:    tx.OutputsOf(k),
			tx:      &tx,
			witness: witness,
			policy:  d.policy,
		}
		err := validateKind(b)
		if err != nil {
			v.Accepted = false
		}
		v.Results = append(v.Results, KindResult{Kind: k, Inputs: len(b.ins), Outputs: len(b.outs), Err: err})
	}
	return v
}

func validateKind(b batch) error {
	switch b.kind {
	case ledger.KindMatch:
		return validateMatch(b)
	case ledger.KindLegacyBet:
		return validateLegacyBet(b)
	case ledger.KindBadge:
		return validateBadge(b)
	case ledger.KindSeason:
		return validateSeason(b)
	case ledger.KindHouse:
		return validateHouse(b)
	case ledger.KindBetslip:
		return validateBetslip(b)
	case ledger.KindLiquidityPool:
		return validatePool(b)
	case ledger.KindLPShare:
		return validateLPShare(b)
	case ledger.KindBootstrap:
		return validateBootstrap(b)
	case ledger.KindToken:
		return validateToken(b)
	default:
		return reject(b.kind, RuleUnknownKind, "tag %d is not a known asset kind", uint8(b.kind))
	}
}

// decodeSides aplica a política de malformados aos dois lados de um tipo.
func decodeSides[T any](b batch) (ins, outs []T, err error) {
	o := assets.Collect[T](b.ins)
	n := assets.Collect[T](b.outs)
	if b.policy == RejectMalformed {
		if f := o.Failures; len(f) > 0 {
			return nil, nil, reject(b.kind, RuleMalformed, "input %v", f[0])
		}
		if f := n.Failures; len(f) > 0 {
			return nil, nil, reject(b.kind, RuleMalformed, "output %v", f[0])
		}
	}
	return o.Items, n.Items, nil
}
