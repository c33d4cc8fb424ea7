package validator

import (
	"time"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

// Outcomes converte o veredito para o formato publicado em eventos e na API.
func (v Verdict) Outcomes() []events.KindOutcome {
	out := make([]events.KindOutcome, 0, len(v.Results))
	for _, r := range v.Results {
		o := events.KindOutcome{Kind: r.Kind.String(), Accepted: r.Accepted()}
		if rej, ok := AsRejection(r.Err); ok {
			o.Rule, o.Detail = rej.Rule, rej.Detail
		} else if r.Err != nil {
			o.Detail = r.Err.Error()
		}
		out = append(out, o)
	}
	return out
}

// Event monta o evento de veredito para uma transação.
func (v Verdict) Event(verdictID, txID string, policy MalformedPolicy, ts time.Time) events.TransitionVerdict {
	return events.TransitionVerdict{
		VerdictID: verdictID,
		TxID:      txID,
		Accepted:  v.Accepted,
		Policy:    policy.String(),
		Outcomes:  v.Outcomes(),
		Ts:        ts,
	}
}
