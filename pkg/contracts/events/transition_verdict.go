package events

import "time"

// KindOutcome resume o resultado de um validador de tipo de ativo.
type KindOutcome struct {
	Kind     string `json:"kind"`
	Accepted bool   `json:"accepted"`
	Rule     string `json:"rule,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Evento emitido pelo verdict-worker após validar uma transição.
type TransitionVerdict struct {
	VerdictID string        `json:"verdictId"`
	TxID      string        `json:"txId"`
	Accepted  bool          `json:"accepted"`
	Policy    string        `json:"policy"` // "reject" | "exclude"
	Outcomes  []KindOutcome `json:"outcomes"`
	Ts        time.Time     `json:"ts"`
}
