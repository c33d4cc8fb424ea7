package events

import "github.com/radieske/league-ledger-validator/pkg/contracts/ledger"

// Evento publicado no tópico "ledger_transitions_proposed".
// Witness só é usado pelo validador de bootstrap; vazio significa ausente.
type TransitionProposed struct {
	Transaction ledger.Transaction `json:"transaction"`
	Witness     string             `json:"witness,omitempty"`
	Source      string             `json:"source"` // "season-simulator", "substrate", ...
	TsUnixMs    int64              `json:"ts_unix_ms"`
}
