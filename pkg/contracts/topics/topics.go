package topics

const (
	// Transições propostas pelo substrato (ou pelo simulador)
	TransitionsProposed = "ledger_transitions_proposed"

	// Veredito publicado pelo verdict-worker
	TransitionVerdicts = "ledger_transition_verdicts"

	// DLQs
	TransitionsProposedDLQ = "ledger_transitions_proposed_dlq"
)

// Redis: canal Pub/Sub dos vereditos e prefixo da chave de cache por tx id,
// compartilhados entre verdict-worker e validator-api
const (
	VerdictBroadcastChannel = "ledger_verdicts_broadcast"
	VerdictCachePrefix      = "ledger:verdict:"
)
