package ws

// AllTransitions assina todos os vereditos, sem filtrar por tx id
const AllTransitions = "*"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type string `json:"type"` // subscribe | unsubscribe | ping
	TxID string `json:"txId"` // tx id ou "*"; requerido em subscribe/unsubscribe
}

// VerdictUpdate é o payload publicado pelo verdict-worker no Redis
type VerdictUpdate struct {
	TxID    string `json:"txId"`
	Payload any    `json:"payload"`
}
