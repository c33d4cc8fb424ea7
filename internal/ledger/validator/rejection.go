package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

var (
	// ErrRejected é a raiz de toda rejeição de regra.
	ErrRejected = errors.New("transition rejected")
	// ErrUnknownKind marca tags fora do conjunto fechado.
	ErrUnknownKind = errors.New("unknown asset kind")
)

// Regras genéricas, válidas para qualquer tipo.
const (
	RuleMalformed   = "record.malformed"
	RuleUnknownKind = "kind.unknown"
	RuleShape       = "transition.shape"
)

// Rejection descreve a primeira regra violada para um tipo de ativo.
// Rule é um código estável (usado em métricas e na API); Detail é livre.
type Rejection struct {
	Kind   ledger.Kind
	Rule   string
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("%s: %s", r.Kind, r.Rule)
	}
	return fmt.Sprintf("%s: %s: %s", r.Kind, r.Rule, r.Detail)
}

func (r *Rejection) Unwrap() []error {
	if r.Rule == RuleUnknownKind {
		return []error{ErrRejected, ErrUnknownKind}
	}
	return []error{ErrRejected}
}

func reject(kind ledger.Kind, rule, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// AsRejection extrai a Rejection de um erro, se houver.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// MalformedPolicy decide o que fazer com payloads que não decodificam.
// Todos os avaliadores de uma rede precisam rodar a mesma política.
type MalformedPolicy uint8

const (
	// RejectMalformed rejeita o tipo inteiro quando qualquer registro está malformado.
	RejectMalformed MalformedPolicy = iota
	// ExcludeMalformed descarta o registro e segue validando o restante (comportamento legado).
	ExcludeMalformed
)

func (p MalformedPolicy) String() string {
	switch p {
	case RejectMalformed:
		return "reject"
	case ExcludeMalformed:
		return "exclude"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy aceita "reject" ou "exclude" (case-insensitive). Vazio = reject.
func ParsePolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectMalformed, nil
	case "exclude":
		return ExcludeMalformed, nil
	default:
		return 0, fmt.Errorf("invalid malformed policy %q (want reject|exclude)", s)
	}
}
