package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind é a tag de tipo de ativo carregada junto de cada registro.
type Kind uint8

const (
	KindMatch         Kind = 10
	KindLegacyBet     Kind = 11 // deprecated, substituído por KindBetslip
	KindBadge         Kind = 12
	KindSeason        Kind = 13
	KindHouse         Kind = 14
	KindBetslip       Kind = 15
	KindLiquidityPool Kind = 16
	KindLPShare       Kind = 17
	KindBootstrap     Kind = 'n'
	KindToken         Kind = 't'
)

// Kinds lista todas as tags conhecidas em ordem crescente.
var Kinds = []Kind{
	KindMatch,
	KindLegacyBet,
	KindBadge,
	KindSeason,
	KindHouse,
	KindBetslip,
	KindLiquidityPool,
	KindLPShare,
	KindBootstrap,
	KindToken,
}

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindLegacyBet:
		return "legacy_bet"
	case KindBadge:
		return "badge"
	case KindSeason:
		return "season"
	case KindHouse:
		return "house"
	case KindBetslip:
		return "betslip"
	case KindLiquidityPool:
		return "liquidity_pool"
	case KindLPShare:
		return "lp_share"
	case KindBootstrap:
		return "bootstrap"
	case KindToken:
		return "token"
	default:
		return "unknown_" + strconv.Itoa(int(k))
	}
}

// Known informa se a tag pertence ao conjunto fechado de tipos.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record é um snapshot imutável de um ativo: tag, identidade declarada e payload opaco.
type Record struct {
	Kind     Kind            `json:"kind"`
	Identity string          `json:"identity,omitempty"` // sha256 hex; obrigatório só para bootstrap
	Payload  json.RawMessage `json:"payload"`
}

// Input é um registro gasto pela transação.
type Input struct {
	UtxoID UtxoID `json:"utxoId"`
	Record
}

// Transaction é a fronteira com o substrato: entradas e saídas ordenadas.
type Transaction struct {
	ID      string   `json:"id"`
	Inputs  []Input  `json:"inputs"`
	Outputs []Record `json:"outputs"`
}

// InputsOf retorna os registros de entrada da tag, preservando a ordem.
func (t *Transaction) InputsOf(k Kind) []Record {
	var out []Record
	for _, in := range t.Inputs {
		if in.Kind == k {
			out = append(out, in.Record)
		}
	}
	return out
}

// OutputsOf retorna os registros de saída da tag, preservando a ordem.
func (t *Transaction) OutputsOf(k Kind) []Record {
	var out []Record
	for _, o := range t.Outputs {
		if o.Kind == k {
			out = append(out, o)
		}
	}
	return out
}

// HasInput informa se algum registro da tag está sendo gasto.
func (t *Transaction) HasInput(k Kind) bool {
	for _, in := range t.Inputs {
		if in.Kind == k {
			return true
		}
	}
	return false
}

// Spends informa se a UTXO está entre as entradas gastas.
// Ids de entrada que não parseiam nunca casam.
func (t *Transaction) Spends(id UtxoID) bool {
	want, err := ParseUtxoID(string(id))
	if err != nil {
		return false
	}
	for _, in := range t.Inputs {
		got, err := ParseUtxoID(string(in.UtxoID))
		if err != nil {
			continue
		}
		if got == want {
			return true
		}
	}
	return false
}

// PresentKinds retorna as tags presentes (entradas ou saídas) em ordem crescente,
// incluindo tags desconhecidas para que o dispatcher possa rejeitá-las.
func (t *Transaction) PresentKinds() []Kind {
	seen := make(map[Kind]struct{})
	for _, in := range t.Inputs {
		seen[in.Kind] = struct{}{}
	}
	for _, o := range t.Outputs {
		seen[o.Kind] = struct{}{}
	}
	out := make([]Kind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UtxoID identifica uma saída no formato "<txid hex 64>:<vout>".
type UtxoID string

var ErrInvalidUtxoID = errors.New("invalid utxo id")

// ParseUtxoID valida e normaliza (txid minúsculo, vout decimal canônico).
func ParseUtxoID(s string) (UtxoID, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return "", fmt.Errorf("%w: missing ':' in %q", ErrInvalidUtxoID, s)
	}
	txid, vout := s[:i], s[i+1:]
	if len(txid) != 64 {
		return "", fmt.Errorf("%w: txid must have 64 hex chars, got %d", ErrInvalidUtxoID, len(txid))
	}
	for _, c := range txid {
		if !isHex(c) {
			return "", fmt.Errorf("%w: non-hex txid %q", ErrInvalidUtxoID, txid)
		}
	}
	n, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return "", fmt.Errorf("%w: vout %q: %v", ErrInvalidUtxoID, vout, err)
	}
	return UtxoID(strings.ToLower(txid) + ":" + strconv.FormatUint(n, 10)), nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
