package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

// Status distingue "não há registro" de "há registro mas não decodifica".
type Status uint8

const (
	Absent Status = iota
	Present
	Malformed
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

var ErrEmptyPayload = errors.New("empty payload")

// DecodePayload decodifica de forma estrita: campos desconhecidos e lixo após o valor
// são erro, para que o payload de um tipo não passe como outro.
func DecodePayload(payload json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after payload")
	}
	return nil
}

// Collection é o resultado de decodificar todos os registros de um lado (old/new) de um tipo.
type Collection[T any] struct {
	Items []T
	// Failures guarda posição e erro de cada registro que não decodificou.
	Failures []Failure
}

type Failure struct {
	Index int
	Err   error
}

func (f Failure) Error() string { return fmt.Sprintf("record %d: %v", f.Index, f.Err) }

// Status resume a coleção: Malformed vence Present.
func (c Collection[T]) Status() Status {
	switch {
	case len(c.Failures) > 0:
		return Malformed
	case len(c.Items) > 0:
		return Present
	default:
		return Absent
	}
}

// Empty informa se nenhum item decodificou (ausente ou todos malformados).
func (c Collection[T]) Empty() bool { return len(c.Items) == 0 }

// Collect decodifica os registros na ordem recebida.
func Collect[T any](records []ledger.Record) Collection[T] {
	var c Collection[T]
	for i, r := range records {
		var v T
		if err := DecodePayload(r.Payload, &v); err != nil {
			c.Failures = append(c.Failures, Failure{Index: i, Err: err})
			continue
		}
		c.Items = append(c.Items, v)
	}
	return c
}

// Encode serializa um registro tipado no formato de fronteira.
func Encode(kind ledger.Kind, v any) (ledger.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return ledger.Record{Kind: kind, Payload: b}, nil
}
