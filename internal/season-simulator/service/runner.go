package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/season-simulator/fixtures"
	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

const Source = "season-simulator"

type Publisher interface {
	Publish(ctx context.Context, e events.TransitionProposed) error
}

type TransitionValidator interface {
	Validate(tx ledger.Transaction, witness string) validator.Verdict
}

// Runner pré-valida cada passo e publica em ordem, respeitando o intervalo.
// Um passo rejeitado interrompe a execução: o resto da temporada depende dele.
type Runner struct {
	Log       *zap.Logger
	Validator TransitionValidator
	Publisher Publisher
	Interval  time.Duration

	OnPublished func()
	Now         func() time.Time
}

type StepRejectedError struct {
	Step string
	Err  error
}

func (e *StepRejectedError) Error() string {
	return fmt.Sprintf("step %s rejected: %v", e.Step, e.Err)
}

func (e *StepRejectedError) Unwrap() error { return e.Err }

func (r *Runner) Run(ctx context.Context, steps []fixtures.Step) error {
	for i, s := range steps {
		if v := r.Validator.Validate(s.Tx, s.Witness); !v.Accepted {
			return &StepRejectedError{Step: s.Name, Err: v.Err()}
		}

		ev := events.TransitionProposed{
			Transaction: s.Tx,
			Witness:     s.Witness,
			Source:      Source,
			TsUnixMs:    r.now().UnixMilli(),
		}
		if err := r.Publisher.Publish(ctx, ev); err != nil {
			return fmt.Errorf("publish %s: %w", s.Name, err)
		}
		if r.OnPublished != nil {
			r.OnPublished()
		}
		r.Log.Info("transition proposed", zap.String("step", s.Name), zap.String("tx_id", s.Tx.ID))

		if i == len(steps)-1 || r.Interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Interval):
		}
	}
	return nil
}

// IsRejected informa se a execução parou por um passo inválido
func IsRejected(err error) bool {
	var se *StepRejectedError
	return errors.As(err, &se)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
