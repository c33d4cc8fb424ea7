package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

// PostgresRepo persiste os vereditos emitidos pelo worker
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// SaveVerdict grava o veredito e uma linha por regra violada, na mesma transação.
// Reprocessar o mesmo tx_id não duplica nada (ON CONFLICT DO NOTHING).
func (r *PostgresRepo) SaveVerdict(ctx context.Context, v events.TransitionVerdict, source string) (err error) {
	outcomes, err := json.Marshal(v.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insVerdict = `
		INSERT INTO transition_verdicts
		  (verdict_id, tx_id, accepted, policy, outcomes, source, decided_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (tx_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insVerdict,
		v.VerdictID, v.TxID, v.Accepted, v.Policy, outcomes, source, v.Ts,
	)
	if err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// já decidido antes; mantém o primeiro veredito
		return tx.Commit()
	}

	const insRejection = `
		INSERT INTO transition_rejections
		  (verdict_id, kind, rule, detail)
		VALUES
		  ($1,$2,$3,$4)
	`
	for _, o := range v.Outcomes {
		if o.Accepted {
			continue
		}
		if _, err = tx.ExecContext(ctx, insRejection, v.VerdictID, o.Kind, o.Rule, o.Detail); err != nil {
			return fmt.Errorf("insert rejection: %w", err)
		}
	}
	return tx.Commit()
}
