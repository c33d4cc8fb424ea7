package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

var ErrNotFound = errors.New("verdict not found")

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) GetVerdict(ctx context.Context, txID string) (*events.TransitionVerdict, error) {
	const q = `
		SELECT verdict_id, tx_id, accepted, policy, outcomes, decided_at
		FROM transition_verdicts
		WHERE tx_id = $1;
	`
	var (
		v        events.TransitionVerdict
		outcomes []byte
	)
	err := r.DB.QueryRowContext(ctx, q, txID).Scan(&v.VerdictID, &v.TxID, &v.Accepted, &v.Policy, &outcomes, &v.Ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(outcomes, &v.Outcomes); err != nil {
		return nil, fmt.Errorf("decode outcomes of %s: %w", txID, err)
	}
	return &v, nil
}

// RuleCount é uma linha do ranking de regras violadas
type RuleCount struct {
	Kind  string `json:"kind"`
	Rule  string `json:"rule"`
	Count int64  `json:"count"`
}

// TopRejections agrega transition_rejections por regra, mais frequentes primeiro
func (r *ReadRepo) TopRejections(ctx context.Context, limit int) ([]RuleCount, error) {
	const q = `
		SELECT kind, rule, COUNT(*) AS n
		FROM transition_rejections
		GROUP BY kind, rule
		ORDER BY n DESC, kind, rule
		LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RuleCount
	for rows.Next() {
		var c RuleCount
		if err := rows.Scan(&c.Kind, &c.Rule, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
