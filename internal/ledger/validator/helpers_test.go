package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

func rec(t *testing.T, k ledger.Kind, v any) ledger.Record {
	t.Helper()
	r, err := assets.Encode(k, v)
	require.NoError(t, err)
	return r
}

func utxo(n int) ledger.UtxoID {
	return ledger.UtxoID(fmt.Sprintf("%064x:%d", n, n%4))
}

func spend(rs ...ledger.Record) []ledger.Input {
	out := make([]ledger.Input, len(rs))
	for i, r := range rs {
		out[i] = ledger.Input{UtxoID: utxo(i + 1), Record: r}
	}
	return out
}

func validate(tx ledger.Transaction) Verdict {
	return NewDispatcher(RejectMalformed).Validate(tx, "")
}

// requireRule garante que o veredito rejeitou com a regra indicada.
func requireRule(t *testing.T, v Verdict, rule string) {
	t.Helper()
	require.False(t, v.Accepted, "expected rejection %s", rule)
	rej, ok := AsRejection(v.Err())
	require.True(t, ok, "error %v is not a Rejection", v.Err())
	assert.Equal(t, rule, rej.Rule, rej.Error())
	assert.ErrorIs(t, v.Err(), ErrRejected)
}

func requireAccepted(t *testing.T, v Verdict) {
	t.Helper()
	require.True(t, v.Accepted, "unexpected rejection: %v", v.Err())
	require.NoError(t, v.Err())
}

func seed(s string) *string { return &s }

func team(id assets.TeamID) *assets.TeamID { return &id }

func newMatch() assets.Match {
	return assets.Match{
		SeasonID:   "s1",
		Turn:       1,
		MatchIndex: 3,
		HomeTeam:   "Arsenal",
		AwayTeam:   "Chelsea",
		HomeOdds:   20_000,
		AwayOdds:   35_000,
		DrawOdds:   30_000,
		LockedOdds: &assets.LockedOdds{HomeOdds: 12_878, AwayOdds: 15_400, DrawOdds: 18_554, Locked: true},
		Result:     assets.Pending,
	}
}

func resolved(m assets.Match, r assets.MatchResult) assets.Match {
	m.Result = r
	m.RandomSeed = seed("block-hash")
	return m
}
