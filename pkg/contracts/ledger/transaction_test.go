package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUtxoID(t *testing.T) {
	txid := strings.Repeat("Ab", 32)

	id, err := ParseUtxoID(txid + ":007")
	require.NoError(t, err)
	assert.Equal(t, UtxoID(strings.ToLower(txid)+":7"), id)

	for _, bad := range []string{
		"",
		txid,
		txid[:62] + ":0",
		strings.Repeat("zz", 32) + ":0",
		txid + ":-1",
		txid + ":4294967296",
		txid + ":",
	} {
		_, err := ParseUtxoID(bad)
		assert.ErrorIs(t, err, ErrInvalidUtxoID, bad)
	}
}

func TestTransaction_Grouping(t *testing.T) {
	tx := Transaction{
		Inputs: []Input{
			{UtxoID: UtxoID(strings.Repeat("0", 64) + ":1"), Record: Record{Kind: KindHouse}},
			{UtxoID: UtxoID(strings.Repeat("1", 64) + ":0"), Record: Record{Kind: KindToken, Payload: []byte("5")}},
		},
		Outputs: []Record{
			{Kind: KindToken, Payload: []byte("3")},
			{Kind: 200},
			{Kind: KindToken, Payload: []byte("2")},
		},
	}

	assert.Equal(t, []Kind{KindHouse, KindToken, 200}, tx.PresentKinds())
	assert.True(t, tx.HasInput(KindHouse))
	assert.False(t, tx.HasInput(KindMatch))
	assert.Len(t, tx.InputsOf(KindToken), 1)

	outs := tx.OutputsOf(KindToken)
	require.Len(t, outs, 2)
	assert.Equal(t, "3", string(outs[0].Payload))

	assert.True(t, tx.Spends(UtxoID(strings.Repeat("0", 64)+":01")))
	assert.False(t, tx.Spends(UtxoID(strings.Repeat("0", 64)+":2")))
	assert.False(t, tx.Spends("garbage"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "liquidity_pool", KindLiquidityPool.String())
	assert.Equal(t, "unknown_42", Kind(42).String())
	assert.True(t, KindBootstrap.Known())
	assert.False(t, Kind(42).Known())
}
