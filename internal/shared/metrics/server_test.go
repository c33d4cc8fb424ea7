package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll_FirstFailureWins(t *testing.T) {
	calls := 0
	ok := func(context.Context) error { calls++; return nil }
	down := errors.New("connection refused")

	health := All(
		Check{Name: "postgres", Fn: ok},
		Check{Name: "redis", Fn: func(context.Context) error { calls++; return down }},
		Check{Name: "kafka", Fn: ok},
	)
	err := health(context.Background())

	assert.ErrorIs(t, err, down)
	assert.EqualError(t, err, "redis: connection refused")
	assert.Equal(t, 2, calls)
}

func TestAll_Empty(t *testing.T) {
	assert.NoError(t, All()(context.Background()))
}
