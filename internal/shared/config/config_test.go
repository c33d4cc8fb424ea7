package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	ctopics "github.com/radieske/league-ledger-validator/pkg/contracts/topics"
)

func TestLoad_DefaultsPerService(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("SERVICE_NAME", "verdict-worker")
	cfg := Load()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ctopics.TransitionsProposed, cfg.TopicTransitions)
	assert.Equal(t, ctopics.TransitionVerdicts, cfg.TopicVerdicts)
	assert.Equal(t, ctopics.TransitionsProposedDLQ, cfg.TopicTransitionsDLQ)
	assert.Equal(t, "", cfg.HTTPPort)
	assert.Equal(t, "9097", cfg.MetricsPort)
	assert.Equal(t, 10*time.Minute, cfg.VerdictCacheTTL)
	assert.Equal(t, ctopics.VerdictBroadcastChannel, cfg.RedisVerdictChannel)
	assert.Equal(t, "league-genesis", cfg.SimSeed)
	assert.Equal(t, "kafka", cfg.SimSink)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, validator.RejectMalformed, cfg.Policy())

	t.Setenv("SERVICE_NAME", "validator-api")
	assert.Equal(t, "8080", Load().HTTPPort)

	t.Setenv("SERVICE_NAME", "transition-ingest")
	ingest := Load()
	assert.Equal(t, "9096", ingest.MetricsPort)
	assert.Equal(t, "ws://localhost:8090/ws", ingest.SubstrateWSURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MALFORMED_POLICY", "exclude")
	t.Setenv("VERDICT_CACHE_TTL", "30s")
	t.Setenv("SIM_TURNS", "4")
	cfg := Load()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, validator.ExcludeMalformed, cfg.Policy())
	assert.Equal(t, 30*time.Second, cfg.VerdictCacheTTL)
	assert.Equal(t, 4, cfg.SimTurns)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]string{
		"MALFORMED_POLICY":  "ignore",
		"VERDICT_CACHE_TTL": "soon",
		"SIM_INTERVAL":      "-1s",
		"SIM_TURNS":         "40",
		"SIM_SINK":          "file",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			assert.Error(t, Load().Validate())
		})
	}
}
