package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONAndSetsContextDefault(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	Get().Info().Str("source", "hltv").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "hltv", line["source"])
	assert.Equal(t, "info", line["level"])

	// 没有挂 logger 的 context 退回进程级 logger
	assert.Equal(t, Get(), zerolog.Ctx(context.Background()))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
