package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/solanatrades-go/parse"
	"github.com/franco-bianco/solanatrades-go/trades"
)

var _ trades.Observer = (*Metrics)(nil)

func TestObserverCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TradeEmitted(parse.ORCA)
	m.TradeEmitted(parse.ORCA)
	m.InstructionDropped(parse.RAYDIUM_V4, trades.DropLayout)
	m.TransactionSkipped(trades.SkipFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tradesEmitted.WithLabelValues("Orca")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.instructionsDropped.WithLabelValues("RaydiumV4", "layout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsSkipped.WithLabelValues("failed")))
}

func TestBlockLifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BlockStarted()
	m.BlockStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.inflight))

	m.BlockFinished(120, BlockOK, 20*time.Millisecond)
	m.BlockFinished(100, BlockOK, 20*time.Millisecond)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.blocks.WithLabelValues(BlockOK)))
	assert.Equal(t, uint64(120), m.LastSlot(), "slots finishing late do not move the gauge back")
	assert.Equal(t, 120.0, testutil.ToFloat64(m.lastSlot))

	m.BlockStarted()
	m.BlockFinished(130, BlockFailed, time.Millisecond)
	assert.Equal(t, uint64(120), m.LastSlot())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocks.WithLabelValues(BlockFailed)))
}

func TestServerRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.TradeEmitted(parse.PUMP_FUN)
	m.BlockStarted()
	m.BlockFinished(77, BlockOK, time.Millisecond)
	server := NewServer(reg, m)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, uint64(77), health.LastSlot)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `solanatrades_decoder_trades_emitted_total{program="PumpFun"} 1`))
}
