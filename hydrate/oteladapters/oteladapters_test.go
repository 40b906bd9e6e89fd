package oteladapters

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// capturingHandler is a minimal slog.Handler collecting records for assertions.
type capturingHandler struct {
	records *[]slog.Record
}

func (h capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h capturingHandler) Handle(_ context.Context, record slog.Record) error {
	*h.records = append(*h.records, record)
	return nil
}

func (h capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h capturingHandler) WithGroup(string) slog.Handler { return h }

func Test_SlogBridgeLogger_ForwardsAllLevels(t *testing.T) {
	// given
	var records []slog.Record
	logger := NewSlogBridgeLoggerWithHandler(capturingHandler{records: &records})
	ctx := context.Background()

	// when
	logger.DebugContext(ctx, "d", "key", "value")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	// then
	require.Len(t, records, 4)
	assert.Equal(t, "d", records[0].Message)
	assert.Equal(t, slog.LevelDebug, records[0].Level)
	assert.Equal(t, slog.LevelError, records[3].Level)
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	// the global provider defaults to noop, logging must still be safe
	logger := NewSlogBridgeLogger("hydrate-test")

	logger.InfoContext(context.Background(), "ignored", "key", "value")
}

func Test_MetricsCollector_CachesInstruments(t *testing.T) {
	// given the global meter provider, which defaults to noop
	collector := NewMetricsCollector(otel.Meter("hydrate-test"))
	labels := map[string]string{"stage": "records"}

	// when
	collector.RecordDuration("load_duration_seconds", 25*time.Millisecond, labels)
	collector.RecordDuration("load_duration_seconds", 30*time.Millisecond, labels)
	collector.IncrementCounter("load_failures_total", labels)
	collector.RecordValue("queue_depth", 3, nil)

	// then each instrument was created once
	assert.Len(t, collector.histograms, 1)
	assert.Len(t, collector.counters, 1)
	assert.Len(t, collector.gauges, 1)
}
