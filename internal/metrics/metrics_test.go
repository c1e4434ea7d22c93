package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/topicbus/internal/bus"
)

type fixedStats bus.Stats

func (f fixedStats) Stats() bus.Stats { return bus.Stats(f) }

func TestCollector_Values(t *testing.T) {
	c := NewCollector("topicbus", fixedStats{
		Published:           5,
		Delivered:           4,
		Dropped:             1,
		HandlerErrors:       2,
		AvgHandlerTime:      250 * time.Millisecond,
		ActiveSubscriptions: 3,
		Channels:            2,
	})

	expected := `
# HELP topicbus_bus_published_total Accepted publishes.
# TYPE topicbus_bus_published_total counter
topicbus_bus_published_total 5
# HELP topicbus_bus_delivered_total Successful handler invocations.
# TYPE topicbus_bus_delivered_total counter
topicbus_bus_delivered_total 4
# HELP topicbus_bus_subscriptions Active subscriptions.
# TYPE topicbus_bus_subscriptions gauge
topicbus_bus_subscriptions 3
# HELP topicbus_bus_handler_avg_seconds Mean handler execution time.
# TYPE topicbus_bus_handler_avg_seconds gauge
topicbus_bus_handler_avg_seconds 0.25
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"topicbus_bus_published_total",
		"topicbus_bus_delivered_total",
		"topicbus_bus_subscriptions",
		"topicbus_bus_handler_avg_seconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 11, testutil.CollectAndCount(c))
}

func TestCollector_LiveBus(t *testing.T) {
	b := bus.New()
	require.NoError(t, b.Start())
	defer b.Close(context.Background())

	ch := b.Channel("xbox")
	_, err := ch.SubscribeFunc("xbox.#", func(context.Context, any, bus.Envelope) error { return nil })
	require.NoError(t, err)
	_, err = ch.Publish(context.Background(), "xbox.newgame", nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector("", b)))

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	published := byName["bus_published_total"]
	require.NotNil(t, published)
	assert.Equal(t, dto.MetricType_COUNTER, published.GetType())
	assert.Equal(t, 1.0, published.GetMetric()[0].GetCounter().GetValue())

	channels := byName["bus_channels"]
	require.NotNil(t, channels)
	assert.Equal(t, 1.0, channels.GetMetric()[0].GetGauge().GetValue())
}

func TestHandler(t *testing.T) {
	reg, err := NewRegistry(NewCollector("topicbus", fixedStats{Published: 7}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "topicbus_bus_published_total 7")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
