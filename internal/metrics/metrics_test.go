package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	t.Run("ActiveSessions", func(t *testing.T) {
		IncSession()
		val := testutil.ToFloat64(ActiveSessions)
		if val < 1 {
			t.Errorf("expected ActiveSessions to be at least 1, got %v", val)
		}
		DecSession()
	})

	t.Run("MatchmakerQueueDepth", func(t *testing.T) {
		MatchmakerQueueDepth.WithLabelValues("general").Set(3)
		val := testutil.ToFloat64(MatchmakerQueueDepth.WithLabelValues("general"))
		if val != 3 {
			t.Errorf("expected queue depth 3, got %v", val)
		}
	})

	t.Run("PairsFormed", func(t *testing.T) {
		before := testutil.ToFloat64(PairsFormed)
		PairsFormed.Inc()
		after := testutil.ToFloat64(PairsFormed)
		if after != before+1 {
			t.Errorf("expected PairsFormed to increment by 1")
		}
	})

	t.Run("SignalsForwarded", func(t *testing.T) {
		SignalsForwarded.WithLabelValues("webrtc_offer", "ok").Inc()
		val := testutil.ToFloat64(SignalsForwarded.WithLabelValues("webrtc_offer", "ok"))
		if val < 1 {
			t.Errorf("expected SignalsForwarded to be at least 1, got %v", val)
		}
	})

	t.Run("RedisOperationsTotal", func(t *testing.T) {
		RedisOperationsTotal.WithLabelValues("get", "success").Inc()
		val := testutil.ToFloat64(RedisOperationsTotal.WithLabelValues("get", "success"))
		if val < 1 {
			t.Errorf("expected RedisOperationsTotal to be at least 1, got %v", val)
		}
	})

	t.Run("RedisOperationDuration", func(t *testing.T) {
		RedisOperationDuration.WithLabelValues("get").Observe(0.1)
	})
}
