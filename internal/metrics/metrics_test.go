package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackmyhand/internal/model"
)

type MetricsSuite struct {
	suite.Suite
	m *Metrics
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsSuite))
}

func (s *MetricsSuite) SetupTest() {
	s.m = New()
}

func (s *MetricsSuite) TestEntryCountersByKind() {
	s.m.EntryApplied(model.EntryBuyIn)
	s.m.EntryApplied(model.EntryBuyIn)
	s.m.EntryApplied(model.EntryCashOut)

	s.Equal(2.0, testutil.ToFloat64(s.m.EntriesApplied.WithLabelValues("buy-in")))
	s.Equal(1.0, testutil.ToFloat64(s.m.EntriesApplied.WithLabelValues("cash-out")))
}

func (s *MetricsSuite) TestRejectedByReason() {
	s.m.EntryRejected(model.Statef("archived"))
	s.m.EntryRejected(fmt.Errorf("wrapped: %w", model.ErrReference))

	s.Equal(1.0, testutil.ToFloat64(s.m.EntriesRejected.WithLabelValues("state")))
	s.Equal(1.0, testutil.ToFloat64(s.m.EntriesRejected.WithLabelValues("reference")))
}

func (s *MetricsSuite) TestReason() {
	s.Equal("reconciliation", Reason(&model.ReconciliationError{}))
	s.Equal("validation", Reason(model.Validationf("bad")))
	s.Equal("other", Reason(io.EOF))
}

func (s *MetricsSuite) TestTrackerGauge() {
	s.m.TrackerStarted()
	s.m.TrackerStarted()
	s.m.TrackerStopped()
	s.Equal(1.0, testutil.ToFloat64(s.m.RunningTrackers))
}

func (s *MetricsSuite) TestNilMetricsIsNoop() {
	var m *Metrics
	s.NotPanics(func() {
		m.EntryApplied(model.EntryBuyIn)
		m.GameArchived()
		m.CheckpointFailed()
		m.TrackerStarted()
	})
}

func (s *MetricsSuite) TestHandlerExposesRegistry() {
	s.m.GameArchived()

	rec := httptest.NewRecorder()
	s.m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "trackmyhand_games_archived_total 1")
}
