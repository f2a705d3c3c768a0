package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IncrementVotesCast()
	m.IncrementVotesCast()
	m.IncrementRejection("castVote", "AlreadyVoted")
	m.ObservePersist(time.Now(), errors.New("disk full"))
	m.ObservePersist(time.Now(), nil)
	m.IncrementDropped("broadcast")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VotesCast))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("castVote", "AlreadyVoted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AsyncDropped.WithLabelValues("broadcast")))
}

func TestNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementVotesCast()
		m.ObserveDispatch("getStats", time.Now())
		m.AddSSESubscribers(1)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncrementVotersRegistered()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "voteledger_voters_registered_total 1")
}
