package httptransport_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"voteledger/internal/audit"
	"voteledger/internal/broadcast"
	"voteledger/internal/dispatch"
	jwttoken "voteledger/internal/jwt_token"
	"voteledger/internal/ledger/service"
	"voteledger/internal/ledger/store"
	"voteledger/internal/platform/metrics"
	httptransport "voteledger/internal/transport/http"
	"voteledger/pkg/testutil"
)

var (
	alice = fmt.Sprintf("0x%040x", 0xa1)
	bob   = fmt.Sprintf("0x%040x", 0xb0b)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type RouterSuite struct {
	suite.Suite
	hub      *broadcast.Hub
	notifier *broadcast.Notifier
	router   http.Handler
	token    string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := quietLogger()
	m := metrics.New()
	s.hub = broadcast.NewHub(50)
	s.notifier = broadcast.NewNotifier(s.hub, 64, broadcast.WithLogger(logger))

	svc, err := service.New(store.New(), audit.NewLog(audit.WithLogger(logger)),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithNotifier(s.notifier),
	)
	s.Require().NoError(err)
	d := dispatch.New(svc, dispatch.WithLogger(logger), dispatch.WithMetrics(m))

	jwtSvc := jwttoken.NewJWTService("test-secret", "voteledger")
	s.token, err = jwtSvc.GenerateAdminToken("ops@example.org", time.Hour)
	s.Require().NoError(err)

	h := httptransport.New(d, s.hub, svc,
		httptransport.WithLogger(logger),
		httptransport.WithMetrics(m),
		httptransport.WithHeartbeat(50*time.Millisecond),
	)
	s.router = httptransport.NewRouter(h, jwtSvc, logger)
}

func (s *RouterSuite) TearDownTest() {
	_ = s.notifier.Close(context.Background())
	s.hub.Close()
}

func (s *RouterSuite) action(body string, admin bool) (*httptest.ResponseRecorder, map[string]any) {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api", body)
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rr := testutil.DoRequest(s.router, req)
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func (s *RouterSuite) seed() {
	for _, body := range []string{
		`{"action":"registerVoter","walletId":"` + alice + `","name":"Alice","idNumber":"A-1"}`,
		`{"action":"registerVoter","walletId":"` + bob + `","name":"Bob","idNumber":"B-1"}`,
	} {
		rr, _ := s.action(body, false)
		s.Require().Equal(http.StatusOK, rr.Code)
	}
	for _, body := range []string{
		`{"action":"createElection","title":"Board","description":"Annual"}`,
		`{"action":"addCandidate","electionId":1,"name":"Carol","party":"Blue"}`,
		`{"action":"addCandidate","electionId":"1","name":"Dave"}`,
	} {
		rr, _ := s.action(body, true)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	}
}

func (s *RouterSuite) TestAliceAndBobScenario() {
	s.seed()

	rr, out := s.action(`{"action":"castVote","walletId":"`+alice+`","electionId":1,"candidateId":1,"txHash":"0xfeed"}`, false)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(true, out["success"])
	s.Contains(out, "vote")

	rr, _ = s.action(`{"action":"castVote","walletId":"`+strings.ToUpper(bob[2:])+`","electionId":1,"candidateId":1}`, false)
	s.Equal(http.StatusBadRequest, rr.Code, "wallet without 0x prefix is invalid")

	rr, _ = s.action(`{"action":"castVote","walletId":"`+bob+`","electionId":1,"candidateId":1}`, false)
	s.Equal(http.StatusOK, rr.Code)

	rr, out = s.action(`{"action":"castVote","walletId":"`+alice+`","electionId":1,"candidateId":2}`, false)
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(false, out["success"])
	s.Equal("AlreadyVoted", out["error"])
	s.NotEmpty(out["message"])

	rr, out = s.action(`{"action":"getResults","electionId":1}`, false)
	s.Require().Equal(http.StatusOK, rr.Code)
	election := out["election"].(map[string]any)
	s.Equal(2.0, election["totalVotes"])
	candidates := out["candidates"].([]any)
	first := candidates[0].(map[string]any)
	second := candidates[1].(map[string]any)
	s.Equal("Carol", first["name"])
	s.Equal(2.0, first["votes"])
	s.Equal(100.0, first["percentage"])
	s.Equal(0.0, second["votes"])
	s.Equal(0.0, second["percentage"])

	rr, out = s.action(`{"action":"getStats"}`, false)
	s.Require().Equal(http.StatusOK, rr.Code)
	totals := out["totals"].(map[string]any)
	s.Equal(2.0, totals["votes"])
	s.Equal(1.0, out["participation"].(map[string]any)["ratio"])
}

func (s *RouterSuite) TestAdminGating() {
	rr, out := s.action(`{"action":"createElection","title":"Board"}`, false)
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal("Unauthorized", out["error"])

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api", `{"action":"createElection","title":"Board"}`)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr = testutil.DoRequest(s.router, req)
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr, out = s.action(`{"action":"createElection","title":"Board"}`, true)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(1.0, out["electionId"])

	rr, out = s.action(`{"action":"getAuditLog"}`, true)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(true, out["verified"])
	entries := out["entries"].([]any)
	s.Len(entries, 3)
	s.Equal("error", entries[0].(map[string]any)["outcome"])
}

func (s *RouterSuite) TestEnvelopeErrors() {
	rr, out := s.action(`{"action":"launchRocket"}`, false)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("UnknownAction", out["error"])

	rr, out = s.action(`{"action":`, false)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("BadRequest", out["error"])

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/", "")
	rr = testutil.DoRequest(s.router, req)
	s.Equal(http.StatusBadRequest, rr.Code)
	var env envelope
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &env))
	s.False(env.Success)

	req = testutil.NewRequestWithBody(s.T(), http.MethodPost, "/", `{"action":"getActiveElections"}`)
	rr = testutil.DoRequest(s.router, req)
	s.Equal(http.StatusOK, rr.Code)
	s.NotEmpty(rr.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestHealthAndMetrics() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"ok"}`, rr.Body.String())

	s.seed()
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "voteledger_voters_registered_total 2")
	s.Contains(rr.Body.String(), `voteledger_dispatch_duration_seconds_count{action="addCandidate"} 2`)
}

func (s *RouterSuite) TestExport() {
	s.seed()

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/export/voters"))
	s.Equal(http.StatusUnauthorized, rr.Code)

	get := func(path string) *httptest.ResponseRecorder {
		req := testutil.NewRequest(s.T(), http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+s.token)
		return testutil.DoRequest(s.router, req)
	}

	rr = get("/export/voters?format=csv")
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Header().Get("Content-Type"), "text/csv")
	s.Contains(rr.Header().Get("Content-Disposition"), "voters.csv")
	records, err := csv.NewReader(rr.Body).ReadAll()
	s.Require().NoError(err)
	s.Len(records, 3)
	s.Equal(alice, records[1][0])

	rr = get("/export/all?format=xlsx")
	s.Require().Equal(http.StatusOK, rr.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Candidates")
	s.Require().NoError(err)
	s.Len(rows, 3)

	s.Equal(http.StatusBadRequest, get("/export/all?format=csv").Code)
	s.Equal(http.StatusBadRequest, get("/export/votes?format=pdf").Code)
	s.Equal(http.StatusNotFound, get("/export/ballots").Code)
}

func TestEventStream(t *testing.T) {
	hub := broadcast.NewHub(10)
	defer hub.Close()
	ctx := context.Background()
	for i := uint64(1); i <= 2; i++ {
		require.NoError(t, hub.Publish(ctx, broadcast.Event{Sequence: i, Type: broadcast.EventVoterRegistered}))
	}

	h := httptransport.New(nil, hub, nil, httptransport.WithLogger(quietLogger()), httptransport.WithHeartbeat(time.Hour))
	srv := httptest.NewServer(httptransport.NewRouter(h, nil, quietLogger()))
	defer srv.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Last-Event-ID", "1")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextID := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if id, ok := strings.CutPrefix(strings.TrimSpace(line), "id: "); ok {
				return id
			}
		}
	}

	assert.Equal(t, "2", nextID(), "replays events after Last-Event-ID")
	require.NoError(t, hub.Publish(ctx, broadcast.Event{Sequence: 3, Type: broadcast.EventVoteCast}))
	assert.Equal(t, "3", nextID())
}
