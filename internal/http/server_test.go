package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialspend/internal/amqp"
	"socialspend/internal/core"
	"socialspend/internal/ingest"
	applog "socialspend/internal/log"
	"socialspend/internal/services"
	"socialspend/internal/theme"
)

type mockDataset struct {
	mock.Mock
}

func (m *mockDataset) Snapshot(ctx context.Context) (services.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.Snapshot), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishImport(ctx context.Context, req *amqp.ImportRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) ImportFile(ctx context.Context, path, source string, strict bool) (services.ImportReport, error) {
	args := m.Called(ctx, path, source, strict)
	return args.Get(0).(services.ImportReport), args.Error(1)
}

func testRecords() []core.SpendRecord {
	return []core.SpendRecord{
		{Bank: "Chase", Year: 2023, Month: "January 2023", Platform: "FACEBOOK.COM", Spend: 100},
		{Bank: "Chime", Year: 2023, Month: "January 2023", Platform: "TIKTOK", Spend: 200},
		{Bank: "Chase", Year: 2024, Month: "January 2024", Platform: "FACEBOOK.COM", Spend: 300},
		{Bank: "Chime", Year: 2024, Month: "January 2024", Platform: "TIKTOK", Spend: 100},
	}
}

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	if deps.Dataset == nil {
		ds := &mockDataset{}
		ds.On("Snapshot", mock.Anything).Return(services.Snapshot{
			Records: testRecords(),
			Rejected: []services.SourceRejection{{
				Source:   "spend.csv",
				RowError: ingest.RowError{Line: 7, Column: "spend", Value: "n/a", Err: ingest.ErrInvalidNumber},
			}},
		}, nil)
		deps.Dataset = ds
	}
	deps.Palette = theme.Default()
	deps.Logger = applog.New(applog.Config{Output: &bytes.Buffer{}})
	s := NewServer(":0", deps)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyFailsWithoutDataset(t *testing.T) {
	ds := &mockDataset{}
	ds.On("Snapshot", mock.Anything).Return(services.Snapshot{}, errors.New("sheet unavailable"))
	s := newTestServer(t, Dependencies{Dataset: ds})

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/readyz").Code)

	rec := get(t, s, "/api/v1/banks")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "dataset unavailable", body["error"])
}

func TestBanks(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	rec := get(t, s, "/api/v1/banks")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Banks  []string          `json:"banks"`
		Colors map[string]string `json:"colors"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"Chase", "Chime"}, body.Banks)
	assert.Equal(t, "#117ACA", body.Colors["Chase"])
}

func TestYears(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	var body struct {
		Years     []int  `json:"years"`
		DateRange string `json:"date_range"`
		Pairs     []struct {
			YearA int `json:"year_a"`
			YearB int `json:"year_b"`
		} `json:"pairs"`
		Latest struct {
			Year  int    `json:"year"`
			Month string `json:"month"`
		} `json:"latest"`
	}
	decode(t, get(t, s, "/api/v1/years"), &body)

	assert.Equal(t, []int{2023, 2024}, body.Years)
	require.Len(t, body.Pairs, 1)
	assert.Equal(t, 2023, body.Pairs[0].YearA)
	assert.Equal(t, "January 2023 – January 2024", body.DateRange)
	assert.Equal(t, 2024, body.Latest.Year)
	assert.Equal(t, "January", body.Latest.Month)
}

func TestYoY(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	rec := get(t, s, "/api/v1/yoy")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		YearA int          `json:"year_a"`
		YearB int          `json:"year_b"`
		Rows  []yoyRowView `json:"rows"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2023, body.YearA)
	assert.Equal(t, 2024, body.YearB)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "Chase", body.Rows[0].Bank)
	assert.Equal(t, 200.0, body.Rows[0].Change)
	assert.Equal(t, "+200%", body.Rows[0].ChangeDisplay)
	assert.Equal(t, "Chime", body.Rows[1].Bank)
	assert.Equal(t, "-50%", body.Rows[1].ChangeDisplay)
	assert.Equal(t, int64(-100), body.Rows[1].AbsoluteChange)
}

func TestYoYPartialAndValidation(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	var body map[string]any
	decode(t, get(t, s, "/api/v1/yoy?year_a=2023&year_b=2024&partial=true"), &body)
	assert.Equal(t, "January", body["time_range"])

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/yoy?year_a=20x").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/yoy?partial=maybe").Code)
}

func TestTotals(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	var platforms struct {
		Platforms map[string]int64 `json:"platforms"`
	}
	decode(t, get(t, s, "/api/v1/totals?bank=Chase&year=2024"), &platforms)
	assert.Equal(t, map[string]int64{"FACEBOOK.COM": 300}, platforms.Platforms)

	var none struct {
		Platforms map[string]int64 `json:"platforms"`
	}
	decode(t, get(t, s, "/api/v1/totals?bank=Nobody&year=2024"), &none)
	assert.NotNil(t, none.Platforms)
	assert.Empty(t, none.Platforms)

	var annual struct {
		Totals []annualTotalView `json:"totals"`
	}
	decode(t, get(t, s, "/api/v1/totals"), &annual)
	require.Len(t, annual.Totals, 2)
	assert.Equal(t, "Chase", annual.Totals[0].Bank)
	assert.Equal(t, int64(300), annual.Totals[0].ByYear["2024"])
	assert.Equal(t, "$400", annual.Totals[0].TotalDisplay)
}

func TestWave(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	var body struct {
		YearA int       `json:"year_a"`
		YearB int       `json:"year_b"`
		WaveB tableView `json:"wave_b"`
	}
	decode(t, get(t, s, "/api/v1/wave"), &body)
	assert.Equal(t, 2023, body.YearA)
	assert.Equal(t, 2024, body.YearB)
	assert.Equal(t, []string{"December", "January"}, body.WaveB.Months)
	assert.Equal(t, []string{"Chase", "Chime"}, body.WaveB.Banks)
	assert.Equal(t, int64(300), body.WaveB.Totals["Chase"])
}

func TestWaveEmpty(t *testing.T) {
	ds := &mockDataset{}
	ds.On("Snapshot", mock.Anything).Return(services.Snapshot{}, nil)
	s := newTestServer(t, Dependencies{Dataset: ds})
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/v1/wave").Code)
}

func TestPlatforms(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/platforms").Code)

	var body struct {
		Year      int            `json:"year"`
		Platforms []platformView `json:"platforms"`
	}
	decode(t, get(t, s, "/api/v1/platforms?bank=Chime"), &body)
	assert.Equal(t, 2024, body.Year)
	require.Len(t, body.Platforms, 1)
	assert.Equal(t, "Tiktok", body.Platforms[0].Label)
	assert.Equal(t, 100, body.Platforms[0].Share)
	assert.Equal(t, "#000000", body.Platforms[0].Color)
}

func TestMonthly(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	var body struct {
		Year        int              `json:"year"`
		Table       tableView        `json:"table"`
		MonthTotals map[string]int64 `json:"month_totals"`
	}
	decode(t, get(t, s, "/api/v1/monthly?year=2023"), &body)
	assert.Equal(t, 2023, body.Year)
	assert.Equal(t, []string{"January"}, body.Table.Months)
	assert.Equal(t, int64(300), body.MonthTotals["January"])
}

func TestRejections(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	var body struct {
		Rejected []map[string]any `json:"rejected"`
	}
	decode(t, get(t, s, "/api/v1/rejections"), &body)
	require.Len(t, body.Rejected, 1)
	assert.Equal(t, "spend.csv", body.Rejected[0]["source"])
	assert.Equal(t, float64(7), body.Rejected[0]["line"])
}

func TestInsights(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	var body insightsView
	decode(t, get(t, s, "/api/v1/insights/yoy"), &body)
	require.NotEmpty(t, body.Insights)
	assert.Contains(t, body.Insights[0], "Chase")

	decode(t, get(t, s, "/api/v1/insights/timeline"), &body)
	assert.Len(t, body.Insights, 3)

	decode(t, get(t, s, "/api/v1/insights/platform?bank=Nobody"), &body)
	assert.Equal(t, []string{"No data available for Nobody."}, body.Insights)

	rec := get(t, s, "/api/v1/insights/bank?bank=Nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"insights":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/insights/bank").Code)
}

func TestTheme(t *testing.T) {
	s := newTestServer(t, Dependencies{})
	var body struct {
		Banks     map[string]string `json:"banks"`
		Platforms map[string]string `json:"platforms"`
	}
	decode(t, get(t, s, "/api/v1/theme"), &body)
	assert.Equal(t, "#01AC66", body.Banks["Chime"])
	assert.Equal(t, "#1877F2", body.Platforms["FACEBOOK.COM"])
}

func postImport(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestImportQueued(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishImport", mock.Anything, mock.MatchedBy(func(r *amqp.ImportRequest) bool {
		return r.Path == "incoming/q1.csv" && r.Strict
	})).Return(nil)
	s := newTestServer(t, Dependencies{Publisher: pub})

	rec := postImport(t, s, `{"path": "incoming/q1.csv", "strict": true}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	pub.AssertExpectations(t)
}

func TestImportQueueUnavailable(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishImport", mock.Anything, mock.Anything).Return(amqp.ErrCircuitOpen)
	s := newTestServer(t, Dependencies{Publisher: pub})

	assert.Equal(t, http.StatusServiceUnavailable, postImport(t, s, `{"path": "q1.csv"}`).Code)
}

func TestImportSynchronous(t *testing.T) {
	imp := &mockImporter{}
	imp.On("ImportFile", mock.Anything, "q1.csv", "Q1", false).Return(services.ImportReport{
		Source:   "Q1",
		BatchID:  4,
		Records:  10,
		Rejected: []ingest.RowError{{Line: 3, Err: ingest.ErrTooFewColumns}},
	}, nil)
	s := newTestServer(t, Dependencies{Importer: imp})

	rec := postImport(t, s, `{"path": "q1.csv", "source": "Q1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		BatchID  int64    `json:"batch_id"`
		Records  int      `json:"records"`
		Rejected []string `json:"rejected"`
	}
	decode(t, rec, &body)
	assert.Equal(t, int64(4), body.BatchID)
	assert.Equal(t, 10, body.Records)
	assert.Equal(t, []string{"line 3: too few columns"}, body.Rejected)
}

func TestImportFailures(t *testing.T) {
	imp := &mockImporter{}
	imp.On("ImportFile", mock.Anything, "bad.csv", "", true).Return(services.ImportReport{}, ingest.ErrRejectedRows)
	s := newTestServer(t, Dependencies{Importer: imp})

	assert.Equal(t, http.StatusUnprocessableEntity, postImport(t, s, `{"path": "bad.csv", "strict": true}`).Code)
	assert.Equal(t, http.StatusBadRequest, postImport(t, s, `{"source": "x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postImport(t, s, `{"path": "a.csv", "extra": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, postImport(t, s, `not json`).Code)

	readOnly := newTestServer(t, Dependencies{})
	assert.Equal(t, http.StatusNotImplemented, postImport(t, readOnly, `{"path": "a.csv"}`).Code)
}

func TestImportRejectsPathsOutsideImportDir(t *testing.T) {
	imp := &mockImporter{}
	pub := &mockPublisher{}
	direct := newTestServer(t, Dependencies{Importer: imp})
	queued := newTestServer(t, Dependencies{Publisher: pub})

	for _, body := range []string{
		`{"path": "/etc/passwd"}`,
		`{"path": "../secrets.csv"}`,
		`{"path": "imports/../../db/socialspend.db"}`,
	} {
		assert.Equal(t, http.StatusBadRequest, postImport(t, direct, body).Code, body)
		assert.Equal(t, http.StatusBadRequest, postImport(t, queued, body).Code, body)
	}
	imp.AssertNotCalled(t, "ImportFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishImport", mock.Anything, mock.Anything)
}

func TestImportResolveErrors(t *testing.T) {
	imp := &mockImporter{}
	imp.On("ImportFile", mock.Anything, "link.csv", "", false).
		Return(services.ImportReport{}, fmt.Errorf("%w: %q", services.ErrOutsideImportDir, "link.csv"))
	imp.On("ImportFile", mock.Anything, "gone.csv", "", false).
		Return(services.ImportReport{}, &fs.PathError{Op: "lstat", Path: "gone.csv", Err: fs.ErrNotExist})
	s := newTestServer(t, Dependencies{Importer: imp})

	assert.Equal(t, http.StatusBadRequest, postImport(t, s, `{"path": "link.csv"}`).Code)
	assert.Equal(t, http.StatusNotFound, postImport(t, s, `{"path": "gone.csv"}`).Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Dependencies{RateLimit: 2})
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Another client still gets through.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/security", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats SecurityStats
	decode(t, rec, &stats)
	assert.Equal(t, int64(1), stats.RateLimitHits)
}
