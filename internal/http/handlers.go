package http

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"socialspend/internal/amqp"
	"socialspend/internal/analytics"
	"socialspend/internal/core"
	applog "socialspend/internal/log"
	"socialspend/internal/services"
)

type yoyRowView struct {
	Bank           string  `json:"bank"`
	SpendA         int64   `json:"spend_a"`
	SpendB         int64   `json:"spend_b"`
	SpendADisplay  string  `json:"spend_a_display"`
	SpendBDisplay  string  `json:"spend_b_display"`
	Change         float64 `json:"change"`
	ChangeRounded  float64 `json:"change_rounded"`
	ChangeDisplay  string  `json:"change_display"`
	AbsoluteChange int64   `json:"absolute_change"`
	Color          string  `json:"color"`
}

type annualTotalView struct {
	Bank         string           `json:"bank"`
	ByYear       map[string]int64 `json:"by_year"`
	Total        int64            `json:"total"`
	TotalDisplay string           `json:"total_display"`
	Color        string           `json:"color"`
}

type platformView struct {
	Platform      string `json:"platform"`
	Label         string `json:"label"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	Share         int    `json:"share"`
	Color         string `json:"color"`
}

type tableView struct {
	Banks  []string                    `json:"banks"`
	Months []string                    `json:"months"`
	Data   map[string]map[string]int64 `json:"data"`
	Totals map[string]int64            `json:"totals"`
	Colors map[string]string           `json:"colors"`
}

type insightsView struct {
	Insights []string `json:"insights"`
}

// snapshot loads the dataset or writes a 503 and returns false.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (services.Snapshot, bool) {
	snap, err := s.dataset.Snapshot(r.Context())
	if err != nil {
		s.structured.LogError(r.Context(), "Failed to load dataset", err, applog.OpLoad, nil)
		ServiceUnavailableError("dataset unavailable").Write(w)
		return services.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) ([]core.SpendRecord, bool) {
	snap, ok := s.snapshot(w, r)
	return snap.Records, ok
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	banks := analytics.UniqueBanks(records)
	NewJSONResponse(map[string]any{
		"banks":  banks,
		"colors": s.palette.Banks(banks),
	}).Write(w)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	type pair struct {
		YearA int `json:"year_a"`
		YearB int `json:"year_b"`
	}
	pairs := make([]pair, 0)
	for _, p := range analytics.YearPairs(records) {
		pairs = append(pairs, pair{YearA: p.YearA, YearB: p.YearB})
	}
	body := map[string]any{
		"years":      analytics.UniqueYears(records),
		"pairs":      pairs,
		"date_range": analytics.DateRange(records),
	}
	if year, month, ok := analytics.LatestDate(records); ok {
		body["latest"] = map[string]any{"year": year, "month": month}
	}
	NewJSONResponse(body).Write(w)
}

// handleTotals returns platform totals for ?bank=&year=, or the annual totals
// of every bank when no bank is given.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	if query.Get("bank") != "" {
		bank, _ := ParseBankParam(query)
		year, err := ParseYearParam(query, latestYear(records))
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		NewJSONResponse(map[string]any{
			"bank":      bank,
			"year":      year,
			"platforms": analytics.TotalByBankPlatform(records, bank, year),
		}).Write(w)
		return
	}

	totals := analytics.AnnualTotals(records)
	views := make([]annualTotalView, len(totals))
	for i, t := range totals {
		byYear := make(map[string]int64, len(t.ByYear))
		for y, v := range t.ByYear {
			byYear[strconv.Itoa(y)] = v
		}
		views[i] = annualTotalView{
			Bank:         t.Bank,
			ByYear:       byYear,
			Total:        t.Total,
			TotalDisplay: core.FormatCompact(float64(t.Total)),
			Color:        s.palette.Bank(t.Bank),
		}
	}
	NewJSONResponse(map[string]any{
		"years":  analytics.UniqueYears(records),
		"totals": views,
	}).Write(w)
}

func (s *Server) handleYoY(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	p, err := ParseYearPairParams(r.URL.Query(), records)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	rows := analytics.YearOverYearRows(records, p.YearA, p.YearB, p.Partial)
	views := make([]yoyRowView, len(rows))
	for i, row := range rows {
		views[i] = yoyRowView{
			Bank:           row.Bank,
			SpendA:         row.SpendA,
			SpendB:         row.SpendB,
			SpendADisplay:  core.FormatCompact(float64(row.SpendA)),
			SpendBDisplay:  core.FormatCompact(float64(row.SpendB)),
			Change:         row.Change,
			ChangeRounded:  row.ChangeRounded,
			ChangeDisplay:  row.ChangeDisplay(),
			AbsoluteChange: row.AbsoluteChange,
			Color:          s.palette.Bank(row.Bank),
		}
	}

	body := map[string]any{
		"year_a":  p.YearA,
		"year_b":  p.YearB,
		"partial": p.Partial,
		"rows":    views,
	}
	if p.Partial {
		body["time_range"] = analytics.Partial(records, p.YearB).TimeRange
	}
	NewJSONResponse(body).Write(w)
}

func (s *Server) handleWave(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	wave, ok := analytics.WaveTable(records)
	if !ok {
		NotFoundError("no data available").Write(w)
		return
	}

	totalsA := make(map[string]int64, len(wave.Banks))
	totalsB := make(map[string]int64, len(wave.Banks))
	for _, b := range wave.Banks {
		totalsA[b] = wave.TotalA(b)
		totalsB[b] = wave.TotalB(b)
	}
	colors := s.palette.Banks(wave.Banks)
	NewJSONResponse(map[string]any{
		"year_a": wave.YearA,
		"year_b": wave.YearB,
		"wave_a": tableView{Banks: wave.Banks, Months: wave.Months, Data: wave.DataA, Totals: totalsA, Colors: colors},
		"wave_b": tableView{Banks: wave.Banks, Months: wave.Months, Data: wave.DataB, Totals: totalsB, Colors: colors},
	}).Write(w)
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	bank, err := ParseBankParam(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	year, err := ParseYearParam(query, latestYear(records))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	shares := analytics.PlatformShares(records, bank, year)
	views := make([]platformView, len(shares))
	for i, p := range shares {
		views[i] = platformView{
			Platform:      p.Platform,
			Label:         analytics.PlatformLabel(p.Platform),
			Amount:        p.Amount,
			AmountDisplay: core.FormatCompact(float64(p.Amount)),
			Share:         p.Share,
			Color:         s.palette.Platform(p.Platform),
		}
	}
	NewJSONResponse(map[string]any{
		"bank":      bank,
		"year":      year,
		"platforms": views,
	}).Write(w)
}

func (s *Server) handlePlatformTrend(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	bank, err := ParseBankParam(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	year, err := ParseYearParam(query, latestYear(records))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	t := analytics.BankPlatformTrend(records, bank, year)
	platforms := t.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	NewJSONResponse(map[string]any{
		"bank":      t.Bank,
		"year":      t.Year,
		"range":     t.Range,
		"months":    t.Months,
		"platforms": platforms,
		"data":      t.Data,
		"colors":    s.palette.Platforms(platforms),
	}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	year, err := ParseYearParam(r.URL.Query(), latestYear(records))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	m := analytics.MonthlyMatrix(records, year)
	totals := make(map[string]int64, len(m.Banks))
	for _, b := range m.Banks {
		totals[b] = m.BankTotal(b)
	}
	monthTotals := make(map[string]int64, len(m.Months))
	for _, month := range m.Months {
		monthTotals[month] = m.MonthTotal(month)
	}
	banks, months := m.Banks, m.Months
	if banks == nil {
		banks = []string{}
	}
	if months == nil {
		months = []string{}
	}
	NewJSONResponse(map[string]any{
		"year":         year,
		"table":        tableView{Banks: banks, Months: months, Data: m.Data, Totals: totals, Colors: s.palette.Banks(banks)},
		"month_totals": monthTotals,
	}).Write(w)
}

func (s *Server) handleRejections(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	type rejection struct {
		Source string `json:"source"`
		Line   int    `json:"line"`
		Column string `json:"column,omitempty"`
		Value  string `json:"value,omitempty"`
		Error  string `json:"error"`
	}
	out := make([]rejection, len(snap.Rejected))
	for i, re := range snap.Rejected {
		out[i] = rejection{Source: re.Source, Line: re.Line, Column: re.Column, Value: re.Value, Error: re.Err.Error()}
	}
	NewJSONResponse(map[string]any{"rejected": out}).Write(w)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	platforms := make([]string, 0)
	seen := make(map[string]bool)
	for _, rec := range records {
		if !seen[rec.Platform] {
			seen[rec.Platform] = true
			platforms = append(platforms, rec.Platform)
		}
	}
	NewJSONResponse(map[string]any{
		"banks":     s.palette.Banks(analytics.UniqueBanks(records)),
		"platforms": s.palette.Platforms(platforms),
	}).Write(w)
}

func (s *Server) handleSecurityStats(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse(s.metrics.snapshot()).Write(w)
}

func (s *Server) handleYoYInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	p, err := ParseYearPairParams(r.URL.Query(), records)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	writeInsights(w, analytics.YoYInsights(records, p.YearA, p.YearB, p.Partial))
}

func (s *Server) handleTimelineInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	writeInsights(w, analytics.TimelineInsights(records, sanitizeInput(r.URL.Query().Get("bank"))))
}

func (s *Server) handlePlatformInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	bank, err := ParseBankParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	writeInsights(w, analytics.PlatformInsights(records, bank))
}

func (s *Server) handleBankInsights(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	bank, err := ParseBankParam(query)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ref, _ := analytics.ReferenceYear(records)
	year, err := ParseYearParam(query, ref)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	writeInsights(w, analytics.BankInsights(records, bank, year))
}

// handleImport queues an import when a publisher is configured and otherwise
// imports synchronously. Paths are relative to the import directory.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := decodeImportBody(r.Body)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := services.CheckImportPath(body.Path); err != nil {
		BadRequestError("path must be relative to the import directory").Write(w)
		return
	}

	switch {
	case s.publisher != nil:
		req := amqp.NewImportRequest(body.Path, body.Source, body.Strict)
		if err := s.publisher.PublishImport(ctx, req); err != nil {
			s.structured.LogError(ctx, "Failed to queue import", err, applog.OpImport,
				applog.NewFields().WithImport(body.Path, 0, 0))
			ServiceUnavailableError("import queue unavailable").Write(w)
			return
		}
		NewJSONResponse(map[string]any{"status": "queued", "path": body.Path}).
			Status(http.StatusAccepted).
			Write(w)

	case s.importer != nil:
		report, err := s.importer.ImportFile(ctx, body.Path, body.Source, body.Strict)
		switch {
		case errors.Is(err, services.ErrOutsideImportDir):
			BadRequestError("path must be relative to the import directory").Write(w)
			return
		case errors.Is(err, os.ErrNotExist):
			NotFoundError("import file not found").Write(w)
			return
		case err != nil:
			s.structured.LogError(ctx, "Import failed", err, applog.OpImport,
				applog.NewFields().WithImport(body.Path, report.Records, len(report.Rejected)))
			ErrorResponse(http.StatusUnprocessableEntity, err.Error()).Write(w)
			return
		}
		rejected := make([]string, len(report.Rejected))
		for i, re := range report.Rejected {
			rejected[i] = re.Error()
		}
		NewJSONResponse(map[string]any{
			"status":   "imported",
			"source":   report.Source,
			"batch_id": report.BatchID,
			"records":  report.Records,
			"rejected": rejected,
		}).Status(http.StatusCreated).Write(w)

	default:
		ErrorResponse(http.StatusNotImplemented, "the configured backend is read-only").Write(w)
	}
}

func writeInsights(w http.ResponseWriter, insights []string) {
	if insights == nil {
		insights = []string{}
	}
	NewJSONResponse(insightsView{Insights: insights}).Write(w)
}

func latestYear(records []core.SpendRecord) int {
	years := analytics.UniqueYears(records)
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}
