package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/exchange"
	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/metrics"
	"pnl-dashboard/internal/normalization"
	"pnl-dashboard/internal/persist"
	"pnl-dashboard/internal/storage"
	"pnl-dashboard/internal/storage/memory"
	"pnl-dashboard/internal/strategy"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fakeSheets struct {
	rows  [][]domain.Cell
	err   error
	calls []string
}

func (f *fakeSheets) FetchValues(_ context.Context, token, id, rng string) ([][]domain.Cell, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s|%s|%s", token, id, rng))
	return f.rows, f.err
}

type harness struct {
	svc    *Service
	store  *strategy.Store
	kv     *memory.KVStore
	repo   *persist.Repository
	events *recorder
	sheets *fakeSheets
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	n := 0
	store := strategy.NewStore(strategy.Options{
		Now: func() time.Time { return fixedNow },
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s%d", prefix, n)
		},
	})
	kv := memory.NewKVStore()
	repo := persist.NewRepository(kv, nil, persist.Options{})
	h := &harness{store: store, kv: kv, repo: repo, events: &recorder{}, sheets: &fakeSheets{}}
	h.svc = New(store, repo, Options{
		Now:       func() time.Time { return fixedNow },
		Publisher: h.events,
		Sheets:    h.sheets,
	})
	return h
}

func tradeRows() [][]domain.Cell {
	return [][]domain.Cell{
		domain.TextRow("Date", "PL", "Charges"),
		domain.TextRow("02-01-2023", "1000", "20"),
		domain.TextRow("09-01-2023", "-400", "20"),
		domain.TextRow("not a date", "50", "0"),
		domain.TextRow("16-01-2023", "200", "20"),
		domain.TextRow("06-02-2024", "300", "20"),
	}
}

func ingest(t *testing.T, h *harness, name string) domain.Strategy {
	t.Helper()
	m, err := h.svc.Ingest(context.Background(), IngestRequest{Name: name, FileName: "trades.csv", Rows: tradeRows(), AutoDetect: true})
	require.NoError(t, err)
	return m.Strategy
}

func TestIngest_AutoDetectAndPersist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	m, err := h.svc.Ingest(ctx, IngestRequest{Name: "Momentum", FileName: "trades.csv", Rows: tradeRows()})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, 5, m.Total)
	assert.Empty(t, m.Warning)
	assert.Equal(t, "Momentum", m.Strategy.Name)
	require.Len(t, m.Strategy.AllTrades, 4)
	assert.Equal(t, 980.0, m.Strategy.AllTrades[0].NetPL)
	assert.Equal(t, []EventType{EventStrategyCreated}, h.events.types())

	state, err := h.repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Strategies, 1)
	assert.Equal(t, m.Strategy.ID, state.CurrentID)
}

func TestIngest_ExplicitMapping(t *testing.T) {
	h := newHarness(t)

	mapping := domain.ColumnMapping{Date: domain.Column(0), PL: domain.Column(1)}
	m, err := h.svc.Ingest(context.Background(), IngestRequest{Rows: tradeRows(), Mapping: &mapping})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, m.Strategy.AllTrades[0].NetPL)
	assert.Nil(t, m.Strategy.ColumnMapping.Charges)
}

func TestIngest_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Ingest(ctx, IngestRequest{Rows: [][]domain.Cell{domain.TextRow("Foo", "Bar"), domain.TextRow("1", "2")}})
	assert.ErrorIs(t, err, domain.ErrMappingIncomplete)

	_, err = h.svc.Ingest(ctx, IngestRequest{Rows: [][]domain.Cell{domain.TextRow("Date", "PL"), domain.TextRow("x", "y")}})
	assert.ErrorIs(t, err, normalization.ErrNoValidTrades)

	assert.Equal(t, 0, h.store.Len())
	assert.Empty(t, h.events.types())
}

func TestIngest_CapacityLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < domain.MaxStrategies; i++ {
		ingest(t, h, fmt.Sprintf("S%d", i))
	}

	_, err := h.svc.Ingest(context.Background(), IngestRequest{Rows: tradeRows()})
	assert.ErrorIs(t, err, strategy.ErrCapacity)
	assert.Equal(t, domain.MaxStrategies, h.store.Len())
}

type brokenKV struct{ storage.KVStore }

func (brokenKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestIngest_PersistFailureIsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := strategy.NewStore(strategy.Options{})
	repo := persist.NewRepository(brokenKV{memory.NewKVStore()}, nil, persist.Options{})
	svc := New(store, repo, Options{Logger: zap.New(core)})

	m, err := svc.Ingest(context.Background(), IngestRequest{Rows: tradeRows()})
	require.NoError(t, err)

	assert.Contains(t, m.Warning, "disk full")
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to persist state").Len())
}

func TestRefresh_ResetsFiltersKeepsMapping(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := ingest(t, h, "A")

	_, err := h.svc.SetYear(ctx, st.ID, "2023")
	require.NoError(t, err)

	rows := [][]domain.Cell{
		domain.TextRow("Date", "PL", "Charges"),
		domain.TextRow("03-03-2023", "500", "0"),
		domain.TextRow("04-03-2024", "700", "0"),
	}
	m, err := h.svc.Refresh(ctx, st.ID, rows)
	require.NoError(t, err)

	assert.Equal(t, domain.YearAll, m.Strategy.SelectedYear)
	assert.Nil(t, m.Strategy.SelectedMonth)
	assert.Equal(t, st.ColumnMapping, m.Strategy.ColumnMapping)
	require.Len(t, m.Strategy.AllTrades, 2)
	require.Len(t, m.Strategy.Trades, 2)
	assert.Equal(t, 500.0, m.Strategy.Trades[0].CumulativePL)
	assert.Equal(t, 1200.0, m.Strategy.Trades[1].CumulativePL)
	assert.Contains(t, h.events.types(), EventTradesRefreshed)
}

func TestRefresh_UnknownStrategy(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Refresh(context.Background(), "missing", tradeRows())
	assert.ErrorIs(t, err, strategy.ErrNotFound)
}

func TestIngestSheets_AndRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.sheets.rows = tradeRows()

	m, err := h.svc.IngestSheets(ctx, SheetsRequest{Token: "tok", SpreadsheetID: "abc", SheetName: "Trades"})
	require.NoError(t, err)

	assert.Equal(t, "Trades", m.Strategy.Name)
	assert.Equal(t, domain.SourceTypeSheets, m.Strategy.Source.Type)
	assert.Equal(t, "Trades!A1:Z", m.Strategy.Source.Config.FullRange)
	require.NotNil(t, m.Strategy.Source.Config.LastSync)
	assert.Equal(t, []string{"tok|abc|Trades!A1:Z"}, h.sheets.calls)
	assert.Equal(t, []string{m.Strategy.ID}, h.svc.SheetsStrategies())

	h.sheets.rows = [][]domain.Cell{domain.TextRow("Date", "PL", "Charges"), domain.TextRow("01-05-2024", "10", "1")}
	r, err := h.svc.RefreshFromSheets(ctx, m.Strategy.ID, "tok2")
	require.NoError(t, err)
	require.Len(t, r.Strategy.AllTrades, 1)
	assert.Equal(t, 9.0, r.Strategy.AllTrades[0].NetPL)
	assert.Equal(t, fixedNow, *r.Strategy.Source.Config.LastSync)

	saved, err := h.repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved.Strategies, 1)
	assert.Len(t, saved.Strategies[0].AllTrades, 1)
	require.NotNil(t, saved.Strategies[0].Source.Config.LastSync)
	assert.True(t, fixedNow.Equal(*saved.Strategies[0].Source.Config.LastSync))
}

func TestRefreshFromSheets_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := ingest(t, h, "File")

	_, err := h.svc.RefreshFromSheets(ctx, st.ID, "tok")
	assert.ErrorIs(t, err, ErrNotSheetsSource)

	h.sheets.rows = tradeRows()
	m, err := h.svc.IngestSheets(ctx, SheetsRequest{SpreadsheetID: "abc", SheetName: "S"})
	require.NoError(t, err)

	h.sheets.err = errors.New("upstream down")
	_, err = h.svc.RefreshFromSheets(ctx, m.Strategy.ID, "tok")
	assert.ErrorContains(t, err, "upstream down")

	bare := New(strategy.NewStore(strategy.Options{}), nil, Options{})
	_, err = bare.IngestSheets(ctx, SheetsRequest{SpreadsheetID: "abc"})
	assert.ErrorIs(t, err, ErrSheetsUnavailable)
}

func TestMutations_PublishEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := ingest(t, h, "A")
	b := ingest(t, h, "B")

	_, err := h.svc.Switch(ctx, a.ID)
	require.NoError(t, err)
	_, err = h.svc.Rename(ctx, a.ID, "Alpha")
	require.NoError(t, err)
	_, err = h.svc.SetCapital(ctx, a.ID, 100000)
	require.NoError(t, err)
	require.NoError(t, h.svc.SetPLType(ctx, domain.PLTypeGross))
	_, err = h.svc.Delete(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventStrategyCreated, EventStrategyCreated, EventStrategySwitched,
		EventStrategyUpdated, EventStrategyUpdated, EventPLTypeChanged, EventStrategyDeleted,
	}, h.events.types())

	got, err := h.svc.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, domain.PLTypeGross, h.svc.PLType())
	assert.Len(t, h.svc.List(), 1)
}

func TestMutations_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Switch(ctx, "missing")
	assert.ErrorIs(t, err, strategy.ErrNotFound)
	_, err = h.svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, strategy.ErrNotFound)
	assert.ErrorIs(t, h.svc.SetPLType(ctx, "BOTH"), strategy.ErrInvalidPLType)
	assert.Empty(t, h.events.types())
}

func TestLoad_RestoresState(t *testing.T) {
	h := newHarness(t)
	st := ingest(t, h, "Saved")

	store := strategy.NewStore(strategy.Options{})
	svc := New(store, h.repo, Options{})
	require.NoError(t, svc.Load(context.Background()))

	assert.Equal(t, st.ID, svc.CurrentID())
	got, err := svc.Get(st.ID)
	require.NoError(t, err)
	assert.Len(t, got.Trades, 4)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	st := ingest(t, h, "A")

	d, err := h.svc.Dashboard("")
	require.NoError(t, err)

	assert.Equal(t, st.ID, d.StrategyID)
	assert.Equal(t, []int{2023, 2024}, d.Years)
	require.Len(t, d.Series, 4)
	assert.Equal(t, 980.0, d.Series[0].CumulativePL)
	assert.Equal(t, 1020.0, d.Series[3].CumulativePL)
	assert.Equal(t, 1020.0, d.Statistics.TotalPL)
	assert.Equal(t, 4, d.Statistics.TotalTrades)
	assert.Equal(t, "₹1,020", d.Headline.TotalPL)
	require.NotNil(t, d.TimePeriod)
	assert.Equal(t, 14, d.TimePeriod.Months)
	assert.Equal(t, 1020.0, d.Waterfall.Net)
	require.Len(t, d.LossBins, 1)
	assert.Equal(t, 1, d.LossBins[0].Count)
}

func TestDashboard_SeriesMatchesPLTypeUnderConcurrentSwitch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ingest(t, h, "A")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			pt := domain.PLTypeNet
			if i%2 == 0 {
				pt = domain.PLTypeGross
			}
			_ = h.svc.SetPLType(ctx, pt)
		}
	}()

	for i := 0; i < 200; i++ {
		d, err := h.svc.Dashboard("")
		require.NoError(t, err)
		run := 0.0
		for _, p := range d.Series {
			run += p.PL
			require.InDelta(t, run, p.CumulativePL, 1e-9, "plType %s", d.PLType)
		}
		require.InDelta(t, run, d.Statistics.TotalPL, 1e-9)
	}
	wg.Wait()
}

func TestPersist_LastWriteMatchesStore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := ingest(t, h, "A")
	b := ingest(t, h, "B")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := a.ID
			if i%2 == 1 {
				id = b.ID
			}
			_, _ = h.svc.Rename(ctx, id, fmt.Sprintf("name %d", i))
		}(i)
	}
	wg.Wait()

	saved, err := h.repo.Load(ctx)
	require.NoError(t, err)
	want := h.store.State()
	require.Len(t, saved.Strategies, len(want.Strategies))
	for i := range want.Strategies {
		assert.Equal(t, want.Strategies[i].ID, saved.Strategies[i].ID)
		assert.Equal(t, want.Strategies[i].Name, saved.Strategies[i].Name)
	}
	assert.Equal(t, want.CurrentID, saved.CurrentID)
}

func TestDashboard_NoCurrent(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Dashboard("")
	assert.ErrorIs(t, err, ErrNoCurrentStrategy)
}

func TestDashboard_FilteredView(t *testing.T) {
	h := newHarness(t)
	st := ingest(t, h, "A")

	_, err := h.svc.SetYear(context.Background(), st.ID, "2024")
	require.NoError(t, err)

	d, err := h.svc.Dashboard(st.ID)
	require.NoError(t, err)
	require.Len(t, d.Series, 1)
	assert.Equal(t, 280.0, d.Statistics.TotalPL)
	assert.Equal(t, []int{2023, 2024}, d.Years)
}

func TestWeeklyAndPeriod(t *testing.T) {
	h := newHarness(t)
	st := ingest(t, h, "A")

	w, err := h.svc.Weekly(st.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{980, 560, 740, 1020}, w.CumulativeByWeek)

	bw, err := h.svc.BestWorst(st.ID, 2)
	require.NoError(t, err)
	require.True(t, bw.Found)
	assert.Equal(t, 4, bw.Weeks)
	assert.Equal(t, 560.0, bw.Window.Best)
	assert.Equal(t, 1, bw.Window.BestStart)
	assert.Equal(t, -240.0, bw.Window.Worst)
	assert.Equal(t, 2, bw.Window.WorstStart)

	bw, err = h.svc.BestWorst(st.ID, 5)
	require.NoError(t, err)
	assert.False(t, bw.Found)
	assert.Nil(t, bw.Window)

	a, err := h.svc.PeriodAnalysis(st.ID, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, -240.0, a.CurrentPL)
	assert.Equal(t, 2, a.WindowSize)
}

func TestCompareAndHeatmap(t *testing.T) {
	h := newHarness(t)
	a := ingest(t, h, "A")
	b := ingest(t, h, "B")

	rows, err := h.svc.Compare([]string{b.ID, a.ID}, &metrics.WeekRange{Start: 1, End: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID, rows[0].StrategyID)
	assert.Equal(t, 560.0, rows[0].Metrics.NetPL)
	assert.Equal(t, 2, rows[0].Metrics.Trades)

	all, err := h.svc.Compare(nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = h.svc.Compare([]string{"missing"}, nil)
	assert.ErrorIs(t, err, strategy.ErrNotFound)

	hm, err := h.svc.Heatmap(a.ID)
	require.NoError(t, err)
	require.Len(t, hm.Years, 2)
	assert.Equal(t, 740.0, hm.Years[0].Months[0])
	assert.True(t, hm.Years[1].Present[1])
}

func TestForecast(t *testing.T) {
	h := newHarness(t)
	st := ingest(t, h, "A")

	f, err := h.svc.Forecast(st.ID, forecast.ViewFourYr)
	require.NoError(t, err)
	assert.Equal(t, forecast.ViewFourYr, f.View)
	assert.Len(t, f.Projections, 3)
	assert.Equal(t, 4, f.TradeCount)
	assert.True(t, f.LowConfidence)
}

func TestInstrumentsAndOverlay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := ingest(t, h, "A")

	rows := [][]domain.Cell{
		domain.TextRow("Date", "Close"),
		domain.TextRow("02-01-2023", "100"),
		domain.TextRow("16-01-2023", "110"),
	}
	im, err := h.svc.AddInstrument(ctx, "NIFTY", rows)
	require.NoError(t, err)
	assert.Len(t, h.svc.Instruments(), 1)

	o, err := h.svc.Overlay(st.ID)
	require.NoError(t, err)
	assert.Nil(t, o.Instrument)
	assert.Empty(t, o.Points)

	_, err = h.svc.LinkInstrument(ctx, st.ID, im.Instrument.ID)
	require.NoError(t, err)

	o, err = h.svc.Overlay(st.ID)
	require.NoError(t, err)
	require.NotNil(t, o.Instrument)
	require.Len(t, o.Points, 4)
	require.NotNil(t, o.Points[0].Value)
	assert.Equal(t, 100.0, *o.Points[0].Value)

	_, err = h.svc.DeleteInstrument(ctx, im.Instrument.ID)
	require.NoError(t, err)
	got, err := h.svc.Get(st.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SelectedInstrument)

	state, err := h.repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Instruments)
}

func TestExportImport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ingest(t, h, "A")
	ingest(t, h, "B")

	data, name, err := h.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "trading-strategies-2024-06-01.json", name)

	res, err := h.svc.Import(ctx, data, exchange.PolicyMerge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Len(t, h.svc.List(), 4)

	res, err = h.svc.Import(ctx, data, exchange.PolicyReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 0, res.Dropped)
	list := h.svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, list[0].ID, h.svc.CurrentID())
	assert.Contains(t, h.events.types(), EventStateImported)

	_, err = h.svc.Import(ctx, []byte(`{"version":"1.3"}`), exchange.PolicyReplace)
	assert.ErrorIs(t, err, exchange.ErrInvalidFormat)
}

func TestExport_Empty(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.svc.Export(context.Background())
	assert.ErrorIs(t, err, exchange.ErrNothingToExport)
}
