package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/storage"
	"pnl-dashboard/internal/storage/memory"
	"pnl-dashboard/internal/strategy"
)

func sampleState() strategy.State {
	year := 2023
	sync := time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC)
	return strategy.State{
		Strategies: []domain.Strategy{{
			ID:            "strategy_a",
			Name:          "Momentum",
			FileName:      "trades.xlsx",
			LastUpdated:   time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
			Capital:       500000,
			ColumnMapping: domain.ColumnMapping{Date: domain.Column(0), PL: domain.Column(1), Charges: domain.Column(2)},
			AllTrades: []domain.TradeRecord{
				{Date: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), DateText: "02-01-2023", GrossPL: 1000, Charges: 20, NetPL: 980, EntryType: "BUY"},
				{Date: time.Date(2023, time.January, 9, 0, 0, 0, 0, time.UTC), DateText: "09-01-2023", GrossPL: -300, Charges: 20, NetPL: -320},
			},
			SelectedYear:  "2023",
			SelectedMonth: &domain.MonthFilter{Year: &year, Month: 0},
			Source: domain.Source{
				Type:   domain.SourceTypeSheets,
				Config: domain.SheetsConfig{SpreadsheetID: "sheet-1", SheetName: "Trades", Range: "A1:Z", FullRange: "Trades!A1:Z", LastSync: &sync},
			},
		}},
		CurrentID: "strategy_a",
		Instruments: []domain.Instrument{{
			ID:        "instrument_n",
			Name:      "NIFTY",
			Data:      []domain.PricePoint{{Date: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), Close: 18000}},
			CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			repo := NewRepository(memory.NewKVStore(), codec, Options{})

			want := sampleState()
			require.NoError(t, repo.Save(ctx, want))

			got, err := repo.Load(ctx)
			require.NoError(t, err)

			assert.Equal(t, want.CurrentID, got.CurrentID)
			require.Len(t, got.Strategies, 1)
			s := got.Strategies[0]
			assert.Equal(t, "Momentum", s.Name)
			assert.True(t, want.Strategies[0].LastUpdated.Equal(s.LastUpdated))
			require.Len(t, s.AllTrades, 2)
			assert.True(t, want.Strategies[0].AllTrades[0].Date.Equal(s.AllTrades[0].Date))
			assert.Equal(t, 980.0, s.AllTrades[0].NetPL)
			assert.Equal(t, "BUY", s.AllTrades[0].EntryType)
			assert.Equal(t, 2, *s.ColumnMapping.Charges)
			assert.Nil(t, s.ColumnMapping.Lots)
			require.NotNil(t, s.SelectedMonth)
			assert.Equal(t, 2023, *s.SelectedMonth.Year)
			assert.Equal(t, domain.SourceTypeSheets, s.Source.Type)
			require.NotNil(t, s.Source.Config.LastSync)

			require.Len(t, got.Instruments, 1)
			assert.Equal(t, 18000.0, got.Instruments[0].Data[0].Close)
		})
	}
}

func TestRepository_JSONUsesISODates(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	repo := NewRepository(kv, nil, Options{})

	require.NoError(t, repo.Save(ctx, sampleState()))

	raw, err := kv.Get(ctx, KeyStrategies)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date":"2023-01-02T00:00:00Z"`)
	assert.Contains(t, string(raw), `"allTradesData"`)
	assert.NotContains(t, string(raw), "cumulativePL")
}

func TestRepository_EmptyStore(t *testing.T) {
	repo := NewRepository(memory.NewKVStore(), nil, Options{})

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Strategies)
	assert.Empty(t, state.CurrentID)
	assert.Empty(t, state.Instruments)
}

func TestRepository_CorruptDocumentIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	core, logs := observer.New(zap.WarnLevel)
	repo := NewRepository(kv, nil, Options{Logger: zap.New(core)})

	require.NoError(t, repo.Save(ctx, sampleState()))
	require.NoError(t, kv.Put(ctx, KeyStrategies, []byte(`{not json`)))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Strategies)
	assert.Len(t, state.Instruments, 1)
	assert.Equal(t, 1, logs.FilterMessage("discarding undecodable document").Len())
}

func TestRepository_ClearsCurrentID(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	repo := NewRepository(kv, nil, Options{})

	require.NoError(t, repo.SaveStrategies(ctx, nil, "strategy_a"))
	require.NoError(t, repo.SaveStrategies(ctx, nil, ""))

	_, err := kv.Get(ctx, KeyCurrentID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

type failingKV struct{ storage.KVStore }

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestRepository_StoreErrorsPropagate(t *testing.T) {
	repo := NewRepository(failingKV{memory.NewKVStore()}, nil, Options{})

	_, err := repo.Load(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewCodec(t *testing.T) {
	c, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = NewCodec("msgpack")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())

	_, err = NewCodec("gob")
	assert.Error(t, err)
}
