package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"PerpScout/internal/domain/models"
	pkgch "PerpScout/pkg/clickhouse"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchive(t *testing.T) (*CHScanArchive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCHScanArchive(pkgch.NewFromDB(db), "perpscout", nil), mock
}

func TestArchiveInitCreatesTables(t *testing.T) {
	a, mock := newArchive(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE IF NOT EXISTS perpscout")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS perpscout.scan_candidates")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS perpscout.scan_recommendations")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, a.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveStoreScan(t *testing.T) {
	a, mock := newArchive(t)
	at := time.Unix(1700000000, 0).UTC()
	res := &models.ScanResult{
		RunID:      "run-1",
		FinishedAt: at,
		Snapshot: models.MarketSnapshot{
			Trend: models.TrendBullish,
			Candidates: []models.Candidate{
				{Symbol: "SOLUSDT", LastPrice: 100},
				{Symbol: "DOGEUSDT", LastPrice: 0.12},
			},
		},
		Recommendations: []models.TradeRecommendation{
			{ID: "SOLUSDT-run-1", Pair: "SOLUSDT", Recommendation: models.DirectionLong, EntryPrice: 100, TakeProfit: 110, StopLoss: 95, EstimatedProfitPercent: 9.9},
		},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO perpscout.scan_candidates")).
		WithArgs(
			"run-1", at, uint8(1), "Bullish", "SOLUSDT", 100.0, 0.0, 0.0, 0.0, 0.0, 0.0,
			"run-1", at, uint8(2), "Bullish", "DOGEUSDT", 0.12, 0.0, 0.0, 0.0, 0.0, 0.0,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO perpscout.scan_recommendations")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, a.StoreScan(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveStoreScanSkipsEmptyInserts(t *testing.T) {
	a, mock := newArchive(t)
	require.NoError(t, a.StoreScan(context.Background(), &models.ScanResult{RunID: "empty"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRecentCandidates(t *testing.T) {
	a, mock := newArchive(t)
	at := time.Unix(1700000000, 0).UTC()
	rows := sqlmock.NewRows([]string{"run_id", "ts", "rank", "trend", "symbol", "last_price", "price_change_percent", "quote_volume", "open_interest", "volatility", "funding_rate"}).
		AddRow("run-2", at, int64(1), "Bearish", "SOLUSDT", 101.5, -4.0, 5e8, 3e6, 4.0, 0.0001)
	mock.ExpectQuery(regexp.QuoteMeta("FROM perpscout.scan_candidates")).
		WithArgs("SOLUSDT", 10).
		WillReturnRows(rows)

	got, err := a.RecentCandidates(context.Background(), "solusdt", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, models.TrendBearish, got[0].Trend)
	assert.Equal(t, 101.5, got[0].LastPrice)
	assert.True(t, at.Equal(got[0].At))
	assert.NoError(t, mock.ExpectationsWereMet())
}
