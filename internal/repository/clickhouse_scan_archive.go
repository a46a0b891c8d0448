package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PerpScout/internal/domain/models"
	domrepo "PerpScout/internal/domain/repository"
	pkgch "PerpScout/pkg/clickhouse"
	applogger "PerpScout/pkg/logger"
)

// CHScanArchive stores screened candidates and recommendations per cycle.
type CHScanArchive struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHScanArchive(client *pkgch.Client, database string, l *applogger.Logger) *CHScanArchive {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHScanArchive{client: client, db: client.DB(), database: database, l: l}
}

func (a *CHScanArchive) candidatesTable() string {
	return a.database + ".scan_candidates"
}

func (a *CHScanArchive) recommendationsTable() string {
	return a.database + ".scan_recommendations"
}

// Init creates the database and tables when missing.
func (a *CHScanArchive) Init(ctx context.Context) error {
	return a.client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", a.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            run_id String,
            ts DateTime64(3),
            rank UInt8,
            trend LowCardinality(String),
            symbol LowCardinality(String),
            last_price Float64,
            price_change_percent Float64,
            quote_volume Float64,
            open_interest Float64,
            volatility Float64,
            funding_rate Float64
        ) ENGINE = MergeTree ORDER BY (symbol, ts)`, a.candidatesTable()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            run_id String,
            ts DateTime64(3),
            id String,
            pair LowCardinality(String),
            direction LowCardinality(String),
            entry_price Float64,
            take_profit Float64,
            stop_loss Float64,
            estimated_profit_percent Float64,
            justification String
        ) ENGINE = MergeTree ORDER BY (pair, ts)`, a.recommendationsTable()),
	})
}

// StoreScan writes one row per candidate and per recommendation using multi-row VALUES.
func (a *CHScanArchive) StoreScan(ctx context.Context, r *models.ScanResult) error {
	start := time.Now()
	if n := len(r.Snapshot.Candidates); n > 0 {
		values := make([]string, 0, n)
		args := make([]interface{}, 0, n*11)
		for i, c := range r.Snapshot.Candidates {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.RunID, r.FinishedAt, uint8(i+1), string(r.Snapshot.Trend), c.Symbol,
				c.LastPrice, c.PriceChangePercent, c.QuoteVolume, c.OpenInterest, c.Volatility, c.FundingRate,
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (run_id, ts, rank, trend, symbol, last_price, price_change_percent, quote_volume, open_interest, volatility, funding_rate) VALUES %s",
			a.candidatesTable(), strings.Join(values, ","))
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive candidates: %w", err)
		}
	}

	if n := len(r.Recommendations); n > 0 {
		values := make([]string, 0, n)
		args := make([]interface{}, 0, n*10)
		for _, rec := range r.Recommendations {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.RunID, r.FinishedAt, rec.ID, rec.Pair, string(rec.Recommendation),
				rec.EntryPrice, rec.TakeProfit, rec.StopLoss, rec.EstimatedProfitPercent, rec.Justification,
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (run_id, ts, id, pair, direction, entry_price, take_profit, stop_loss, estimated_profit_percent, justification) VALUES %s",
			a.recommendationsTable(), strings.Join(values, ","))
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive recommendations: %w", err)
		}
	}

	a.l.Debug("clickhouse scan archived",
		applogger.String("run_id", r.RunID),
		applogger.Int("candidates", len(r.Snapshot.Candidates)),
		applogger.Int("recommendations", len(r.Recommendations)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// RecentCandidates lists the latest appearances of symbol in screening results.
func (a *CHScanArchive) RecentCandidates(ctx context.Context, symbol string, limit int) ([]models.ArchivedCandidate, error) {
	q := fmt.Sprintf(`
        SELECT run_id, ts, rank, trend, symbol, last_price, price_change_percent, quote_volume, open_interest, volatility, funding_rate
        FROM %s
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?`, a.candidatesTable())
	rows, err := a.db.QueryContext(ctx, q, strings.ToUpper(symbol), limit)
	if err != nil {
		a.l.Error("clickhouse recent_candidates query error", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, fmt.Errorf("recent candidates: %w", err)
	}
	defer rows.Close()

	out := make([]models.ArchivedCandidate, 0, limit)
	for rows.Next() {
		var (
			c     models.ArchivedCandidate
			rank  uint8
			trend string
		)
		if err := rows.Scan(&c.RunID, &c.At, &rank, &trend, &c.Symbol,
			&c.LastPrice, &c.PriceChangePercent, &c.QuoteVolume, &c.OpenInterest, &c.Volatility, &c.FundingRate); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		c.Rank = int(rank)
		c.Trend = models.Trend(trend)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (a *CHScanArchive) Close() error {
	return a.client.Close()
}

var _ domrepo.ScanArchive = (*CHScanArchive)(nil)
