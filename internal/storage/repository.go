package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const observationColumns = `
        logged_at,
        observed_at,
        sport_key,
        event_id,
        market_key,
        selection,
        line,
        bookmaker,
        price,
        fair_price,
        fair_source,
        edge_pct,
        implied_prob,
        kelly_fraction,
        suggested_stake,
        classification`

// LedgerStore defines operations on the append-only observation ledger.
type LedgerStore interface {
	AppendObservation(ctx context.Context, obs Observation) error
	AppendExotic(ctx context.Context, obs Observation) error
	ListRecentObservations(ctx context.Context, sink Sink, limit int) ([]Observation, error)
	ListObservationsBetween(ctx context.Context, sink Sink, from, to time.Time) ([]Observation, error)
	CountObservations(ctx context.Context, sink Sink) (int64, error)
}

func insertSQL(sink Sink) string {
	return fmt.Sprintf(`INSERT INTO %s (%s
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
    );`, sink, observationColumns)
}

func listRecentSQL(sink Sink) string {
	return fmt.Sprintf(`SELECT id, %s
    FROM %s
    ORDER BY logged_at DESC, id DESC
    LIMIT $1;`, observationColumns, sink)
}

func listBetweenSQL(sink Sink) string {
	return fmt.Sprintf(`SELECT id, %s
    FROM %s
    WHERE logged_at >= $1
      AND logged_at < $2
    ORDER BY logged_at, id;`, observationColumns, sink)
}

func countSQL(sink Sink) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, sink)
}

// AppendObservation inserts a row into the primary ledger. There is no
// uniqueness constraint: the ledger is a time series, and re-running a
// cycle intentionally produces new rows.
func (s *Store) AppendObservation(ctx context.Context, obs Observation) error {
	return s.append(ctx, SinkObservations, obs)
}

// AppendExotic inserts a row into the exotic/one-sided sink.
func (s *Store) AppendExotic(ctx context.Context, obs Observation) error {
	return s.append(ctx, SinkExotic, obs)
}

func (s *Store) append(ctx context.Context, sink Sink, obs Observation) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	loggedAt := obs.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}

	var line interface{}
	if obs.Line != nil {
		line = *obs.Line
	}

	_, execErr := pool.Exec(ctx, insertSQL(sink),
		loggedAt,
		obs.ObservedAt,
		obs.SportKey,
		obs.EventID,
		obs.MarketKey,
		obs.Selection,
		line,
		obs.Bookmaker,
		obs.Price,
		obs.FairPrice.String(),
		obs.FairSource,
		obs.EdgePct.String(),
		obs.ImpliedProb.String(),
		obs.KellyFraction.String(),
		obs.SuggestedStake.String(),
		obs.Classification,
	)
	if execErr != nil {
		return fmt.Errorf("append %s row: %w", sink, execErr)
	}
	return nil
}

// ListRecentObservations lists the most recent rows of a sink ordered by
// descending log time.
func (s *Store) ListRecentObservations(ctx context.Context, sink Sink, limit int) ([]Observation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSQL(sink), limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent %s: %w", sink, queryErr)
	}
	defer rows.Close()

	return collectObservations(rows, limit)
}

// ListObservationsBetween lists a sink's rows within a log-time window.
func (s *Store) ListObservationsBetween(ctx context.Context, sink Sink, from, to time.Time) ([]Observation, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listBetweenSQL(sink), from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list %s between: %w", sink, queryErr)
	}
	defer rows.Close()

	return collectObservations(rows, 0)
}

// CountObservations counts rows in a sink.
func (s *Store) CountObservations(ctx context.Context, sink Sink) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSQL(sink)).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count %s: %w", sink, scanErr)
	}
	return count, nil
}

func collectObservations(rows pgx.Rows, sizeHint int) ([]Observation, error) {
	observations := make([]Observation, 0, sizeHint)
	for rows.Next() {
		obs, scanErr := scanObservation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		observations = append(observations, obs)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return observations, nil
}

func scanObservation(rows pgx.Rows) (Observation, error) {
	var (
		obs       Observation
		line      sql.NullFloat64
		fairPrice string
		edgePct   string
		implied   string
		kelly     string
		stake     string
	)

	if err := rows.Scan(
		&obs.ID,
		&obs.LoggedAt,
		&obs.ObservedAt,
		&obs.SportKey,
		&obs.EventID,
		&obs.MarketKey,
		&obs.Selection,
		&line,
		&obs.Bookmaker,
		&obs.Price,
		&fairPrice,
		&obs.FairSource,
		&edgePct,
		&implied,
		&kelly,
		&stake,
		&obs.Classification,
	); err != nil {
		return Observation{}, err
	}

	if line.Valid {
		value := line.Float64
		obs.Line = &value
	}

	fields := []struct {
		dst   *decimal.Decimal
		src   string
		label string
	}{
		{&obs.FairPrice, fairPrice, "fair price"},
		{&obs.EdgePct, edgePct, "edge pct"},
		{&obs.ImpliedProb, implied, "implied prob"},
		{&obs.KellyFraction, kelly, "kelly fraction"},
		{&obs.SuggestedStake, stake, "suggested stake"},
	}
	for _, field := range fields {
		value, convErr := decimal.NewFromString(field.src)
		if convErr != nil {
			return Observation{}, fmt.Errorf("parse %s: %w", field.label, convErr)
		}
		*field.dst = value
	}

	return obs, nil
}
