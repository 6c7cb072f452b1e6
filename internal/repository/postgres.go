package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// readingColumns is the single named column list shared by the insert
// and select paths. Keeping one list avoids the positional-binding drift
// that bites when insert and select each carry their own copy.
const readingColumns = `temperature, humidity,
	mq135_raw, mq135_voltage, co2_ppm, nh4_ppm, alcohol_ppm, co_ppm, acetone_ppm,
	soil_raw, soil_percent,
	motion_detected, relay_on, led_on`

const queryTimeout = 5 * time.Second

// PostgresRepository stores the ledger in a sensor_readings table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects a pgx pool to the given DSN and pings it.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// Pool exposes the underlying connection pool so other stores can share
// the same connections.
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.pool.Ping(ctx)
}

// Insert appends one reading. captured_at is assigned by NOW() inside
// the insert so the row timestamp and the bigserial id advance together.
func (r *PostgresRepository) Insert(ctx context.Context, reading *models.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO sensor_readings (` + readingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, captured_at
	`

	err := r.pool.QueryRow(ctx, query,
		reading.Temperature, reading.Humidity,
		reading.MQ135Raw, reading.MQ135Voltage, reading.CO2PPM,
		reading.NH4PPM, reading.AlcoholPPM, reading.COPPM, reading.AcetonePPM,
		reading.SoilRaw, reading.SoilPercent,
		reading.MotionDetected, reading.RelayOn, reading.LedOn,
	).Scan(&reading.ID, &reading.CapturedAt)

	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

// Latest returns the most recent reading, or ErrNoReadings.
func (r *PostgresRepository) Latest(ctx context.Context) (*models.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, captured_at, ` + readingColumns + `
		FROM sensor_readings
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	reading, err := scanReading(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReadings
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reading: %w", err)
	}

	return reading, nil
}

// History returns up to limit of the most recent readings captured at or
// after since, ascending by capture time. The query runs descending so
// LIMIT keeps the newest rows, then the slice is reversed once here;
// ascending is the one canonical order of the contract.
func (r *PostgresRepository) History(ctx context.Context, since time.Time, limit int) ([]*models.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, captured_at, ` + readingColumns + `
		FROM sensor_readings
		WHERE captured_at >= $1
		ORDER BY captured_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}

	return readings, nil
}

func scanReading(row pgx.Row) (*models.Reading, error) {
	var reading models.Reading
	err := row.Scan(
		&reading.ID, &reading.CapturedAt,
		&reading.Temperature, &reading.Humidity,
		&reading.MQ135Raw, &reading.MQ135Voltage, &reading.CO2PPM,
		&reading.NH4PPM, &reading.AlcoholPPM, &reading.COPPM, &reading.AcetonePPM,
		&reading.SoilRaw, &reading.SoilPercent,
		&reading.MotionDetected, &reading.RelayOn, &reading.LedOn,
	)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}
