package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/ecb_rates_pipeline/internal/models"
	"github.com/SscSPs/ecb_rates_pipeline/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const opUpsertRate = "upsert exchange rate"

// PgxExchangeRateRepository implements the ports.ExchangeRateRepositoryFacade interface using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
	table string
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository over the given table.
func NewPgxExchangeRateRepository(db *pgxpool.Pool, table string) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
		table:          quoteIdent(table),
	}
}

// Ensure implementation matches interface
var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// EnsureSchema creates the rate table if it does not exist.
func (r *PgxExchangeRateRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			currency_code VARCHAR(3)    NOT NULL PRIMARY KEY,
			rate          DECIMAL(10,4) NOT NULL,
			updated_at    TIMESTAMP     NOT NULL
		)`, r.table)

	if _, err := r.Pool.Exec(ctx, query); err != nil {
		return apperrors.NewPersistenceError("create rate table", "", err)
	}
	return nil
}

func (r *PgxExchangeRateRepository) upsertQuery() string {
	return fmt.Sprintf(`
		INSERT INTO %s (currency_code, rate, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency_code)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`, r.table)
}

// UpsertExchangeRates writes one insert-or-update statement per currency.
// Every value is checked against the column limits before any statement is sent.
func (r *PgxExchangeRateRepository) UpsertExchangeRates(ctx context.Context, rates []domain.ExchangeRate, atomic bool) error {
	rows := make([]models.ExchangeRate, 0, len(rates))
	for _, rate := range rates {
		row := mapping.ToModelExchangeRate(rate)
		if err := checkRateRow(row); err != nil {
			return apperrors.NewPersistenceError(opUpsertRate, row.CurrencyCode, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	if atomic {
		return r.upsertBatch(ctx, rows)
	}
	return r.upsertEach(ctx, rows)
}

// upsertEach stops at the first failing row; rows before it stay written.
func (r *PgxExchangeRateRepository) upsertEach(ctx context.Context, rows []models.ExchangeRate) error {
	query := r.upsertQuery()
	for _, row := range rows {
		if _, err := r.Pool.Exec(ctx, query, row.CurrencyCode, row.Rate, row.UpdatedAt); err != nil {
			return apperrors.NewPersistenceError(opUpsertRate, row.CurrencyCode, err)
		}
	}
	return nil
}

// upsertBatch sends all rows as one pipelined batch inside a transaction.
func (r *PgxExchangeRateRepository) upsertBatch(ctx context.Context, rows []models.ExchangeRate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	query := r.upsertQuery()
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.CurrencyCode, row.Rate, row.UpdatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for _, row := range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			_ = r.Rollback(ctx, tx)
			return apperrors.NewPersistenceError(opUpsertRate, row.CurrencyCode, err)
		}
	}
	if err := br.Close(); err != nil {
		_ = r.Rollback(ctx, tx)
		return apperrors.NewPersistenceError(opUpsertRate, "", err)
	}

	return r.Commit(ctx, tx)
}

func checkRateRow(row models.ExchangeRate) error {
	if len(row.CurrencyCode) != 3 {
		return apperrors.NewValidationError("currency code '" + row.CurrencyCode + "' does not fit VARCHAR(3)")
	}
	if !row.Rate.IsPositive() {
		return apperrors.NewValidationError("rate " + row.Rate.String() + " must be positive")
	}
	if !domain.FitsRateColumn(row.Rate) {
		return apperrors.NewValidationError("rate " + row.Rate.String() + " exceeds DECIMAL(10,4)")
	}
	if row.UpdatedAt.IsZero() {
		return apperrors.NewValidationError("updated_at is not set")
	}
	return nil
}

// FindExchangeRate retrieves the stored rate of a currency.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error) {
	query := fmt.Sprintf(`
		SELECT currency_code, rate, updated_at
		FROM %s
		WHERE currency_code = $1`, r.table)

	var row models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, domain.NormalizeCurrencyCode(currencyCode)).Scan(
		&row.CurrencyCode, &row.Rate, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: exchange rate for %s", apperrors.ErrNotFound, currencyCode)
		}
		return nil, fmt.Errorf("error finding exchange rate: %w", err)
	}

	rate := mapping.ToDomainExchangeRate(row)
	return &rate, nil
}

// ListExchangeRates retrieves all stored rates ordered by currency code.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := fmt.Sprintf(`
		SELECT currency_code, rate, updated_at
		FROM %s
		ORDER BY currency_code`, r.table)

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing exchange rates: %w", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		var row models.ExchangeRate
		if err := rows.Scan(&row.CurrencyCode, &row.Rate, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning exchange rate: %w", err)
		}
		modelRates = append(modelRates, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}

	return mapping.ToDomainExchangeRates(modelRates), nil
}
