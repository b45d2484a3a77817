package pgsql

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/ecb_rates_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/ecb_rates_pipeline/internal/models"
	"github.com/SscSPs/ecb_rates_pipeline/internal/utils/mapping"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ConvertedAmountColumn is the derived column this pipeline fills.
const ConvertedAmountColumn = "converted_amount_eur"

// PgxOrderRepository reads and updates the externally owned orders table.
type PgxOrderRepository struct {
	BaseRepository
	table     string
	id        string
	amount    string
	currency  string
	discount  string // empty when the table has no discount column
	converted string

	rawTable string
	rawID    string

	idTypeMu sync.Mutex
	idType   string // SQL type of the id column, resolved from the catalog
}

// NewPgxOrderRepository creates a repository mapped onto the configured orders table.
func NewPgxOrderRepository(db *pgxpool.Pool, cfg config.OrdersConfig) *PgxOrderRepository {
	repo := &PgxOrderRepository{
		BaseRepository: BaseRepository{Pool: db},
		table:          quoteIdent(cfg.Table),
		id:             quoteIdent(cfg.IDColumn),
		amount:         quoteIdent(cfg.AmountColumn),
		currency:       quoteIdent(cfg.CurrencyColumn),
		converted:      quoteIdent(ConvertedAmountColumn),
		rawTable:       cfg.Table,
		rawID:          cfg.IDColumn,
	}
	if strings.TrimSpace(cfg.DiscountColumn) != "" {
		repo.discount = quoteIdent(cfg.DiscountColumn)
	}
	return repo
}

// Ensure implementation matches interface
var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

// FindOrdersForConversion selects orders with a non-null amount. Unless reprocessAll
// is set, only orders whose converted amount is still NULL are returned.
func (r *PgxOrderRepository) FindOrdersForConversion(ctx context.Context, reprocessAll bool) ([]domain.Order, error) {
	discountExpr := "0"
	if r.discount != "" {
		discountExpr = fmt.Sprintf("COALESCE(%s, 0)", r.discount)
	}

	query := fmt.Sprintf(`
		SELECT %[2]s::text, %[3]s, %[4]s, COALESCE(%[5]s, ''), %[6]s
		FROM %[1]s
		WHERE %[3]s IS NOT NULL`,
		r.table, r.id, r.amount, discountExpr, r.currency, r.converted)
	if !reprocessAll {
		query += fmt.Sprintf(" AND %s IS NULL", r.converted)
	}
	query += fmt.Sprintf(" ORDER BY %s", r.id)

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting orders for conversion: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var row models.Order
		if err := rows.Scan(&row.OrderID, &row.Amount, &row.Discount, &row.CurrencyCode, &row.ConvertedAmountEUR); err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, mapping.ToDomainOrder(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// CountOrdersWithoutAmount counts the orders FindOrdersForConversion leaves out
// because their amount is NULL.
func (r *PgxOrderRepository) CountOrdersWithoutAmount(ctx context.Context, reprocessAll bool) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s IS NULL`, r.table, r.amount)
	if !reprocessAll {
		query += fmt.Sprintf(" AND %s IS NULL", r.converted)
	}

	var n int
	if err := r.Pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting orders without amount: %w", err)
	}
	return n, nil
}

// idColumnType returns the declared type of the id column, e.g. "bigint" or "uuid".
// Updates cast the text order ID to it so the column itself stays uncast.
func (r *PgxOrderRepository) idColumnType(ctx context.Context) (string, error) {
	r.idTypeMu.Lock()
	defer r.idTypeMu.Unlock()
	if r.idType != "" {
		return r.idType, nil
	}

	const query = `
		SELECT format_type(a.atttypid, a.atttypmod)
		FROM pg_attribute a
		WHERE a.attrelid = $1::regclass AND a.attname = $2 AND NOT a.attisdropped`

	var idType string
	if err := r.Pool.QueryRow(ctx, query, r.table, r.rawID).Scan(&idType); err != nil {
		return "", apperrors.NewPersistenceError(fmt.Sprintf("resolve type of %s.%s", r.rawTable, r.rawID), "", err)
	}
	r.idType = idType
	return idType, nil
}

func (r *PgxOrderRepository) updateQuery(idType string, onlyIfNull bool) string {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2::text::%s`, r.table, r.converted, r.id, idType)
	if onlyIfNull {
		query += fmt.Sprintf(" AND %s IS NULL", r.converted)
	}
	return query
}

// UpdateConvertedAmount writes the EUR amount of a single order.
func (r *PgxOrderRepository) UpdateConvertedAmount(ctx context.Context, orderID string, amountEUR decimal.Decimal, onlyIfNull bool) (bool, error) {
	idType, err := r.idColumnType(ctx)
	if err != nil {
		return false, err
	}

	tag, err := r.Pool.Exec(ctx, r.updateQuery(idType, onlyIfNull), amountEUR, orderID)
	if err != nil {
		return false, apperrors.NewPersistenceError("update order "+orderID, "", err)
	}
	return tag.RowsAffected() > 0, nil
}

// EnsureConvertedColumn adds converted_amount_eur to the orders table if it is missing.
func (r *PgxOrderRepository) EnsureConvertedColumn(ctx context.Context) error {
	query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s NUMERIC(12,2)`, r.table, r.converted)
	if _, err := r.Pool.Exec(ctx, query); err != nil {
		return apperrors.NewPersistenceError("add converted amount column", "", err)
	}
	return nil
}
