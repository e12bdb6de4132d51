package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/verdora/ordercore/internal/adapter/storage"
	"github.com/verdora/ordercore/internal/core/domain"
)

const orderColumns = "id, number, user_id, subtotal, sgst, cgst, gst, grand_total, " +
	"ship_name, ship_address, ship_city, ship_state, ship_postal_code, ship_country, ship_phone, " +
	"payment_method, payment_status, gateway_order_id, gateway_payment_id, gateway_signature, " +
	"status, notes, version, created_at, updated_at"

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

// colorRecord is the jsonb shape of one color snapshot.
type colorRecord struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

func encodeColors(colors []domain.ColorSnapshot) ([]byte, error) {
	records := make([]colorRecord, 0, len(colors))
	for _, c := range colors {
		records = append(records, colorRecord(c))
	}
	return json.Marshal(records)
}

func decodeColors(raw []byte) ([]domain.ColorSnapshot, error) {
	var records []colorRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	colors := make([]domain.ColorSnapshot, 0, len(records))
	for _, r := range records {
		colors = append(colors, domain.ColorSnapshot(r))
	}
	return colors, nil
}

func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order,
	deltas []domain.StockDelta) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		orderSt := or.db.QueryBuilder.Insert("orders").
			Columns("number", "user_id", "subtotal", "sgst", "cgst", "gst", "grand_total",
				"ship_name", "ship_address", "ship_city", "ship_state", "ship_postal_code",
				"ship_country", "ship_phone",
				"payment_method", "payment_status",
				"gateway_order_id", "gateway_payment_id", "gateway_signature",
				"status", "notes", "created_at", "updated_at").
			Values(order.Number, order.UserID, order.Subtotal, order.SGST, order.CGST,
				order.GST, order.GrandTotal,
				order.Shipping.Name, order.Shipping.Address, order.Shipping.City,
				order.Shipping.State, order.Shipping.PostalCode,
				order.Shipping.Country, order.Shipping.Phone,
				order.PaymentMethod, order.PaymentStatus,
				order.GatewayOrderID, order.GatewayPaymentID, order.GatewaySignature,
				order.Status, order.Notes, order.CreatedAt, order.UpdatedAt).
			Suffix("returning id, version")

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(&order.ID, &order.Version)
		if err != nil {
			return err
		}

		for i := range order.Lines {
			line := &order.Lines[i]
			colors, err := encodeColors(line.Colors)
			if err != nil {
				return err
			}

			itemSt := or.db.QueryBuilder.Insert("order_items").
				Columns("order_id", "product_id", "product_name", "image",
					"grade_id", "grade_name", "grade_price", "colors",
					"quantity", "unit_price", "line_total").
				Values(order.ID, line.ProductID, line.ProductName, line.Image,
					line.Grade.ID, line.Grade.Name, line.Grade.Price, colors,
					line.Quantity, line.UnitPrice, line.LineTotal)

			sql, args, err := itemSt.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}

		return or.applyStockDeltas(ctx, tx, deltas)
	})

	if err != nil {
		if pgErr, ok := pgError(err); ok {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, domain.ErrConflictingData
			case pgerrcode.CheckViolation:
				return nil, domain.ErrInsufficientStock
			}
		}
		return nil, err
	}

	return order, nil
}

// applyStockDeltas adjusts each product's counter with a single in-place
// update. The counter is never read back into the application first.
func (or *Repository) applyStockDeltas(ctx context.Context, tx pgx.Tx, deltas []domain.StockDelta) error {
	for _, delta := range deltas {
		st := or.db.QueryBuilder.Update("products").
			Set("stock", sq.Expr("stock + ?", delta.Delta)).
			Where(sq.Eq{"id": delta.ProductID})

		sql, args, err := st.ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("product %d: %w", delta.ProductID, domain.ErrDataNotFound)
		}
	}
	return nil
}

func (or *Repository) ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns).
		From("orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(or.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	if err := or.loadLines(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (or *Repository) ListOrdersByUser(ctx context.Context, userID uint64) ([]*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns).
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc")

	return or.queryOrders(ctx, statement)
}

func (or *Repository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, uint64, error) {
	where := sq.Eq{}
	if filter.Status != nil {
		where["status"] = *filter.Status
	}

	countSt := or.db.QueryBuilder.Select("count(*)").From("orders").Where(where)
	sql, args, err := countSt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := or.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	statement := or.db.QueryBuilder.
		Select(orderColumns).
		From("orders").
		Where(where).
		OrderBy("created_at desc").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit)

	orders, err := or.queryOrders(ctx, statement)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateOrderStatus persists a transition outcome. The stock deltas and the
// status update commit or roll back together, and the update only lands when
// the stored version still matches the one the order was read with.
func (or *Repository) UpdateOrderStatus(ctx context.Context, order *domain.Order,
	deltas []domain.StockDelta) (*domain.Order, error) {
	now := time.Now()

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.applyStockDeltas(ctx, tx, deltas); err != nil {
			return err
		}

		st := or.db.QueryBuilder.Update("orders").
			Set("status", order.Status).
			Set("payment_status", order.PaymentStatus).
			Set("version", sq.Expr("version + 1")).
			Set("updated_at", now).
			Where(sq.Eq{"id": order.ID, "version": order.Version})

		sql, args, err := st.ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}

		return nil
	})

	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == pgerrcode.CheckViolation {
			return nil, domain.ErrInsufficientStock
		}
		return nil, err
	}

	order.Version++
	order.UpdatedAt = now
	return order, nil
}

func (or *Repository) ClearCart(ctx context.Context, userID uint64) error {
	statement := or.db.QueryBuilder.
		Delete("cart_items").
		Where(sq.Eq{"user_id": userID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	_, err = or.db.Exec(ctx, sql, args...)
	return err
}

func (or *Repository) CountOrdersBetween(ctx context.Context, from, to time.Time) (int64, error) {
	statement := or.db.QueryBuilder.Select("count(*)").From("orders")
	statement = timeBound(statement, from, to)

	sql, args, err := statement.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := or.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (or *Repository) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	statement := or.db.QueryBuilder.
		Select("status", "count(*)").
		From("orders").
		GroupBy("status")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (or *Repository) SumRevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	statement := or.db.QueryBuilder.
		Select("coalesce(sum(grand_total), 0)").
		From("orders").
		Where(sq.NotEq{"status": domain.OrderStatusCancelled})
	statement = timeBound(statement, from, to)

	sql, args, err := statement.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var sum decimal.Decimal
	if err := or.db.QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (or *Repository) MonthlyOrderTotals(ctx context.Context, from time.Time) ([]domain.MonthlyOrderTotal, error) {
	statement := or.db.QueryBuilder.
		Select("date_trunc('month', created_at) as month",
			"count(*)", "coalesce(sum(grand_total), 0)").
		From("orders").
		Where(sq.NotEq{"status": domain.OrderStatusCancelled}).
		Where(sq.GtOrEq{"created_at": from}).
		GroupBy("month").
		OrderBy("month")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.MonthlyOrderTotal, 0)
	for rows.Next() {
		var t domain.MonthlyOrderTotal
		if err := rows.Scan(&t.Month, &t.Count, &t.Sales); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}

func (or *Repository) queryOrders(ctx context.Context, statement sq.SelectBuilder) ([]*domain.Order, error) {
	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := or.loadLines(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// loadLines attaches order_items to the given orders with one query.
func (or *Repository) loadLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(orders))
	byID := make(map[uint64]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	statement := or.db.QueryBuilder.
		Select("order_id", "product_id", "product_name", "image",
			"grade_id", "grade_name", "grade_price", "colors",
			"quantity", "unit_price", "line_total").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uint64
		var line domain.OrderLine
		var colors []byte
		err := rows.Scan(
			&orderID,
			&line.ProductID,
			&line.ProductName,
			&line.Image,
			&line.Grade.ID,
			&line.Grade.Name,
			&line.Grade.Price,
			&colors,
			&line.Quantity,
			&line.UnitPrice,
			&line.LineTotal,
		)
		if err != nil {
			return err
		}

		line.Colors, err = decodeColors(colors)
		if err != nil {
			return err
		}

		if order, ok := byID[orderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}

	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&order.Subtotal,
		&order.SGST,
		&order.CGST,
		&order.GST,
		&order.GrandTotal,
		&order.Shipping.Name,
		&order.Shipping.Address,
		&order.Shipping.City,
		&order.Shipping.State,
		&order.Shipping.PostalCode,
		&order.Shipping.Country,
		&order.Shipping.Phone,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.GatewayOrderID,
		&order.GatewayPaymentID,
		&order.GatewaySignature,
		&order.Status,
		&order.Notes,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func timeBound(statement sq.SelectBuilder, from, to time.Time) sq.SelectBuilder {
	if !from.IsZero() {
		statement = statement.Where(sq.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		statement = statement.Where(sq.Lt{"created_at": to})
	}
	return statement
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := errors.As(err, &pgErr)
	return pgErr, ok
}
