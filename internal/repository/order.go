package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vendormart/ledger/internal/models"
	"github.com/vendormart/ledger/internal/repository/postgres"
)

const (
	selectOrderByIDQuery = `
						SELECT id, number, customer_id, vendor_id, total_amount, shipping_cost, status, payment_status, created_at, updated_at
						FROM orders
						WHERE id = $1
`
	selectOrderByNumberQuery = `
						SELECT id, number, customer_id, vendor_id, total_amount, shipping_cost, status, payment_status, created_at, updated_at
						FROM orders
						WHERE number = $1
`
	selectOrderItemsQuery = `
						SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.total, c.commission_rate
						FROM order_items oi
						JOIN products p ON p.id = oi.product_id
						LEFT JOIN categories c ON c.id = p.category_id
						WHERE oi.order_id = $1
						ORDER BY oi.id
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, payment_status = $2, updated_at = now()
						WHERE id = $3
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id uint64) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).Scan(
		&order.ID, &order.Number, &order.CustomerID, &order.VendorID,
		&order.TotalAmount, &order.ShippingCost, &order.Status, &order.PaymentStatus,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrderByNumber returns order by number
func (or *OrderRepository) GetOrderByNumber(ctx context.Context, num string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByNumberQuery, num).Scan(
		&order.ID, &order.Number, &order.CustomerID, &order.VendorID,
		&order.TotalAmount, &order.ShippingCost, &order.Status, &order.PaymentStatus,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrderItems returns order items joined with the category commission rate
func (or *OrderRepository) GetOrderItems(ctx context.Context, orderID uint64) ([]models.OrderItem, error) {
	rows, err := or.db.Query(ctx, selectOrderItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {
		item := models.OrderItem{}
		err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Total, &item.CommissionRate)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateOrderStatus updates order status and payment status
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, order models.Order) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, order.Status, order.PaymentStatus, order.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
