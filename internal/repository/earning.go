package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/vendormart/ledger/internal/models"
	"github.com/vendormart/ledger/internal/repository/postgres"
)

const (
	insertEarningQuery = `
						INSERT INTO earnings (vendor_id, order_id, gross_amount, commission_amount, net_amount, status, moved_to_withdrawal, moved_to_withdrawal_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, now())
						RETURNING id, created_at, moved_to_withdrawal_at
`
	selectEarningByOrderVendorQuery = `
						SELECT id, vendor_id, order_id, gross_amount, commission_amount, net_amount, status, moved_to_withdrawal, moved_to_withdrawal_at, created_at
						FROM earnings
						WHERE order_id = $1 AND vendor_id = $2
`
	selectEarningsByVendorIDQuery = `
						SELECT id, vendor_id, order_id, gross_amount, commission_amount, net_amount, status, moved_to_withdrawal, moved_to_withdrawal_at, created_at
						FROM earnings
						WHERE vendor_id = $1
						ORDER BY created_at DESC
`
	failEarningQuery = `
						UPDATE earnings
						SET status = $1
						WHERE id = $2 AND status <> $1
`
	creditVendorBalanceQuery = `
						UPDATE vendor_profiles
						SET withdrawal_balance = withdrawal_balance + $1
						WHERE id = $2
						RETURNING withdrawal_balance
`
	sumSettledByVendorQuery = `
						SELECT COALESCE(SUM(net_amount), 0) FROM earnings
						WHERE vendor_id = $1 AND moved_to_withdrawal AND status <> 'FAILED'
`
)

const pgErrUniqueViolationCode = "23505"

// EarningRepository implements EarningRepository interface
type EarningRepository struct {
	db *postgres.DB
}

// NewEarningRepository creates new EarningRepository instance
func NewEarningRepository(db *postgres.DB) *EarningRepository {
	return &EarningRepository{db: db}
}

// GetEarningByOrderVendor returns earning for (order, vendor) pair
func (er *EarningRepository) GetEarningByOrderVendor(ctx context.Context, orderID, vendorID uint64) (*models.Earning, error) {
	earning := models.Earning{}
	err := er.db.QueryRow(ctx, selectEarningByOrderVendorQuery, orderID, vendorID).Scan(
		&earning.ID, &earning.VendorID, &earning.OrderID,
		&earning.GrossAmount, &earning.CommissionAmount, &earning.NetAmount,
		&earning.Status, &earning.MovedToWithdrawal, &earning.MovedToWithdrawalAt, &earning.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &earning, nil
}

// CreateEarningAndCredit inserts the earning row and credits the vendor
// balance by its net amount in a single transaction. A concurrent insert
// for the same (order, vendor) pair trips the unique constraint and is
// reported as models.ErrConflictData with nothing committed.
func (er *EarningRepository) CreateEarningAndCredit(ctx context.Context, earning *models.Earning) (*models.Earning, error) {
	err := er.db.WithinTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertEarningQuery,
			earning.VendorID, earning.OrderID,
			earning.GrossAmount, earning.CommissionAmount, earning.NetAmount,
			earning.Status, earning.MovedToWithdrawal).
			Scan(&earning.ID, &earning.CreatedAt, &earning.MovedToWithdrawalAt)
		if err != nil {
			return err
		}

		var balance decimal.Decimal
		return tx.QueryRow(ctx, creditVendorBalanceQuery, earning.NetAmount, earning.VendorID).Scan(&balance)
	})
	if err != nil {
		if errCode := er.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return earning, nil
}

// FailEarningAndDebit marks the earning FAILED and, when debit is set,
// debits the vendor balance by the earning net amount in the same
// transaction. Returns the resulting balance. A row already FAILED is
// reported as models.ErrConflictData with nothing committed.
func (er *EarningRepository) FailEarningAndDebit(ctx context.Context, earning *models.Earning, debit bool) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := er.db.WithinTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, failEarningQuery, models.EarningStatusFailed, earning.ID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return models.ErrConflictData
		}

		if !debit {
			return nil
		}
		return tx.QueryRow(ctx, creditVendorBalanceQuery, earning.NetAmount.Neg(), earning.VendorID).Scan(&balance)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	return balance, nil
}

// GetEarningsByVendorID returns vendor earnings, newest first
func (er *EarningRepository) GetEarningsByVendorID(ctx context.Context, vendorID uint64) ([]models.Earning, error) {
	rows, err := er.db.Query(ctx, selectEarningsByVendorIDQuery, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []models.Earning

	for rows.Next() {
		earning := models.Earning{}
		err = rows.Scan(&earning.ID, &earning.VendorID, &earning.OrderID,
			&earning.GrossAmount, &earning.CommissionAmount, &earning.NetAmount,
			&earning.Status, &earning.MovedToWithdrawal, &earning.MovedToWithdrawalAt, &earning.CreatedAt)
		if err != nil {
			continue
		}
		earnings = append(earnings, earning)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return earnings, nil
}

// SettledTotalByVendor recomputes the vendor balance from earning rows
func (er *EarningRepository) SettledTotalByVendor(ctx context.Context, vendorID uint64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := er.db.QueryRow(ctx, sumSettledByVendorQuery, vendorID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return total, nil
}
