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
	selectVendorByIDQuery = `
						SELECT id, user_id, login, password_hash, withdrawal_balance, created_at
						FROM vendor_profiles
						WHERE id = $1
`
	selectVendorByLoginQuery = `
						SELECT id, user_id, login, password_hash, withdrawal_balance, created_at
						FROM vendor_profiles
						WHERE login = $1
`
	selectVendorIDsQuery = `
						SELECT id FROM vendor_profiles ORDER BY id
`
	selectVendorBalanceQuery = `
						SELECT withdrawal_balance FROM vendor_profiles
						WHERE id = $1
`
)

// VendorRepository implements VendorRepository interface
type VendorRepository struct {
	db *postgres.DB
}

// NewVendorRepository creates new VendorRepository instance
func NewVendorRepository(db *postgres.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// GetVendorByID returns vendor profile by id
func (vr *VendorRepository) GetVendorByID(ctx context.Context, id uint64) (*models.VendorProfile, error) {
	vendor := models.VendorProfile{}
	err := vr.db.QueryRow(ctx, selectVendorByIDQuery, id).Scan(
		&vendor.ID, &vendor.UserID, &vendor.Login, &vendor.PasswordHash,
		&vendor.WithdrawalBalance, &vendor.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &vendor, nil
}

// GetVendorByLogin returns vendor profile by login
func (vr *VendorRepository) GetVendorByLogin(ctx context.Context, login string) (*models.VendorProfile, error) {
	vendor := models.VendorProfile{}
	err := vr.db.QueryRow(ctx, selectVendorByLoginQuery, login).Scan(
		&vendor.ID, &vendor.UserID, &vendor.Login, &vendor.PasswordHash,
		&vendor.WithdrawalBalance, &vendor.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &vendor, nil
}

// GetVendorIDs returns all vendor ids
func (vr *VendorRepository) GetVendorIDs(ctx context.Context) ([]uint64, error) {
	rows, err := vr.db.Query(ctx, selectVendorIDsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64

	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// GetVendorBalance returns the stored withdrawal balance
func (vr *VendorRepository) GetVendorBalance(ctx context.Context, vendorID uint64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := vr.db.QueryRow(ctx, selectVendorBalanceQuery, vendorID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, models.ErrDataNotFound
		}
		return decimal.Decimal{}, err
	}

	return balance, nil
}
