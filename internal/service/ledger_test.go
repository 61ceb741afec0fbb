package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendormart/ledger/internal/models"
)

type fakeEarningRepo struct {
	mu       sync.Mutex
	earnings map[string]*models.Earning
	balances map[uint64]decimal.Decimal
	nextID   uint64

	// beforeCreate runs outside the lock at the top of
	// CreateEarningAndCredit, used to force races in tests
	beforeCreate func()
}

func newFakeEarningRepo() *fakeEarningRepo {
	return &fakeEarningRepo{
		earnings: make(map[string]*models.Earning),
		balances: make(map[uint64]decimal.Decimal),
	}
}

func pairKey(orderID, vendorID uint64) string {
	return fmt.Sprintf("%d-%d", orderID, vendorID)
}

func (f *fakeEarningRepo) GetEarningByOrderVendor(_ context.Context, orderID, vendorID uint64) (*models.Earning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	earning, ok := f.earnings[pairKey(orderID, vendorID)]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *earning
	return &cp, nil
}

func (f *fakeEarningRepo) CreateEarningAndCredit(_ context.Context, earning *models.Earning) (*models.Earning, error) {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := pairKey(earning.OrderID, earning.VendorID)
	if _, ok := f.earnings[key]; ok {
		return nil, models.ErrConflictData
	}

	f.nextID++
	earning.ID = f.nextID

	cp := *earning
	f.earnings[key] = &cp
	f.balances[earning.VendorID] = f.balances[earning.VendorID].Add(earning.NetAmount)

	return earning, nil
}

func (f *fakeEarningRepo) FailEarningAndDebit(_ context.Context, earning *models.Earning, debit bool) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.earnings[pairKey(earning.OrderID, earning.VendorID)]
	if !ok {
		return decimal.Decimal{}, models.ErrDataNotFound
	}
	if stored.Status == models.EarningStatusFailed {
		return decimal.Decimal{}, models.ErrConflictData
	}

	stored.Status = models.EarningStatusFailed
	if debit {
		f.balances[earning.VendorID] = f.balances[earning.VendorID].Sub(earning.NetAmount)
	}

	return f.balances[earning.VendorID], nil
}

func (f *fakeEarningRepo) balance(vendorID uint64) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[vendorID]
}

func (f *fakeEarningRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.earnings)
}

type fakeOrderRepo struct {
	orders map[uint64]*models.Order
	items  map[uint64][]models.OrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uint64]*models.Order),
		items:  make(map[uint64][]models.OrderItem),
	}
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id uint64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) GetOrderItems(_ context.Context, orderID uint64) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

type fakeVendorReader struct{}

func (fakeVendorReader) GetVendorByID(_ context.Context, id uint64) (*models.VendorProfile, error) {
	return &models.VendorProfile{ID: id, UserID: id + 1000}, nil
}

type sentNotification struct {
	userID  uint64
	title   string
	message string
	ntype   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(userID uint64, title, message, ntype string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{userID, title, message, ntype})
}

func (f *fakeNotifier) byType(ntype string) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentNotification
	for _, n := range f.sent {
		if n.ntype == ntype {
			out = append(out, n)
		}
	}
	return out
}

func rate(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func deliveredOrder(id, vendorID uint64, total, shipping string) *models.Order {
	return &models.Order{
		ID:            id,
		Number:        fmt.Sprintf("ORD-%06d", id),
		VendorID:      vendorID,
		TotalAmount:   decimal.RequireFromString(total),
		ShippingCost:  decimal.RequireFromString(shipping),
		Status:        models.OrderStatusDelivered,
		PaymentStatus: models.PaymentStatusCompleted,
	}
}

func newLedgerFixture() (*LedgerService, *fakeEarningRepo, *fakeOrderRepo, *fakeNotifier) {
	earnings := newFakeEarningRepo()
	orders := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	ls := NewLedgerService(earnings, orders, fakeVendorReader{}, notifier)
	return ls, earnings, orders, notifier
}

func TestLedgerService_SettleOrder(t *testing.T) {
	// total 115.00, shipping 15.00, item rates 10% and 20%:
	// gross 100.00, average rate 15%, commission 15.00, net 85.00
	ls, earnings, orders, notifier := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "115.00", "15.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, Quantity: 1, Price: decimal.RequireFromString("40.00"), Total: decimal.RequireFromString("40.00"), CommissionRate: rate("10")},
		{ID: 2, OrderID: 1, Quantity: 2, Price: decimal.RequireFromString("30.00"), Total: decimal.RequireFromString("60.00"), CommissionRate: rate("20")},
	}

	earning, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, earning.GrossAmount.Equal(decimal.RequireFromString("100.00")), "gross = %s", earning.GrossAmount)
	assert.True(t, earning.CommissionAmount.Equal(decimal.RequireFromString("15.00")), "commission = %s", earning.CommissionAmount)
	assert.True(t, earning.NetAmount.Equal(decimal.RequireFromString("85.00")), "net = %s", earning.NetAmount)
	assert.Equal(t, models.EarningStatusProcessing, earning.Status)
	assert.True(t, earning.MovedToWithdrawal)

	assert.True(t, earnings.balance(7).Equal(decimal.RequireFromString("85.00")))

	sent := notifier.byType(models.NotificationTypeEarning)
	require.Len(t, sent, 1)
	assert.Equal(t, uint64(1007), sent[0].userID)
	assert.Contains(t, sent[0].message, "85.00")
}

func TestLedgerService_SettleOrder_Idempotent(t *testing.T) {
	ls, earnings, orders, notifier := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "115.00", "15.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, CommissionRate: rate("10")},
		{ID: 2, OrderID: 1, CommissionRate: rate("20")},
	}

	first, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	second, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, earnings.count())
	assert.True(t, earnings.balance(7).Equal(decimal.RequireFromString("85.00")))
	assert.Len(t, notifier.byType(models.NotificationTypeEarning), 1)
}

func TestLedgerService_SettleOrder_Concurrent(t *testing.T) {
	// two racing settlements for the same order must produce exactly one
	// earning row and one balance credit
	ls, earnings, orders, _ := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "115.00", "15.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, CommissionRate: rate("10")},
		{ID: 2, OrderID: 1, CommissionRate: rate("20")},
	}

	// both callers pass the duplicate pre-check before either inserts
	var barrier sync.WaitGroup
	barrier.Add(2)
	earnings.beforeCreate = func() {
		barrier.Done()
		barrier.Wait()
	}

	results := make(chan *models.Earning, 2)
	errs := make(chan error, 2)

	for i := 0; i < 2; i++ {
		go func() {
			earning, err := ls.SettleOrder(context.Background(), 1)
			results <- earning
			errs <- err
		}()
	}

	a, b := <-results, <-results
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, earnings.count())
	assert.True(t, earnings.balance(7).Equal(decimal.RequireFromString("85.00")))
}

func TestLedgerService_SettleOrder_UnweightedAverage(t *testing.T) {
	// a cheap low-rate item and an expensive high-rate item are charged
	// the simple average of the rates, not a value-weighted blend
	ls, _, orders, _ := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "1001.00", "0.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, Total: decimal.RequireFromString("1.00"), CommissionRate: rate("5")},
		{ID: 2, OrderID: 1, Total: decimal.RequireFromString("1000.00"), CommissionRate: rate("20")},
	}

	earning, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	// (5 + 20) / 2 = 12.5% of 1001.00
	wantCommission := decimal.RequireFromString("125.125")
	assert.True(t, earning.CommissionAmount.Equal(wantCommission), "commission = %s, want %s", earning.CommissionAmount, wantCommission)

	// value-weighted would be 200.05
	weighted := decimal.RequireFromString("200.05")
	assert.False(t, earning.CommissionAmount.Equal(weighted))
}

func TestLedgerService_SettleOrder_DefaultRate(t *testing.T) {
	// items without a category rate fall back to the 15% default
	ls, _, orders, _ := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "200.00", "0.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1},
		{ID: 2, OrderID: 1},
	}

	earning, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, earning.CommissionAmount.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, earning.NetAmount.Equal(decimal.RequireFromString("170.00")))
}

func TestLedgerService_SettleOrder_RateClamped(t *testing.T) {
	// out-of-range rates clamp to [0,100]; commission never exceeds gross
	ls, _, orders, _ := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "100.00", "0.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, CommissionRate: rate("150")},
		{ID: 2, OrderID: 1, CommissionRate: rate("-5")},
	}

	earning, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	// clamped to (100 + 0) / 2 = 50%
	assert.True(t, earning.CommissionAmount.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, earning.CommissionAmount.LessThanOrEqual(earning.GrossAmount))
	assert.False(t, earning.CommissionAmount.IsNegative())
}

func TestLedgerService_SettleOrder_NotSettleable(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		paymentStatus string
	}{
		{"not_delivered", models.OrderStatusShipped, models.PaymentStatusCompleted},
		{"payment_pending", models.OrderStatusDelivered, models.PaymentStatusPending},
		{"payment_failed", models.OrderStatusDelivered, models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, earnings, orders, _ := newLedgerFixture()

			order := deliveredOrder(1, 7, "100.00", "0.00")
			order.Status = tt.status
			order.PaymentStatus = tt.paymentStatus
			orders.orders[1] = order
			orders.items[1] = []models.OrderItem{{ID: 1, OrderID: 1}}

			_, err := ls.SettleOrder(context.Background(), 1)
			assert.ErrorIs(t, err, models.ErrOrderNotSettleable)
			assert.Equal(t, 0, earnings.count())
		})
	}
}

func TestLedgerService_SettleOrder_NoItems(t *testing.T) {
	ls, earnings, orders, _ := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "100.00", "0.00")

	_, err := ls.SettleOrder(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrOrderHasNoItems)
	assert.Equal(t, 0, earnings.count())
}

func TestLedgerService_ReverseSettlement(t *testing.T) {
	// settle then reverse leaves the balance unchanged and exactly one
	// FAILED earning row
	ls, earnings, orders, notifier := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "115.00", "15.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, CommissionRate: rate("10")},
		{ID: 2, OrderID: 1, CommissionRate: rate("20")},
	}

	_, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, earnings.balance(7).Equal(decimal.RequireFromString("85.00")))

	require.NoError(t, ls.ReverseSettlement(context.Background(), 1))

	assert.True(t, earnings.balance(7).IsZero(), "balance = %s", earnings.balance(7))
	assert.Equal(t, 1, earnings.count())

	earning, err := earnings.GetEarningByOrderVendor(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, models.EarningStatusFailed, earning.Status)

	sent := notifier.byType(models.NotificationTypeReversal)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].message, "85.00")

	// second reversal is a no-op
	require.NoError(t, ls.ReverseSettlement(context.Background(), 1))
	assert.True(t, earnings.balance(7).IsZero())
	assert.Len(t, notifier.byType(models.NotificationTypeReversal), 1)
}

func TestLedgerService_ReverseSettlement_NeverSettled(t *testing.T) {
	// refund before delivery: no earning exists, reversal is a no-op
	ls, earnings, orders, notifier := newLedgerFixture()

	order := deliveredOrder(1, 7, "115.00", "15.00")
	order.Status = models.OrderStatusRefunded
	orders.orders[1] = order

	require.NoError(t, ls.ReverseSettlement(context.Background(), 1))
	assert.Equal(t, 0, earnings.count())
	assert.Empty(t, notifier.sent)
}

func TestLedgerService_ReverseSettlement_Overdraft(t *testing.T) {
	// vendor already withdrew the funds: the debit stands and an
	// overdraft notification is emitted
	ls, earnings, orders, notifier := newLedgerFixture()

	orders.orders[1] = deliveredOrder(1, 7, "115.00", "15.00")
	orders.items[1] = []models.OrderItem{
		{ID: 1, OrderID: 1, CommissionRate: rate("10")},
		{ID: 2, OrderID: 1, CommissionRate: rate("20")},
	}

	_, err := ls.SettleOrder(context.Background(), 1)
	require.NoError(t, err)

	// out-of-band payout drains the balance before the refund arrives
	earnings.mu.Lock()
	earnings.balances[7] = decimal.Zero
	earnings.mu.Unlock()

	require.NoError(t, ls.ReverseSettlement(context.Background(), 1))

	assert.True(t, earnings.balance(7).Equal(decimal.RequireFromString("-85.00")))
	require.Len(t, notifier.byType(models.NotificationTypeOverdraft), 1)
	assert.Len(t, notifier.byType(models.NotificationTypeReversal), 1)
}

func TestAverageCommissionRate(t *testing.T) {
	tests := []struct {
		name  string
		rates []*decimal.Decimal
		want  string
	}{
		{"single_item", []*decimal.Decimal{rate("10")}, "10"},
		{"two_items", []*decimal.Decimal{rate("10"), rate("20")}, "15"},
		{"nil_falls_back", []*decimal.Decimal{nil, nil}, "15"},
		{"mixed_nil", []*decimal.Decimal{rate("30"), nil}, "22.5"},
		{"zero_rate", []*decimal.Decimal{rate("0"), rate("0")}, "0"},
		{"repeating_decimal", []*decimal.Decimal{rate("10"), rate("10"), rate("15")}, "11.6666666666666667"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]models.OrderItem, 0, len(tt.rates))
			for _, r := range tt.rates {
				items = append(items, models.OrderItem{CommissionRate: r})
			}

			got := averageCommissionRate(items)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}
