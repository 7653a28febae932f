package usecase_test

import (
	"context"
	"sync"

	"marketplace/internal/domain/model"
	"marketplace/internal/notify"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/mock"
)

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	payments   *PaymentRepoMock
	tracking   *TrackingRepoMock
	addresses  *AddressRepoMock
	products   *ProductRepoMock
	users      *UserRepoMock
	audit      *AuditRepoMock
}

func newTxRepos() *TxReposMock {
	return &TxReposMock{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		payments:   new(PaymentRepoMock),
		tracking:   new(TrackingRepoMock),
		addresses:  new(AddressRepoMock),
		products:   new(ProductRepoMock),
		users:      new(UserRepoMock),
		audit:      new(AuditRepoMock),
	}
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository     { return r.payments }
func (r *TxReposMock) Tracking() repo.TrackingRepository    { return r.tracking }
func (r *TxReposMock) Addresses() repo.AddressRepository    { return r.addresses }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Users() repo.UserRepository           { return r.users }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.audit }

// 書き込み系が一度も呼ばれていないこと
func (r *TxReposMock) assertNoWrites(t mock.TestingT) {
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	r.orders.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	r.orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	r.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	r.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.payments.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	r.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	r.tracking.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
	r.tracking.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	r.tracking.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	r.tracking.AssertNotCalled(t, "SetStatusByOrderID", mock.Anything, mock.Anything, mock.Anything)
	r.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindDetail(ctx context.Context, orderID int64) (model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	d, _ := args.Get(0).(model.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderRepoMock) ListDetails(ctx context.Context, f repo.OrderDetailFilter) ([]model.OrderDetail, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.OrderDetail)
	return list, args.Error(1)
}

func (m *OrderRepoMock) UpdateFields(ctx context.Context, orderID int64, fields map[string]any) (int64, error) {
	args := m.Called(ctx, orderID, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) Cancel(ctx context.Context, orderID int64, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(map[model.OrderStatus]int64)
	return c, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepoMock) UpdateFields(ctx context.Context, orderID int64, fields map[string]any) (int64, error) {
	args := m.Called(ctx, orderID, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type TrackingRepoMock struct{ mock.Mock }

func (m *TrackingRepoMock) InsertIfAbsent(ctx context.Context, t *model.Tracking) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *TrackingRepoMock) Upsert(ctx context.Context, orderID int64, fields map[string]any) (model.Tracking, bool, error) {
	args := m.Called(ctx, orderID, fields)
	t, _ := args.Get(0).(model.Tracking)
	return t, args.Bool(1), args.Error(2)
}

func (m *TrackingRepoMock) FindByID(ctx context.Context, trackingID int64) (model.Tracking, error) {
	args := m.Called(ctx, trackingID)
	t, _ := args.Get(0).(model.Tracking)
	return t, args.Error(1)
}

func (m *TrackingRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Tracking, error) {
	args := m.Called(ctx, orderID)
	t, _ := args.Get(0).(model.Tracking)
	return t, args.Error(1)
}

func (m *TrackingRepoMock) UpdateFields(ctx context.Context, trackingID int64, fields map[string]any) (int64, error) {
	args := m.Called(ctx, trackingID, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TrackingRepoMock) SetStatusByOrderID(ctx context.Context, orderID int64, status model.TrackingStatus) (int64, error) {
	args := m.Called(ctx, orderID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TrackingRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, a model.Address) (model.Address, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(model.Address)
	return out, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, a model.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) UpdateApproval(ctx context.Context, id int64, status model.ApprovalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *ProductRepoMock) CountByApproval(ctx context.Context, status model.ApprovalStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateApproval(ctx context.Context, id int64, status model.ApprovalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *UserRepoMock) CountByRoleAndApproval(ctx context.Context, role model.Role, status model.ApprovalStatus) (int64, error) {
	args := m.Called(ctx, role, status)
	return args.Get(0).(int64), args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Notifier / ID fakes
// =====================

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	mails  []notify.Mail
}

func (n *recordingNotifier) Publish(_ context.Context, ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Mail(_ context.Context, m notify.Mail) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mails = append(n.mails, m)
}

func (n *recordingNotifier) eventTypes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixedIDs struct{}

func (fixedIDs) OrderUID() (string, error) { return "ord-uid-1", nil }
func (fixedIDs) PaymentUID() string        { return "pay_1" }
