// Hand-written in the shape MockGen produces, for the Store interface in
// internal/store/store.go (which embeds Querier).

// Package mocks holds mockgen-shaped gomock doubles for the store package,
// grounded on libs/go/mocks' mockgen-generated Querier mock and used by
// tests that need to assert a store-layer error is propagated unchanged
// rather than exercise a full in-memory implementation.
package mocks

import (
	context "context"
	reflect "reflect"

	store "github.com/cyphera/credit-ledger/internal/store"
	types "github.com/cyphera/credit-ledger/internal/types"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockStore is a mock of the Store interface (which embeds Querier). A
// single mock type covers both, since every Store is a Querier.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore creates a new mock instance.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

var _ store.Store = (*MockStore)(nil)
var _ store.Querier = (*MockStore)(nil)

// FindAccountByIdentity mocks base method.
func (m *MockStore) FindAccountByIdentity(ctx context.Context, identity types.Identity) (*types.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindAccountByIdentity", ctx, identity)
	ret0, _ := ret[0].(*types.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindAccountByIdentity indicates an expected call of FindAccountByIdentity.
func (mr *MockStoreMockRecorder) FindAccountByIdentity(ctx, identity interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindAccountByIdentity", reflect.TypeOf((*MockStore)(nil).FindAccountByIdentity), ctx, identity)
}

// UpsertAccount mocks base method.
func (m *MockStore) UpsertAccount(ctx context.Context, identity types.Identity, seed store.AccountSeed) (*types.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertAccount", ctx, identity, seed)
	ret0, _ := ret[0].(*types.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpsertAccount indicates an expected call of UpsertAccount.
func (mr *MockStoreMockRecorder) UpsertAccount(ctx, identity, seed interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertAccount", reflect.TypeOf((*MockStore)(nil).UpsertAccount), ctx, identity, seed)
}

// GetAccount mocks base method.
func (m *MockStore) GetAccount(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAccount", ctx, accountID)
	ret0, _ := ret[0].(*types.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAccount indicates an expected call of GetAccount.
func (mr *MockStoreMockRecorder) GetAccount(ctx, accountID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAccount", reflect.TypeOf((*MockStore)(nil).GetAccount), ctx, accountID)
}

// LockAccountForUpdate mocks base method.
func (m *MockStore) LockAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LockAccountForUpdate", ctx, accountID)
	ret0, _ := ret[0].(*types.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LockAccountForUpdate indicates an expected call of LockAccountForUpdate.
func (mr *MockStoreMockRecorder) LockAccountForUpdate(ctx, accountID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LockAccountForUpdate", reflect.TypeOf((*MockStore)(nil).LockAccountForUpdate), ctx, accountID)
}

// UpdateAccountBalances mocks base method.
func (m *MockStore) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, freeUsesRemaining, paidCredits, balanceMinor, totalUses int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateAccountBalances", ctx, accountID, freeUsesRemaining, paidCredits, balanceMinor, totalUses)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateAccountBalances indicates an expected call of UpdateAccountBalances.
func (mr *MockStoreMockRecorder) UpdateAccountBalances(ctx, accountID, freeUsesRemaining, paidCredits, balanceMinor, totalUses interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateAccountBalances", reflect.TypeOf((*MockStore)(nil).UpdateAccountBalances), ctx, accountID, freeUsesRemaining, paidCredits, balanceMinor, totalUses)
}

// FindChargeByIdempotency mocks base method.
func (m *MockStore) FindChargeByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Charge, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindChargeByIdempotency", ctx, accountID, key)
	ret0, _ := ret[0].(*types.Charge)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindChargeByIdempotency indicates an expected call of FindChargeByIdempotency.
func (mr *MockStoreMockRecorder) FindChargeByIdempotency(ctx, accountID, key interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindChargeByIdempotency", reflect.TypeOf((*MockStore)(nil).FindChargeByIdempotency), ctx, accountID, key)
}

// InsertCharge mocks base method.
func (m *MockStore) InsertCharge(ctx context.Context, charge types.Charge) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertCharge", ctx, charge)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertCharge indicates an expected call of InsertCharge.
func (mr *MockStoreMockRecorder) InsertCharge(ctx, charge interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertCharge", reflect.TypeOf((*MockStore)(nil).InsertCharge), ctx, charge)
}

// GetCharge mocks base method.
func (m *MockStore) GetCharge(ctx context.Context, chargeID uuid.UUID) (*types.Charge, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetCharge", ctx, chargeID)
	ret0, _ := ret[0].(*types.Charge)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetCharge indicates an expected call of GetCharge.
func (mr *MockStoreMockRecorder) GetCharge(ctx, chargeID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetCharge", reflect.TypeOf((*MockStore)(nil).GetCharge), ctx, chargeID)
}

// ListCharges mocks base method.
func (m *MockStore) ListCharges(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Charge, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListCharges", ctx, accountID, limit, offset)
	ret0, _ := ret[0].([]types.Charge)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListCharges indicates an expected call of ListCharges.
func (mr *MockStoreMockRecorder) ListCharges(ctx, accountID, limit, offset interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListCharges", reflect.TypeOf((*MockStore)(nil).ListCharges), ctx, accountID, limit, offset)
}

// FindCreditByIdempotency mocks base method.
func (m *MockStore) FindCreditByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Credit, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindCreditByIdempotency", ctx, accountID, key)
	ret0, _ := ret[0].(*types.Credit)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindCreditByIdempotency indicates an expected call of FindCreditByIdempotency.
func (mr *MockStoreMockRecorder) FindCreditByIdempotency(ctx, accountID, key interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindCreditByIdempotency", reflect.TypeOf((*MockStore)(nil).FindCreditByIdempotency), ctx, accountID, key)
}

// InsertCredit mocks base method.
func (m *MockStore) InsertCredit(ctx context.Context, credit types.Credit) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertCredit", ctx, credit)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertCredit indicates an expected call of InsertCredit.
func (mr *MockStoreMockRecorder) InsertCredit(ctx, credit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertCredit", reflect.TypeOf((*MockStore)(nil).InsertCredit), ctx, credit)
}

// GetCredit mocks base method.
func (m *MockStore) GetCredit(ctx context.Context, creditID uuid.UUID) (*types.Credit, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetCredit", ctx, creditID)
	ret0, _ := ret[0].(*types.Credit)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetCredit indicates an expected call of GetCredit.
func (mr *MockStoreMockRecorder) GetCredit(ctx, creditID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetCredit", reflect.TypeOf((*MockStore)(nil).GetCredit), ctx, creditID)
}

// ListCredits mocks base method.
func (m *MockStore) ListCredits(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Credit, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListCredits", ctx, accountID, limit, offset)
	ret0, _ := ret[0].([]types.Credit)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListCredits indicates an expected call of ListCredits.
func (mr *MockStoreMockRecorder) ListCredits(ctx, accountID, limit, offset interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListCredits", reflect.TypeOf((*MockStore)(nil).ListCredits), ctx, accountID, limit, offset)
}

// GetProductInventory mocks base method.
func (m *MockStore) GetProductInventory(ctx context.Context, accountID uuid.UUID, productType string) (*types.ProductInventory, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetProductInventory", ctx, accountID, productType)
	ret0, _ := ret[0].(*types.ProductInventory)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetProductInventory indicates an expected call of GetProductInventory.
func (mr *MockStoreMockRecorder) GetProductInventory(ctx, accountID, productType interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetProductInventory", reflect.TypeOf((*MockStore)(nil).GetProductInventory), ctx, accountID, productType)
}

// LockProductInventory mocks base method.
func (m *MockStore) LockProductInventory(ctx context.Context, accountID uuid.UUID, productType string, seed store.ProductInventorySeed) (*types.ProductInventory, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LockProductInventory", ctx, accountID, productType, seed)
	ret0, _ := ret[0].(*types.ProductInventory)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// LockProductInventory indicates an expected call of LockProductInventory.
func (mr *MockStoreMockRecorder) LockProductInventory(ctx, accountID, productType, seed interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LockProductInventory", reflect.TypeOf((*MockStore)(nil).LockProductInventory), ctx, accountID, productType, seed)
}

// UpdateProductInventory mocks base method.
func (m *MockStore) UpdateProductInventory(ctx context.Context, inv types.ProductInventory) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateProductInventory", ctx, inv)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateProductInventory indicates an expected call of UpdateProductInventory.
func (mr *MockStoreMockRecorder) UpdateProductInventory(ctx, inv interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateProductInventory", reflect.TypeOf((*MockStore)(nil).UpdateProductInventory), ctx, inv)
}

// InsertProductUsageLog mocks base method.
func (m *MockStore) InsertProductUsageLog(ctx context.Context, log types.ProductUsageLog) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertProductUsageLog", ctx, log)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertProductUsageLog indicates an expected call of InsertProductUsageLog.
func (mr *MockStoreMockRecorder) InsertProductUsageLog(ctx, log interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertProductUsageLog", reflect.TypeOf((*MockStore)(nil).InsertProductUsageLog), ctx, log)
}

// FindPaymentByExternalID mocks base method.
func (m *MockStore) FindPaymentByExternalID(ctx context.Context, provider, externalID string) (*types.PaymentRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindPaymentByExternalID", ctx, provider, externalID)
	ret0, _ := ret[0].(*types.PaymentRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindPaymentByExternalID indicates an expected call of FindPaymentByExternalID.
func (mr *MockStoreMockRecorder) FindPaymentByExternalID(ctx, provider, externalID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindPaymentByExternalID", reflect.TypeOf((*MockStore)(nil).FindPaymentByExternalID), ctx, provider, externalID)
}

// InsertPayment mocks base method.
func (m *MockStore) InsertPayment(ctx context.Context, record types.PaymentRecord) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertPayment", ctx, record)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertPayment indicates an expected call of InsertPayment.
func (mr *MockStoreMockRecorder) InsertPayment(ctx, record interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertPayment", reflect.TypeOf((*MockStore)(nil).InsertPayment), ctx, record)
}

// UpdatePaymentStatus mocks base method.
func (m *MockStore) UpdatePaymentStatus(ctx context.Context, provider, externalID string, status types.PaymentStatus) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdatePaymentStatus", ctx, provider, externalID, status)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdatePaymentStatus indicates an expected call of UpdatePaymentStatus.
func (mr *MockStoreMockRecorder) UpdatePaymentStatus(ctx, provider, externalID, status interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdatePaymentStatus", reflect.TypeOf((*MockStore)(nil).UpdatePaymentStatus), ctx, provider, externalID, status)
}

// MarkPaymentFulfilled mocks base method.
func (m *MockStore) MarkPaymentFulfilled(ctx context.Context, provider, externalID string, creditID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkPaymentFulfilled", ctx, provider, externalID, creditID)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkPaymentFulfilled indicates an expected call of MarkPaymentFulfilled.
func (mr *MockStoreMockRecorder) MarkPaymentFulfilled(ctx, provider, externalID, creditID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkPaymentFulfilled", reflect.TypeOf((*MockStore)(nil).MarkPaymentFulfilled), ctx, provider, externalID, creditID)
}

// InsertCreditCheck mocks base method.
func (m *MockStore) InsertCreditCheck(ctx context.Context, check types.CreditCheck) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertCreditCheck", ctx, check)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertCreditCheck indicates an expected call of InsertCreditCheck.
func (mr *MockStoreMockRecorder) InsertCreditCheck(ctx, check interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertCreditCheck", reflect.TypeOf((*MockStore)(nil).InsertCreditCheck), ctx, check)
}

// WithTx mocks base method.
func (m *MockStore) WithTx(ctx context.Context, fn func(ctx context.Context, q store.Querier) error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WithTx", ctx, fn)
	ret0, _ := ret[0].(error)
	return ret0
}

// WithTx indicates an expected call of WithTx.
func (mr *MockStoreMockRecorder) WithTx(ctx, fn interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WithTx", reflect.TypeOf((*MockStore)(nil).WithTx), ctx, fn)
}

// Ping mocks base method.
func (m *MockStore) Ping(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Ping", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

// Ping indicates an expected call of Ping.
func (mr *MockStoreMockRecorder) Ping(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Ping", reflect.TypeOf((*MockStore)(nil).Ping), ctx)
}

// Close mocks base method.
func (m *MockStore) Close() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Close")
}

// Close indicates an expected call of Close.
func (mr *MockStoreMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockStore)(nil).Close))
}
