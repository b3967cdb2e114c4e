package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// MemoryStore is an in-process Store implementation backing unit tests that
// need no database. It satisfies the same Querier/Store interfaces as
// PostgresStore and enforces the balance and idempotency invariants of
// accounts, charges, credits and product inventory, so tests exercise real
// rejection paths. Payment records and credit checks are stored without
// the SQL CHECK and foreign-key validation.
//
// WithTx is emulated with a single coarse mutex: the in-memory store never
// needs row-level granularity to prove the Ledger Engine's locking
// contract, only that a transaction's body runs atomically with respect to
// other mutations.
type MemoryStore struct {
	mu sync.Mutex

	accounts          map[uuid.UUID]*types.Account
	identityIndex     map[identityKey]uuid.UUID
	charges           map[uuid.UUID]*types.Charge
	chargeIdemIndex   map[idemKey]uuid.UUID
	credits           map[uuid.UUID]*types.Credit
	creditIdemIndex   map[idemKey]uuid.UUID
	productInventory  map[productKey]*types.ProductInventory
	productUsageLogs  []types.ProductUsageLog
	payments          map[paymentKey]*types.PaymentRecord
	creditChecks      []types.CreditCheck
}

type identityKey struct {
	provider, externalID, tenantID string
}

type idemKey struct {
	accountID uuid.UUID
	key       string
}

type productKey struct {
	accountID   uuid.UUID
	productType string
}

type paymentKey struct {
	provider, externalID string
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:         make(map[uuid.UUID]*types.Account),
		identityIndex:    make(map[identityKey]uuid.UUID),
		charges:          make(map[uuid.UUID]*types.Charge),
		chargeIdemIndex:  make(map[idemKey]uuid.UUID),
		credits:          make(map[uuid.UUID]*types.Credit),
		creditIdemIndex:  make(map[idemKey]uuid.UUID),
		productInventory: make(map[productKey]*types.ProductInventory),
		payments:         make(map[paymentKey]*types.PaymentRecord),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
func (s *MemoryStore) Close()                         {}

// SetAccountStatusForTest flips an account's status directly, bypassing the
// Ledger Engine and Registry — the in-memory stand-in for an operator
// suspending or closing an account out of band against the real schema's
// status column.
func (s *MemoryStore) SetAccountStatusForTest(accountID uuid.UUID, status types.AccountStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[accountID]; ok {
		acc.Status = status
	}
}

// WithTx holds the store-wide mutex for the duration of fn, which is enough
// to serialise mutations the same way a Postgres row lock would for a
// single-account test scenario.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, memoryQuerier{s})
}

// memoryQuerier implements Querier by delegating to MemoryStore's maps.
// Every exported Querier method on MemoryStore itself also goes through
// this type so non-transactional reads share the same logic as
// transactional ones.
type memoryQuerier struct{ s *MemoryStore }

func (s *MemoryStore) FindAccountByIdentity(ctx context.Context, identity types.Identity) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.FindAccountByIdentity(ctx, identity)
}
func (s *MemoryStore) UpsertAccount(ctx context.Context, identity types.Identity, seed AccountSeed) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.UpsertAccount(ctx, identity, seed)
}
func (s *MemoryStore) GetAccount(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.GetAccount(ctx, accountID)
}
func (s *MemoryStore) LockAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.LockAccountForUpdate(ctx, accountID)
}
func (s *MemoryStore) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, freeUsesRemaining, paidCredits, balanceMinor, totalUses int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.UpdateAccountBalances(ctx, accountID, freeUsesRemaining, paidCredits, balanceMinor, totalUses)
}
func (s *MemoryStore) FindChargeByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.FindChargeByIdempotency(ctx, accountID, key)
}
func (s *MemoryStore) InsertCharge(ctx context.Context, c types.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.InsertCharge(ctx, c)
}
func (s *MemoryStore) GetCharge(ctx context.Context, chargeID uuid.UUID) (*types.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.GetCharge(ctx, chargeID)
}
func (s *MemoryStore) ListCharges(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.ListCharges(ctx, accountID, limit, offset)
}
func (s *MemoryStore) FindCreditByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.FindCreditByIdempotency(ctx, accountID, key)
}
func (s *MemoryStore) InsertCredit(ctx context.Context, c types.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.InsertCredit(ctx, c)
}
func (s *MemoryStore) GetCredit(ctx context.Context, creditID uuid.UUID) (*types.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.GetCredit(ctx, creditID)
}
func (s *MemoryStore) ListCredits(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.ListCredits(ctx, accountID, limit, offset)
}
func (s *MemoryStore) GetProductInventory(ctx context.Context, accountID uuid.UUID, productType string) (*types.ProductInventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.GetProductInventory(ctx, accountID, productType)
}
func (s *MemoryStore) LockProductInventory(ctx context.Context, accountID uuid.UUID, productType string, seed ProductInventorySeed) (*types.ProductInventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.LockProductInventory(ctx, accountID, productType, seed)
}
func (s *MemoryStore) UpdateProductInventory(ctx context.Context, inv types.ProductInventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.UpdateProductInventory(ctx, inv)
}
func (s *MemoryStore) InsertProductUsageLog(ctx context.Context, l types.ProductUsageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.InsertProductUsageLog(ctx, l)
}
func (s *MemoryStore) FindPaymentByExternalID(ctx context.Context, provider, externalID string) (*types.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.FindPaymentByExternalID(ctx, provider, externalID)
}
func (s *MemoryStore) InsertPayment(ctx context.Context, p types.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.InsertPayment(ctx, p)
}
func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, provider, externalID string, status types.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.UpdatePaymentStatus(ctx, provider, externalID, status)
}
func (s *MemoryStore) MarkPaymentFulfilled(ctx context.Context, provider, externalID string, creditID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.MarkPaymentFulfilled(ctx, provider, externalID, creditID)
}
func (s *MemoryStore) InsertCreditCheck(ctx context.Context, c types.CreditCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memoryQuerier{s}.InsertCreditCheck(ctx, c)
}

// --- memoryQuerier: the actual map logic, assumes the caller holds s.mu ---

func toIdentityKey(id types.Identity) identityKey {
	return identityKey{provider: id.OAuthProvider, externalID: id.ExternalID, tenantID: id.TenantID}
}

func (q memoryQuerier) FindAccountByIdentity(ctx context.Context, identity types.Identity) (*types.Account, error) {
	id, ok := q.s.identityIndex[toIdentityKey(identity)]
	if !ok {
		return nil, nil
	}
	acc := *q.s.accounts[id]
	return &acc, nil
}

func (q memoryQuerier) UpsertAccount(ctx context.Context, identity types.Identity, seed AccountSeed) (*types.Account, error) {
	key := toIdentityKey(identity)
	if id, ok := q.s.identityIndex[key]; ok {
		acc := *q.s.accounts[id]
		return &acc, nil
	}

	now := time.Now()
	acc := &types.Account{
		AccountID:         uuid.New(),
		Identity:          identity,
		FreeUsesRemaining: seed.FreeUsesRemaining,
		Currency:          defaultString(seed.Currency, "USD"),
		PlanName:          defaultString(seed.PlanName, "free"),
		Status:            types.AccountActive,
		CustomerEmail:     seed.CustomerEmail,
		UserRole:          seed.UserRole,
		AgentID:           seed.AgentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	q.s.accounts[acc.AccountID] = acc
	q.s.identityIndex[key] = acc.AccountID

	out := *acc
	return &out, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (q memoryQuerier) GetAccount(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	acc, ok := q.s.accounts[accountID]
	if !ok {
		return nil, apperr.AccountNotFound("account not found")
	}
	out := *acc
	return &out, nil
}

func (q memoryQuerier) LockAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	// The store-wide mutex held by WithTx already gives exclusive access;
	// this just validates existence the way the row lock query would.
	return q.GetAccount(ctx, accountID)
}

func (q memoryQuerier) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, freeUsesRemaining, paidCredits, balanceMinor, totalUses int64) error {
	acc, ok := q.s.accounts[accountID]
	if !ok {
		return apperr.AccountNotFound("account not found")
	}
	if freeUsesRemaining < 0 || paidCredits < 0 || balanceMinor < 0 {
		return apperr.DataIntegrityViolation("balance invariant violated", nil)
	}
	acc.FreeUsesRemaining = freeUsesRemaining
	acc.PaidCredits = paidCredits
	acc.BalanceMinor = balanceMinor
	acc.TotalUses = totalUses
	acc.UpdatedAt = time.Now()
	return nil
}

func (q memoryQuerier) FindChargeByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Charge, error) {
	if key == "" {
		return nil, nil
	}
	id, ok := q.s.chargeIdemIndex[idemKey{accountID, key}]
	if !ok {
		return nil, nil
	}
	c := *q.s.charges[id]
	return &c, nil
}

func (q memoryQuerier) InsertCharge(ctx context.Context, c types.Charge) error {
	if c.AmountMinor <= 0 {
		return apperr.Validation("amount must be positive")
	}
	if c.IdempotencyKey != "" {
		k := idemKey{c.AccountID, c.IdempotencyKey}
		if _, exists := q.s.chargeIdemIndex[k]; exists {
			return apperr.DataIntegrityViolation("duplicate idempotency key", nil)
		}
		q.s.chargeIdemIndex[k] = c.ChargeID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	stored := c
	q.s.charges[c.ChargeID] = &stored
	return nil
}

func (q memoryQuerier) GetCharge(ctx context.Context, chargeID uuid.UUID) (*types.Charge, error) {
	c, ok := q.s.charges[chargeID]
	if !ok {
		return nil, apperr.Validation("charge not found")
	}
	out := *c
	return &out, nil
}

func (q memoryQuerier) ListCharges(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Charge, error) {
	var all []types.Charge
	for _, c := range q.s.charges {
		if c.AccountID == accountID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (q memoryQuerier) FindCreditByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Credit, error) {
	if key == "" {
		return nil, nil
	}
	id, ok := q.s.creditIdemIndex[idemKey{accountID, key}]
	if !ok {
		return nil, nil
	}
	c := *q.s.credits[id]
	return &c, nil
}

func (q memoryQuerier) InsertCredit(ctx context.Context, c types.Credit) error {
	if c.AmountMinor <= 0 {
		return apperr.Validation("amount must be positive")
	}
	if c.IdempotencyKey != "" {
		k := idemKey{c.AccountID, c.IdempotencyKey}
		if _, exists := q.s.creditIdemIndex[k]; exists {
			return apperr.DataIntegrityViolation("duplicate idempotency key", nil)
		}
		q.s.creditIdemIndex[k] = c.CreditID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	stored := c
	q.s.credits[c.CreditID] = &stored
	return nil
}

func (q memoryQuerier) GetCredit(ctx context.Context, creditID uuid.UUID) (*types.Credit, error) {
	c, ok := q.s.credits[creditID]
	if !ok {
		return nil, apperr.Validation("credit not found")
	}
	out := *c
	return &out, nil
}

func (q memoryQuerier) ListCredits(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Credit, error) {
	var all []types.Credit
	for _, c := range q.s.credits {
		if c.AccountID == accountID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), nil
}

func (q memoryQuerier) GetProductInventory(ctx context.Context, accountID uuid.UUID, productType string) (*types.ProductInventory, error) {
	inv, ok := q.s.productInventory[productKey{accountID, productType}]
	if !ok {
		return nil, nil
	}
	out := *inv
	return &out, nil
}

func (q memoryQuerier) LockProductInventory(ctx context.Context, accountID uuid.UUID, productType string, seed ProductInventorySeed) (*types.ProductInventory, error) {
	k := productKey{accountID, productType}
	inv, ok := q.s.productInventory[k]
	if !ok {
		inv = &types.ProductInventory{
			AccountID:     accountID,
			ProductType:   productType,
			FreeRemaining: seed.FreeRemaining,
			PaidCredits:   seed.PaidCredits,
		}
		q.s.productInventory[k] = inv
	}
	out := *inv
	return &out, nil
}

func (q memoryQuerier) UpdateProductInventory(ctx context.Context, inv types.ProductInventory) error {
	if inv.FreeRemaining < 0 || inv.PaidCredits < 0 {
		return apperr.DataIntegrityViolation("product inventory invariant violated", nil)
	}
	k := productKey{inv.AccountID, inv.ProductType}
	existing, ok := q.s.productInventory[k]
	if !ok {
		return apperr.DataIntegrityViolation("product inventory row missing", nil)
	}
	existing.FreeRemaining = inv.FreeRemaining
	existing.PaidCredits = inv.PaidCredits
	existing.TotalUses = inv.TotalUses
	return nil
}

func (q memoryQuerier) InsertProductUsageLog(ctx context.Context, l types.ProductUsageLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	q.s.productUsageLogs = append(q.s.productUsageLogs, l)
	return nil
}

func (q memoryQuerier) FindPaymentByExternalID(ctx context.Context, provider, externalID string) (*types.PaymentRecord, error) {
	p, ok := q.s.payments[paymentKey{provider, externalID}]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (q memoryQuerier) InsertPayment(ctx context.Context, p types.PaymentRecord) error {
	k := paymentKey{p.Provider, p.ExternalID}
	if _, exists := q.s.payments[k]; exists {
		return nil
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := p
	q.s.payments[k] = &stored
	return nil
}

func (q memoryQuerier) UpdatePaymentStatus(ctx context.Context, provider, externalID string, status types.PaymentStatus) error {
	p, ok := q.s.payments[paymentKey{provider, externalID}]
	if !ok {
		return apperr.DataIntegrityViolation("payment record missing", nil)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (q memoryQuerier) MarkPaymentFulfilled(ctx context.Context, provider, externalID string, creditID uuid.UUID) error {
	p, ok := q.s.payments[paymentKey{provider, externalID}]
	if !ok {
		return apperr.DataIntegrityViolation("payment record missing", nil)
	}
	p.Status = types.PaymentSucceeded
	id := creditID
	p.FulfillingCreditID = &id
	p.UpdatedAt = time.Now()
	return nil
}

func (q memoryQuerier) InsertCreditCheck(ctx context.Context, c types.CreditCheck) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q.s.creditChecks = append(q.s.creditChecks, c)
	return nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
