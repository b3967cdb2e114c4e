package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// pgQuerier implements Querier against any conn — a pool for
// non-transactional reads, or a transaction for the charge/credit
// protocols' mutating body.
type pgQuerier struct {
	db conn
}

func (q pgQuerier) FindAccountByIdentity(ctx context.Context, identity types.Identity) (*types.Account, error) {
	row := q.db.QueryRow(ctx, `
		SELECT account_id, oauth_provider, external_id, wa_id, tenant_id,
		       paid_credits, free_uses_remaining, balance_minor, currency,
		       plan_name, status, customer_email, marketing_opt_in,
		       marketing_opt_in_at, marketing_opt_in_source, user_role,
		       agent_id, total_uses, created_at, updated_at
		FROM accounts
		WHERE oauth_provider = $1 AND external_id = $2 AND tenant_id = $3`,
		identity.OAuthProvider, identity.ExternalID, identity.TenantID)
	acc, err := scanAccount(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("finding account by identity", err)
	}
	return acc, nil
}

func (q pgQuerier) UpsertAccount(ctx context.Context, identity types.Identity, seed AccountSeed) (*types.Account, error) {
	accountID := uuid.New()
	row := q.db.QueryRow(ctx, `
		INSERT INTO accounts (
			account_id, oauth_provider, external_id, wa_id, tenant_id,
			free_uses_remaining, currency, plan_name, customer_email, user_role, agent_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (oauth_provider, external_id, tenant_id) DO NOTHING
		RETURNING account_id, oauth_provider, external_id, wa_id, tenant_id,
		       paid_credits, free_uses_remaining, balance_minor, currency,
		       plan_name, status, customer_email, marketing_opt_in,
		       marketing_opt_in_at, marketing_opt_in_source, user_role,
		       agent_id, total_uses, created_at, updated_at`,
		accountID, identity.OAuthProvider, identity.ExternalID, identity.WAID, identity.TenantID,
		seed.FreeUsesRemaining, seed.Currency, seed.PlanName, seed.CustomerEmail, seed.UserRole, seed.AgentID)

	acc, err := scanAccount(row)
	if err == nil {
		return acc, nil
	}
	if err != pgx.ErrNoRows {
		return nil, apperr.ServiceUnavailable("inserting account", err)
	}

	// A conflict means the identity already exists; return the existing row.
	existing, err := q.FindAccountByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.DataIntegrityViolation("account upsert conflicted but no row found", nil)
	}
	return existing, nil
}

func (q pgQuerier) GetAccount(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	row := q.db.QueryRow(ctx, `
		SELECT account_id, oauth_provider, external_id, wa_id, tenant_id,
		       paid_credits, free_uses_remaining, balance_minor, currency,
		       plan_name, status, customer_email, marketing_opt_in,
		       marketing_opt_in_at, marketing_opt_in_source, user_role,
		       agent_id, total_uses, created_at, updated_at
		FROM accounts WHERE account_id = $1`, accountID)
	acc, err := scanAccount(row)
	if err == pgx.ErrNoRows {
		return nil, apperr.AccountNotFound("account not found")
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("fetching account", err)
	}
	return acc, nil
}

func (q pgQuerier) LockAccountForUpdate(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	row := q.db.QueryRow(ctx, `
		SELECT account_id, oauth_provider, external_id, wa_id, tenant_id,
		       paid_credits, free_uses_remaining, balance_minor, currency,
		       plan_name, status, customer_email, marketing_opt_in,
		       marketing_opt_in_at, marketing_opt_in_source, user_role,
		       agent_id, total_uses, created_at, updated_at
		FROM accounts WHERE account_id = $1 FOR UPDATE`, accountID)
	acc, err := scanAccount(row)
	if err == pgx.ErrNoRows {
		return nil, apperr.AccountNotFound("account not found")
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("locking account", err)
	}
	return acc, nil
}

func (q pgQuerier) UpdateAccountBalances(ctx context.Context, accountID uuid.UUID, freeUsesRemaining, paidCredits, balanceMinor, totalUses int64) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE accounts
		SET free_uses_remaining = $2, paid_credits = $3, balance_minor = $4, total_uses = $5, updated_at = now()
		WHERE account_id = $1`,
		accountID, freeUsesRemaining, paidCredits, balanceMinor, totalUses)
	if err != nil {
		return apperr.ServiceUnavailable("updating account balances", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.AccountNotFound("account not found")
	}
	return nil
}

func (q pgQuerier) FindChargeByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Charge, error) {
	if key == "" {
		return nil, nil
	}
	row := q.db.QueryRow(ctx, `
		SELECT charge_id, account_id, amount_minor, currency, description,
		       COALESCE(idempotency_key, ''), message_id, agent_id, channel_id,
		       request_id, product_type, balance_before, balance_after, created_at
		FROM charges WHERE account_id = $1 AND idempotency_key = $2`, accountID, key)
	charge, err := scanCharge(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("finding charge by idempotency key", err)
	}
	return charge, nil
}

func (q pgQuerier) InsertCharge(ctx context.Context, c types.Charge) error {
	var key *string
	if c.IdempotencyKey != "" {
		key = &c.IdempotencyKey
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO charges (
			charge_id, account_id, amount_minor, currency, description, idempotency_key,
			message_id, agent_id, channel_id, request_id, product_type, balance_before, balance_after
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ChargeID, c.AccountID, c.AmountMinor, c.Currency, c.Description, key,
		c.Metadata.MessageID, c.Metadata.AgentID, c.Metadata.ChannelID, c.Metadata.RequestID,
		c.ProductType, c.BalanceBefore, c.BalanceAfter)
	if err != nil {
		return apperr.ServiceUnavailable("inserting charge", err)
	}
	return nil
}

func (q pgQuerier) GetCharge(ctx context.Context, chargeID uuid.UUID) (*types.Charge, error) {
	row := q.db.QueryRow(ctx, `
		SELECT charge_id, account_id, amount_minor, currency, description,
		       COALESCE(idempotency_key, ''), message_id, agent_id, channel_id,
		       request_id, product_type, balance_before, balance_after, created_at
		FROM charges WHERE charge_id = $1`, chargeID)
	charge, err := scanCharge(row)
	if err == pgx.ErrNoRows {
		return nil, apperr.Validation("charge not found")
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("fetching charge", err)
	}
	return charge, nil
}

func (q pgQuerier) ListCharges(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Charge, error) {
	rows, err := q.db.Query(ctx, `
		SELECT charge_id, account_id, amount_minor, currency, description,
		       COALESCE(idempotency_key, ''), message_id, agent_id, channel_id,
		       request_id, product_type, balance_before, balance_after, created_at
		FROM charges WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, apperr.ServiceUnavailable("listing charges", err)
	}
	defer rows.Close()

	var out []types.Charge
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, apperr.ServiceUnavailable("scanning charge row", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q pgQuerier) FindCreditByIdempotency(ctx context.Context, accountID uuid.UUID, key string) (*types.Credit, error) {
	if key == "" {
		return nil, nil
	}
	row := q.db.QueryRow(ctx, `
		SELECT credit_id, account_id, amount_minor, currency, description, transaction_type,
		       COALESCE(external_transaction_id, ''), COALESCE(idempotency_key, ''),
		       balance_before, balance_after, created_at
		FROM credits WHERE account_id = $1 AND idempotency_key = $2`, accountID, key)
	credit, err := scanCredit(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("finding credit by idempotency key", err)
	}
	return credit, nil
}

func (q pgQuerier) InsertCredit(ctx context.Context, c types.Credit) error {
	var key, extID *string
	if c.IdempotencyKey != "" {
		key = &c.IdempotencyKey
	}
	if c.ExternalTransactionID != "" {
		extID = &c.ExternalTransactionID
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO credits (
			credit_id, account_id, amount_minor, currency, description, transaction_type,
			external_transaction_id, idempotency_key, balance_before, balance_after
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.CreditID, c.AccountID, c.AmountMinor, c.Currency, c.Description, c.TransactionType,
		extID, key, c.BalanceBefore, c.BalanceAfter)
	if err != nil {
		return apperr.ServiceUnavailable("inserting credit", err)
	}
	return nil
}

func (q pgQuerier) GetCredit(ctx context.Context, creditID uuid.UUID) (*types.Credit, error) {
	row := q.db.QueryRow(ctx, `
		SELECT credit_id, account_id, amount_minor, currency, description, transaction_type,
		       COALESCE(external_transaction_id, ''), COALESCE(idempotency_key, ''),
		       balance_before, balance_after, created_at
		FROM credits WHERE credit_id = $1`, creditID)
	credit, err := scanCredit(row)
	if err == pgx.ErrNoRows {
		return nil, apperr.Validation("credit not found")
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("fetching credit", err)
	}
	return credit, nil
}

func (q pgQuerier) ListCredits(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]types.Credit, error) {
	rows, err := q.db.Query(ctx, `
		SELECT credit_id, account_id, amount_minor, currency, description, transaction_type,
		       COALESCE(external_transaction_id, ''), COALESCE(idempotency_key, ''),
		       balance_before, balance_after, created_at
		FROM credits WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, apperr.ServiceUnavailable("listing credits", err)
	}
	defer rows.Close()

	var out []types.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, apperr.ServiceUnavailable("scanning credit row", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (q pgQuerier) GetProductInventory(ctx context.Context, accountID uuid.UUID, productType string) (*types.ProductInventory, error) {
	row := q.db.QueryRow(ctx, `
		SELECT account_id, product_type, free_remaining, paid_credits,
		       last_daily_refresh, total_uses
		FROM product_inventory WHERE account_id = $1 AND product_type = $2`,
		accountID, productType)
	inv, err := scanProductInventory(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("getting product inventory", err)
	}
	return inv, nil
}

func (q pgQuerier) LockProductInventory(ctx context.Context, accountID uuid.UUID, productType string, seed ProductInventorySeed) (*types.ProductInventory, error) {
	_, err := q.db.Exec(ctx, `
		INSERT INTO product_inventory (account_id, product_type, free_remaining, paid_credits)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, product_type) DO NOTHING`,
		accountID, productType, seed.FreeRemaining, seed.PaidCredits)
	if err != nil {
		return nil, apperr.ServiceUnavailable("seeding product inventory", err)
	}

	row := q.db.QueryRow(ctx, `
		SELECT account_id, product_type, free_remaining, paid_credits,
		       last_daily_refresh, total_uses
		FROM product_inventory WHERE account_id = $1 AND product_type = $2 FOR UPDATE`,
		accountID, productType)
	return scanProductInventory(row)
}

func (q pgQuerier) UpdateProductInventory(ctx context.Context, inv types.ProductInventory) error {
	_, err := q.db.Exec(ctx, `
		UPDATE product_inventory
		SET free_remaining = $3, paid_credits = $4, total_uses = $5
		WHERE account_id = $1 AND product_type = $2`,
		inv.AccountID, inv.ProductType, inv.FreeRemaining, inv.PaidCredits, inv.TotalUses)
	if err != nil {
		return apperr.ServiceUnavailable("updating product inventory", err)
	}
	return nil
}

func (q pgQuerier) InsertProductUsageLog(ctx context.Context, l types.ProductUsageLog) error {
	var key *string
	if l.IdempotencyKey != "" {
		key = &l.IdempotencyKey
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO product_usage_log (log_id, account_id, product_type, charge_id, amount_minor, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.LogID, l.AccountID, l.ProductType, l.ChargeID, l.AmountMinor, key)
	if err != nil {
		return apperr.ServiceUnavailable("inserting product usage log", err)
	}
	return nil
}

func (q pgQuerier) FindPaymentByExternalID(ctx context.Context, provider, externalID string) (*types.PaymentRecord, error) {
	row := q.db.QueryRow(ctx, `
		SELECT payment_id, provider, external_id, account_id, amount_minor, currency,
		       status, fulfilling_credit_id, created_at, updated_at
		FROM payment_records WHERE provider = $1 AND external_id = $2`, provider, externalID)
	p, err := scanPayment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.ServiceUnavailable("finding payment record", err)
	}
	return p, nil
}

func (q pgQuerier) InsertPayment(ctx context.Context, p types.PaymentRecord) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO payment_records (payment_id, provider, external_id, account_id, amount_minor, currency, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (provider, external_id) DO NOTHING`,
		p.PaymentID, p.Provider, p.ExternalID, p.AccountID, p.AmountMinor, p.Currency, p.Status)
	if err != nil {
		return apperr.ServiceUnavailable("inserting payment record", err)
	}
	return nil
}

func (q pgQuerier) UpdatePaymentStatus(ctx context.Context, provider, externalID string, status types.PaymentStatus) error {
	_, err := q.db.Exec(ctx, `
		UPDATE payment_records SET status = $3, updated_at = now()
		WHERE provider = $1 AND external_id = $2`, provider, externalID, status)
	if err != nil {
		return apperr.ServiceUnavailable("updating payment status", err)
	}
	return nil
}

func (q pgQuerier) MarkPaymentFulfilled(ctx context.Context, provider, externalID string, creditID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE payment_records
		SET status = $3, fulfilling_credit_id = $4, updated_at = now()
		WHERE provider = $1 AND external_id = $2`,
		provider, externalID, types.PaymentSucceeded, creditID)
	if err != nil {
		return apperr.ServiceUnavailable("marking payment fulfilled", err)
	}
	return nil
}

func (q pgQuerier) InsertCreditCheck(ctx context.Context, c types.CreditCheck) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO credit_checks (
			check_id, account_id, oauth_provider, external_id, wa_id, tenant_id,
			result, pool, denial_reason, agent_id, channel_id, request_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.CheckID, c.AccountID, c.Identity.OAuthProvider, c.Identity.ExternalID,
		c.Identity.WAID, c.Identity.TenantID, c.Result, c.Pool, c.DenialReason,
		c.AgentID, c.ChannelID, c.RequestID)
	if err != nil {
		return apperr.ServiceUnavailable("inserting credit check", err)
	}
	return nil
}

// row is satisfied by both pgx.Row (QueryRow) and pgx.Rows (Query, via Next/Scan).
type row interface {
	Scan(dest ...interface{}) error
}

func scanAccount(r row) (*types.Account, error) {
	var a types.Account
	var optInAt pgtype.Timestamptz
	err := r.Scan(
		&a.AccountID, &a.Identity.OAuthProvider, &a.Identity.ExternalID, &a.Identity.WAID, &a.Identity.TenantID,
		&a.PaidCredits, &a.FreeUsesRemaining, &a.BalanceMinor, &a.Currency,
		&a.PlanName, &a.Status, &a.CustomerEmail, &a.MarketingOptIn,
		&optInAt, &a.MarketingOptInSource, &a.UserRole, &a.AgentID, &a.TotalUses, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if optInAt.Valid {
		t := optInAt.Time
		a.MarketingOptInAt = &t
	}
	return &a, nil
}

func scanCharge(r row) (*types.Charge, error) {
	var c types.Charge
	err := r.Scan(
		&c.ChargeID, &c.AccountID, &c.AmountMinor, &c.Currency, &c.Description,
		&c.IdempotencyKey, &c.Metadata.MessageID, &c.Metadata.AgentID, &c.Metadata.ChannelID,
		&c.Metadata.RequestID, &c.ProductType, &c.BalanceBefore, &c.BalanceAfter, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCredit(r row) (*types.Credit, error) {
	var c types.Credit
	err := r.Scan(
		&c.CreditID, &c.AccountID, &c.AmountMinor, &c.Currency, &c.Description, &c.TransactionType,
		&c.ExternalTransactionID, &c.IdempotencyKey, &c.BalanceBefore, &c.BalanceAfter, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProductInventory(r row) (*types.ProductInventory, error) {
	var inv types.ProductInventory
	var lastRefresh pgtype.Timestamptz
	err := r.Scan(&inv.AccountID, &inv.ProductType, &inv.FreeRemaining, &inv.PaidCredits, &lastRefresh, &inv.TotalUses)
	if err != nil {
		return nil, err
	}
	if lastRefresh.Valid {
		inv.LastDailyRefresh = lastRefresh.Time
	}
	return &inv, nil
}

func scanPayment(r row) (*types.PaymentRecord, error) {
	var p types.PaymentRecord
	var creditID pgtype.UUID
	err := r.Scan(&p.PaymentID, &p.Provider, &p.ExternalID, &p.AccountID, &p.AmountMinor, &p.Currency,
		&p.Status, &creditID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if creditID.Valid {
		id := uuid.UUID(creditID.Bytes)
		p.FulfillingCreditID = &id
	}
	return &p, nil
}
