// Package audit appends Credit-Check Audit Log rows. Writes are
// fire-and-forget: a failure here must never fail the credit-check or
// charge call it is auditing, so it is logged rather than propagated,
// mirroring the best-effort side-write pattern in
// libs/go/services/error_recovery_service.go.
package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cyphera/credit-ledger/internal/logger"
	"github.com/cyphera/credit-ledger/internal/store"
	"github.com/cyphera/credit-ledger/internal/types"
)

type Log struct {
	store store.Querier
}

func New(s store.Querier) *Log {
	return &Log{store: s}
}

// Record writes a CreditCheck row, logging (never returning) any failure.
func (l *Log) Record(ctx context.Context, check types.CreditCheck) {
	check.CheckID = uuid.New()
	if err := l.store.InsertCreditCheck(ctx, check); err != nil {
		logger.Error("failed to write credit-check audit row",
			zap.String("oauth_provider", check.Identity.OAuthProvider),
			zap.String("result", string(check.Result)),
			zap.Error(err))
	}
}
