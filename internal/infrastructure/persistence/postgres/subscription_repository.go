package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lusopay/paypay-gateway/internal/application"
)

// SubscriptionRepository persists the webhook subscriptions registered
// with the processor, one row per action.
type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

var _ application.SubscriptionStore = (*SubscriptionRepository)(nil)

func (r *SubscriptionRepository) Save(ctx context.Context, sub *application.WebhookSubscription) error {
	query := `
		INSERT INTO paypay_webhook (hooked, action, callback_url, merchant_nif, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (action) DO UPDATE
		SET hooked = EXCLUDED.hooked,
		    callback_url = EXCLUDED.callback_url,
		    merchant_nif = EXCLUDED.merchant_nif,
		    created_at = EXCLUDED.created_at
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sub.Hooked,
		sub.Action,
		sub.CallbackURL,
		sub.MerchantNIF,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save webhook subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) List(ctx context.Context) ([]application.WebhookSubscription, error) {
	query := `
		SELECT hooked, action, callback_url, merchant_nif, created_at
		FROM paypay_webhook
		ORDER BY action
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query webhook subscriptions: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (application.WebhookSubscription, error) {
		var s application.WebhookSubscription
		err := row.Scan(&s.Hooked, &s.Action, &s.CallbackURL, &s.MerchantNIF, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan webhook subscriptions: %w", err)
	}
	return results, nil
}
