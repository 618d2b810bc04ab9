package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// RecordRepository persists payment records across the two processor
// tables: paypay_reference for Multibanco and paypay_payment for the
// redirect methods. It implements application.RecordStore.
type RecordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

var _ application.RecordStore = (*RecordRepository)(nil)

func (r *RecordRepository) Create(ctx context.Context, rec *domain.PaymentRecord) error {
	if rec.Method == domain.MethodMultibanco {
		query := `
			INSERT INTO paypay_reference (
				order_id, transaction_id, amount_cents, state,
				atm_entity, reference, expires_at, note_id, created_at, paid_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := r.db.Pool.Exec(ctx, query,
			rec.OrderID,
			rec.TransactionID,
			rec.AmountCents,
			int(rec.State),
			rec.ATMEntity,
			rec.Reference,
			rec.ExpiresAt,
			rec.NoteID,
			rec.CreatedAt,
			rec.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create reference record: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO paypay_payment (
			order_id, transaction_id, method, amount_cents, state,
			token, redirect_url, note_id, created_at, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		rec.OrderID,
		rec.TransactionID,
		string(rec.Method),
		rec.AmountCents,
		int(rec.State),
		rec.Token,
		rec.RedirectURL,
		rec.NoteID,
		rec.CreatedAt,
		rec.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// FindByTransactionID probes paypay_reference first and falls through to
// paypay_payment, matching the id resolution order used everywhere else.
func (r *RecordRepository) FindByTransactionID(ctx context.Context, transactionID int64) (*domain.PaymentRecord, error) {
	refQuery := `
		SELECT order_id, transaction_id, amount_cents, state,
		       atm_entity, reference, expires_at, note_id, created_at, paid_at
		FROM paypay_reference WHERE transaction_id = $1
	`
	rec, err := scanReference(r.db.Pool.QueryRow(ctx, refQuery, transactionID), transactionID)
	if err == nil {
		return rec, nil
	}
	if !domain.IsErrorCode(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	payQuery := `
		SELECT order_id, transaction_id, method, amount_cents, state,
		       token, redirect_url, note_id, created_at, paid_at
		FROM paypay_payment WHERE transaction_id = $1
	`
	return scanWebPayment(r.db.Pool.QueryRow(ctx, payQuery, transactionID), transactionID)
}

// UpdateStateIfPending applies a compare-and-set transition so that two
// concurrent channels (webhook and poll sweep) cannot both settle the
// same record.
func (r *RecordRepository) UpdateStateIfPending(ctx context.Context, transactionID int64, state domain.PaymentState) (bool, error) {
	refQuery := `UPDATE paypay_reference SET state = $1 WHERE transaction_id = $2 AND state = 0`
	tag, err := r.db.Pool.Exec(ctx, refQuery, int(state), transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to update reference state: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	payQuery := `UPDATE paypay_payment SET state = $1 WHERE transaction_id = $2 AND state = 0`
	tag, err = r.db.Pool.Exec(ctx, payQuery, int(state), transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to update payment state: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RecordRepository) UpdateStateByOrderIfPending(ctx context.Context, orderID string, state domain.PaymentState) (bool, error) {
	var affected int64

	refQuery := `UPDATE paypay_reference SET state = $1 WHERE order_id = $2 AND state = 0`
	tag, err := r.db.Pool.Exec(ctx, refQuery, int(state), orderID)
	if err != nil {
		return false, fmt.Errorf("failed to update reference state by order: %w", err)
	}
	affected += tag.RowsAffected()

	payQuery := `UPDATE paypay_payment SET state = $1 WHERE order_id = $2 AND state = 0`
	tag, err = r.db.Pool.Exec(ctx, payQuery, int(state), orderID)
	if err != nil {
		return false, fmt.Errorf("failed to update payment state by order: %w", err)
	}
	affected += tag.RowsAffected()

	return affected > 0, nil
}

func (r *RecordRepository) SetPaidAt(ctx context.Context, transactionID int64, paidAt time.Time) error {
	refQuery := `UPDATE paypay_reference SET paid_at = $1 WHERE transaction_id = $2`
	tag, err := r.db.Pool.Exec(ctx, refQuery, paidAt, transactionID)
	if err != nil {
		return fmt.Errorf("failed to set reference paid date: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	payQuery := `UPDATE paypay_payment SET paid_at = $1 WHERE transaction_id = $2`
	tag, err = r.db.Pool.Exec(ctx, payQuery, paidAt, transactionID)
	if err != nil {
		return fmt.Errorf("failed to set payment paid date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(transactionID)
	}
	return nil
}

// ListPending returns one pending check per order. An order retried through
// a second method still yields a single status inquiry.
func (r *RecordRepository) ListPending(ctx context.Context) ([]domain.PendingCheck, error) {
	query := `
		SELECT DISTINCT ON (order_id) order_id, transaction_id, method
		FROM (
			SELECT order_id, transaction_id, 'MULTIBANCO' AS method, created_at
			FROM paypay_reference WHERE state = 0
			UNION ALL
			SELECT order_id, transaction_id, method, created_at
			FROM paypay_payment WHERE state = 0
		) pending
		ORDER BY order_id, created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pending records: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PendingCheck, error) {
		var pc domain.PendingCheck
		var method string
		err := row.Scan(&pc.OrderID, &pc.TransactionID, &method)
		pc.Method = domain.Method(method)
		return pc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan pending records: %w", err)
	}
	return results, nil
}

func (r *RecordRepository) SetNoteID(ctx context.Context, orderID string, noteID *int64) error {
	refQuery := `UPDATE paypay_reference SET note_id = $1 WHERE order_id = $2`
	if _, err := r.db.Pool.Exec(ctx, refQuery, noteID, orderID); err != nil {
		return fmt.Errorf("failed to set reference note id: %w", err)
	}

	payQuery := `UPDATE paypay_payment SET note_id = $1 WHERE order_id = $2`
	if _, err := r.db.Pool.Exec(ctx, payQuery, noteID, orderID); err != nil {
		return fmt.Errorf("failed to set payment note id: %w", err)
	}
	return nil
}

func (r *RecordRepository) FindNoteIDByOrder(ctx context.Context, orderID string) (*int64, error) {
	query := `
		SELECT note_id FROM (
			SELECT note_id, created_at FROM paypay_reference WHERE order_id = $1
			UNION ALL
			SELECT note_id, created_at FROM paypay_payment WHERE order_id = $1
		) notes
		WHERE note_id IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var noteID *int64
	err := r.db.Pool.QueryRow(ctx, query, orderID).Scan(&noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find note id: %w", err)
	}
	return noteID, nil
}

// SetCurrentMethod replaces the order's payment-method marker. The marker
// records which method the customer last initiated through; only one is
// current per order.
func (r *RecordRepository) SetCurrentMethod(ctx context.Context, orderID string, method domain.Method) error {
	query := `
		INSERT INTO paypay_payment_type (order_id, method)
		VALUES ($1, $2)
		ON CONFLICT (order_id) DO UPDATE SET method = EXCLUDED.method, created_at = now()
	`
	if _, err := r.db.Pool.Exec(ctx, query, orderID, string(method)); err != nil {
		return fmt.Errorf("failed to set current method: %w", err)
	}
	return nil
}

func (r *RecordRepository) CurrentMethod(ctx context.Context, orderID string) (domain.Method, error) {
	query := `SELECT method FROM paypay_payment_type WHERE order_id = $1`

	var method string
	err := r.db.Pool.QueryRow(ctx, query, orderID).Scan(&method)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find current method: %w", err)
	}
	return domain.Method(method), nil
}

func scanReference(row pgx.Row, transactionID int64) (*domain.PaymentRecord, error) {
	var m ReferenceModel
	err := row.Scan(
		&m.OrderID, &m.TransactionID, &m.AmountCents, &m.State,
		&m.ATMEntity, &m.Reference, &m.ExpiresAt, &m.NoteID, &m.CreatedAt, &m.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(transactionID)
		}
		return nil, fmt.Errorf("failed to scan reference record: %w", err)
	}
	return referenceToDomain(m), nil
}

func scanWebPayment(row pgx.Row, transactionID int64) (*domain.PaymentRecord, error) {
	var m WebPaymentModel
	err := row.Scan(
		&m.OrderID, &m.TransactionID, &m.Method, &m.AmountCents, &m.State,
		&m.Token, &m.RedirectURL, &m.NoteID, &m.CreatedAt, &m.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(transactionID)
		}
		return nil, fmt.Errorf("failed to scan payment record: %w", err)
	}
	return webPaymentToDomain(m), nil
}
