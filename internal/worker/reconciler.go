package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/application/services"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

// Counts reports the outcomes of one reconciliation sweep. Transactions the
// processor does not recognize are marked invalid and counted in neither.
type Counts struct {
	Paid      int `json:"paid"`
	Cancelled int `json:"cancelled"`
}

// Reconciler is the polling fallback for missed webhooks: it sweeps all
// pending transactions, asks the processor for their authoritative status in
// one batched inquiry and applies the same engine transitions a webhook
// delivery would.
type Reconciler struct {
	store     application.RecordStore
	processor application.ProcessorClient
	engine    *services.Engine
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewReconciler(
	store application.RecordStore,
	processor application.ProcessorClient,
	engine *services.Engine,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		store:     store,
		processor: processor,
		engine:    engine,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting payment reconciler", "interval", r.interval, "batch_size", r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping payment reconciler")
			return
		case <-ticker.C:
			counts := r.ReconcilePending(ctx)
			if counts.Paid > 0 || counts.Cancelled > 0 {
				r.logger.Info("reconciliation sweep settled payments",
					"paid", counts.Paid, "cancelled", counts.Cancelled)
			}
		}
	}
}

// ReconcilePending executes a single sweep over all pending transactions.
// Per-order failures are isolated and logged; the sweep always runs to
// completion.
func (r *Reconciler) ReconcilePending(ctx context.Context) Counts {
	var counts Counts

	pending, err := r.store.ListPending(ctx)
	if err != nil {
		r.logger.Error("failed to list pending payments", "error", err)
		return counts
	}
	if len(pending) == 0 {
		return counts
	}

	r.logger.Info("reconciling pending payments", "count", len(pending))

	for start := 0; start < len(pending); start += r.chunkSize() {
		end := start + r.chunkSize()
		if end > len(pending) {
			end = len(pending)
		}
		r.reconcileChunk(ctx, pending[start:end], &counts)
	}

	return counts
}

func (r *Reconciler) chunkSize() int {
	if r.batchSize > 0 {
		return r.batchSize
	}
	return 100
}

func (r *Reconciler) reconcileChunk(ctx context.Context, pending []domain.PendingCheck, counts *Counts) {
	queries := make([]application.StatusQuery, 0, len(pending))
	for _, p := range pending {
		queries = append(queries, application.StatusQuery{TransactionID: p.TransactionID})
	}

	statuses, err := r.processor.CheckEntityPayments(ctx, queries)
	if err != nil {
		r.logger.Error("batched status inquiry failed", "error", err, "count", len(queries))
		return
	}

	for _, st := range statuses {
		r.applyStatus(ctx, st, counts)
	}
}

func (r *Reconciler) applyStatus(ctx context.Context, st application.PaymentStatus, counts *Counts) {
	switch {
	case st.Code == application.CodeNotFound && st.State == 0:
		// Processor has no such transaction: distinct from "still
		// pending", the record is dead and flagged for the operator.
		r.logger.Error("payment not found at processor, marking invalid", "transaction_id", st.TransactionID)
		if _, err := r.engine.MarkInvalid(ctx, st.TransactionID); err != nil {
			r.logger.Error("failed to mark invalid", "transaction_id", st.TransactionID, "error", err)
		}

	case st.State == 0 && st.Cancelled == 0:
		// Still pending on the processor side; next sweep will retry.

	case st.State == 1:
		out, err := r.engine.Confirm(ctx, st.TransactionID, st.AmountCents, st.Date)
		if err != nil {
			r.logger.Error("reconciliation confirm failed",
				"transaction_id", st.TransactionID, "error", err)
			return
		}
		if !out.NoOp && out.Applied == domain.StatePaid {
			counts.Paid++
		}

	default:
		out, err := r.engine.Cancel(ctx, st.TransactionID, domain.NoteCancelled)
		if err != nil {
			r.logger.Error("reconciliation cancel failed",
				"transaction_id", st.TransactionID, "error", err)
			return
		}
		if !out.NoOp && out.Applied == domain.StateCancelled {
			counts.Cancelled++
		}
	}
}
