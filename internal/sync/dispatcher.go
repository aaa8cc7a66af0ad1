package sync

import (
	"context"
	"log/slog"

	"github.com/claude/liftlog/internal/engine"
	"github.com/claude/liftlog/internal/localstore"
)

// Dispatcher drains the local outbox to the remote server. Each queued
// operation targets a disjoint resource, so ordering between kinds is
// immaterial; within a kind the outbox preserves insertion order.
type Dispatcher struct {
	store  *localstore.Store
	client *Client
	log    *slog.Logger
}

// Compile-time check: *Dispatcher satisfies the engine's dispatch contract.
var _ engine.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher over the given store and client.
func NewDispatcher(store *localstore.Store, client *Client, log *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, client: client, log: log}
}

// Dispatch pushes pending operations and swallows failures: the local record
// is already durable, and anything not confirmed stays queued for the next
// Reconcile. Safe to run fire-and-forget after a completed workout.
func (d *Dispatcher) Dispatch(ctx context.Context) {
	ops, err := d.store.Pending(ctx, 0)
	if err != nil {
		d.log.Warn("reading outbox failed", "error", err)
		return
	}

	for _, op := range ops {
		if err := d.client.Send(op.Kind, op.Payload); err != nil {
			d.log.Warn("sync failed, leaving queued", "kind", op.Kind, "op_id", op.ID, "error", err)
			continue
		}
		if err := d.store.MarkDone(ctx, op.ID); err != nil {
			d.log.Warn("marking op done failed", "op_id", op.ID, "error", err)
		}
	}
}

// Reconcile replays every pending operation and reports how many were
// confirmed and how many remain. Run at login or from the sync binary; the
// server's upsert semantics make repeated replays idempotent.
func (d *Dispatcher) Reconcile(ctx context.Context) (sent, remaining int, err error) {
	ops, err := d.store.Pending(ctx, 0)
	if err != nil {
		return 0, 0, err
	}

	for _, op := range ops {
		if err := d.client.Send(op.Kind, op.Payload); err != nil {
			d.log.Warn("replay failed", "kind", op.Kind, "op_id", op.ID, "error", err)
			remaining++
			continue
		}
		if err := d.store.MarkDone(ctx, op.ID); err != nil {
			d.log.Warn("marking op done failed", "op_id", op.ID, "error", err)
			remaining++
			continue
		}
		sent++
	}

	return sent, remaining, nil
}
