package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/metrics"
)

// DeliveryResult is the outcome of one recipient's delivery attempt.
type DeliveryResult struct {
	ConnectionID string
	Err          error
}

// Gone reports whether this recipient's connection no longer exists at the
// transport, making its registry record stale.
func (r DeliveryResult) Gone() bool {
	return errors.Is(r.Err, domain.ErrConnectionGone)
}

// Report collects the per-recipient outcomes of one fanout.
type Report struct {
	Results []DeliveryResult
}

func (r Report) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return len(r.Results) - r.Delivered()
}

// Stale returns the connection ids whose delivery failed because the
// connection is gone. Callers may prune these from the registry.
func (r Report) Stale() []string {
	var ids []string
	for _, res := range r.Results {
		if res.Gone() {
			ids = append(ids, res.ConnectionID)
		}
	}
	return ids
}

// Fanout attempts delivery of data to every record through the sink. Each
// attempt is independent: one recipient's failure is logged and recorded but
// never aborts the batch, and there is no ordering guarantee between
// recipients. In-flight deliveries run to completion; the only shared state
// across attempts is the per-index result slot.
func Fanout(ctx context.Context, sink domain.DeliverySink, records []domain.ConnectionRecord, data []byte) Report {
	metrics.BroadcastsTotal.Inc()
	metrics.BroadcastRecipients.Observe(float64(len(records)))

	results := make([]DeliveryResult, len(records))

	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		go func(i int, connectionID string) {
			defer wg.Done()
			err := sink.Post(ctx, connectionID, data)
			results[i] = DeliveryResult{ConnectionID: connectionID, Err: err}

			switch {
			case err == nil:
				metrics.BroadcastDeliveriesTotal.WithLabelValues("delivered").Inc()
			case errors.Is(err, domain.ErrConnectionGone):
				metrics.BroadcastDeliveriesTotal.WithLabelValues("gone").Inc()
				slog.InfoContext(ctx, "Skipping stale connection", "connection_id", connectionID)
			default:
				metrics.BroadcastDeliveriesTotal.WithLabelValues("failed").Inc()
				slog.WarnContext(ctx, "Delivery failed", "connection_id", connectionID, "error", err)
			}
		}(i, record.ConnectionID)
	}
	wg.Wait()

	return Report{Results: results}
}
