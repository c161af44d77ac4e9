package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "hotelrates/internal/app/outbox"
)

// Outbox delivers records in process. Records added under a command batch
// are delivered only when that command flushes; records added outside any
// batch go out with the next flush. Delivered keeps everything for
// inspection.
type Outbox struct {
	Logger *slog.Logger

	mu        sync.Mutex
	loose     []appoutbox.EventRecord
	delivered []appoutbox.EventRecord
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{Logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if b := appoutbox.BatchFrom(ctx); b != nil {
		b.Append(record)
		return nil
	}
	o.mu.Lock()
	o.loose = append(o.loose, record)
	o.mu.Unlock()
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	var batch []appoutbox.EventRecord
	if b := appoutbox.BatchFrom(ctx); b != nil {
		batch = b.Take()
	}
	o.mu.Lock()
	records := append(o.loose, batch...)
	o.loose = nil
	o.delivered = append(o.delivered, records...)
	o.mu.Unlock()

	if o.Logger != nil {
		for _, rec := range records {
			o.Logger.DebugContext(ctx, "event published", "event", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
		}
	}
	return nil
}

func (o *Outbox) Delivered() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.delivered...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
