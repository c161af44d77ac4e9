package middleware

import (
	"context"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/uow"
)

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction gives each command its own unit of work unless ctx already
// carries one. The unit commits only when the handler returns no error.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			if _, ok := uow.FromContext(ctx); ok {
				return next.Dispatch(ctx, cmd)
			}
			var opts uow.TxOptions
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			ctx = uow.Inject(ctx, unit)
			defer func() {
				if err != nil {
					_ = unit.Rollback(ctx)
				}
			}()
			if res, err = next.Dispatch(ctx, cmd); err != nil {
				return nil, err
			}
			if err = unit.Commit(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

// OutboxFlush opens a record batch for the command and flushes the outbox
// once the inner stages, including the commit, have succeeded. It must sit
// outside Transaction.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx, _ = outbox.WithBatch(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
