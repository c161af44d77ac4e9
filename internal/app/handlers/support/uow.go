package support

import (
	"context"
	"time"

	"hotelrates/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one.
// The returned cleanup is nil when the unit was reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	return begin(ctx, factory, uow.TxOptions{ReadOnly: true})
}

// BeginUnit is BeginReadOnlyUnit for writes; the caller commits through the
// returned commit func, and cleanup rolls back if commit was never reached.
func BeginUnit(ctx context.Context, factory uow.UoWFactory) (unit uow.UnitOfWork, execCtx context.Context, commit func() error, cleanup func(), err error) {
	unit, execCtx, cleanup, err = begin(ctx, factory, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, nil, err
	}
	if cleanup == nil {
		return unit, execCtx, func() error { return nil }, func() {}, nil
	}
	committed := false
	commit = func() error {
		if err := unit.Commit(execCtx); err != nil {
			return err
		}
		committed = true
		return nil
	}
	rollback := cleanup
	cleanup = func() {
		if !committed {
			rollback()
		}
	}
	return unit, execCtx, commit, cleanup, nil
}

func begin(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Inject(ctx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// Clock returns now() in UTC, defaulting to time.Now.
func Clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
