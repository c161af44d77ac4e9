package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/uow"
)

// IdempotentCommand carries a client supplied Idempotency-Key. ResultPrototype
// returns a fresh pointer of the handler's result type for replays.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord is a remembered outcome. Class holds the message of the
// known error the failure matched, so a replay keeps its kind.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	Class      string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var (
	errMissingPrototype = errors.New("middleware: idempotent command has no result prototype")
	// ErrReplayedFailure marks a failure replayed from an earlier attempt.
	ErrReplayedFailure = errors.New("middleware: replayed failure")
)

// Retryable reports errors that must not be remembered, so the client can
// retry with the same key. Nil means DefaultRetryable.
type Retryable func(error) bool

// DefaultRetryable treats write conflicts and cancelled contexts as transient.
func DefaultRetryable(err error) bool {
	return errors.Is(err, uow.ErrConflict) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// replayedError is a remembered failure. It matches ErrReplayedFailure and
// the known error the original failure wrapped, if any.
type replayedError struct {
	msg   string
	class error
}

func (e *replayedError) Error() string { return e.msg }

func (e *replayedError) Unwrap() []error {
	if e.class == nil {
		return []error{ErrReplayedFailure}
	}
	return []error{ErrReplayedFailure, e.class}
}

// Idempotency replays the stored outcome of a command already handled under
// the same command key and idempotency key. Keys are scoped by command so one
// client key cannot replay another command's result. A replayed failure
// still matches whichever of classes the original failure matched.
func Idempotency(store IdempotencyStore, retryable Retryable, classes ...error) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if retryable == nil {
		retryable = DefaultRetryable
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(rec, idCmd, classes)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil && retryable(err) {
				return nil, err
			}
			rec = IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				rec.Error = err.Error()
				rec.Class = classify(err, classes)
				if saveErr := store.Save(ctx, rec); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				if rec.Payload, err = json.Marshal(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, rec); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func classify(err error, classes []error) string {
	for _, c := range classes {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return ""
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, classes []error) (any, error) {
	if rec.Error != "" {
		re := &replayedError{msg: rec.Error}
		for _, c := range classes {
			if rec.Class != "" && c.Error() == rec.Class {
				re.class = c
				break
			}
		}
		return nil, re
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := json.Unmarshal(rec.Payload, proto); err != nil {
		return nil, err
	}
	return proto, nil
}
