package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hotelrates/internal/app/uow"
)

// codeWriteConflict is returned when two transactions touch the same document.
const codeWriteConflict = 112

// mapWriteErr turns lost races into uow.ErrConflict so callers can retry.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(uow.ErrConflict, err)
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorCode(codeWriteConflict) || se.HasErrorLabel("TransientTransactionError") {
			return errors.Join(uow.ErrConflict, err)
		}
	}
	return err
}

func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}
