package mongo

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

var (
	ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")
	ErrReadOnly                = errors.New("mongo: write in read-only unit of work")
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database
}

// Begin starts a session with a transaction. Read-only units use snapshot
// reads so a listing and the checks made on it see one consistent state.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{db: f.DB, session: session, readOnly: opts.ReadOnly}, nil
}

type Unit struct {
	db       *mongo.Database
	session  mongo.Session
	readOnly bool

	mu   sync.Mutex
	done bool
}

func (u *Unit) Rooms() domainrooms.Repository {
	return roomRepository{col: u.db.Collection(colRooms), readOnly: u.readOnly}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return bookingRepository{col: u.db.Collection(colBookings), locks: u.db.Collection(colRoomLocks), readOnly: u.readOnly}
}

func (u *Unit) Rules() domainpricing.RuleRepository {
	return ruleRepository{col: u.db.Collection(colRules), readOnly: u.readOnly}
}

func (u *Unit) SiteConfig() domainsiteconfig.Repository {
	return siteConfigRepository{col: u.db.Collection(colSiteConfig), readOnly: u.readOnly}
}

func (u *Unit) Commit(ctx context.Context) error {
	if !u.finish() {
		return nil
	}
	defer u.session.EndSession(ctx)
	return mapWriteErr(u.session.CommitTransaction(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	if !u.finish() {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

func (u *Unit) finish() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return false
	}
	u.done = true
	return true
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
