package uow

import (
	"context"

	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() domainrooms.Repository
	Bookings() domainbooking.Repository
	Rules() domainpricing.RuleRepository
	SiteConfig() domainsiteconfig.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
