package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
	"hotelrates/internal/domain/siteconfig"
)

const quoteKey = "pricing.quote"

var ErrRoomIDRequired = errors.New("pricing: room id is required")

// QuoteQuery prices a prospective stay. Dates are YYYY-MM-DD.
type QuoteQuery struct {
	RoomID   string
	CheckIn  string
	CheckOut string
}

func (q QuoteQuery) Key() string { return quoteKey }

func (q QuoteQuery) Validate() error {
	if strings.TrimSpace(q.RoomID) == "" {
		return ErrRoomIDRequired
	}
	if _, err := daterange.ParseISO(q.CheckIn, q.CheckOut); err != nil {
		return err
	}
	return nil
}

type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Cache      policies.QuoteCache
	Catalog    policies.CatalogRevision
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	dr, err := daterange.ParseISO(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}

	var rev uint64
	cacheKey := ""
	if h.Cache != nil && h.Catalog != nil {
		rev = h.Catalog.Revision()
		cacheKey = QuoteCacheKey(rev, q.RoomID, dr)
		cached, ok, err := h.Cache.Get(ctx, cacheKey)
		if err != nil {
			h.warn(ctx, "quote cache read failed", err)
		} else if ok {
			return cached, nil
		}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	room, err := unit.Rooms().ByID(execCtx, q.RoomID)
	if err != nil {
		if errors.Is(err, domainrooms.ErrRoomNotFound) {
			return dto.Quote{}, fmt.Errorf("%w: %s", domainpricing.ErrUnknownRoom, q.RoomID)
		}
		return dto.Quote{}, err
	}
	rules, err := unit.Rules().List(execCtx)
	if err != nil {
		return dto.Quote{}, err
	}
	breakdown, err := domainpricing.Calculate(room, dr.CheckIn, dr.CheckOut, rules)
	if err != nil {
		return dto.Quote{}, err
	}
	cfg, err := loadSiteConfig(execCtx, unit)
	if err != nil {
		return dto.Quote{}, err
	}

	in, out := dr.ISO()
	quote := dto.Quote{
		RoomID:   room.ID,
		CheckIn:  in,
		CheckOut: out,
		Currency: cfg.Currency,
		Price:    dto.MapBreakdown(breakdown),
		Revision: rev,
	}
	if cacheKey != "" {
		if err := h.Cache.Set(ctx, cacheKey, quote, h.CacheTTL); err != nil {
			h.warn(ctx, "quote cache write failed", err)
		}
	}
	return quote, nil
}

// QuoteCacheKey scopes a cached quote to one catalog revision.
func QuoteCacheKey(rev uint64, roomID string, dr daterange.DateRange) string {
	in, out := dr.ISO()
	return fmt.Sprintf("quote:%d:%s:%s:%s", rev, roomID, in, out)
}

func loadSiteConfig(ctx context.Context, unit uow.UnitOfWork) (siteconfig.Config, error) {
	stored, found, err := unit.SiteConfig().Load(ctx)
	if err != nil {
		return siteconfig.Config{}, err
	}
	if !found {
		return siteconfig.Default(), nil
	}
	return siteconfig.Merge(siteconfig.Default(), stored), nil
}

func (h *QuoteHandler) warn(ctx context.Context, msg string, err error) {
	if h.Logger != nil {
		h.Logger.WarnContext(ctx, msg, "error", err)
	}
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
