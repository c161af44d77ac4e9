package siteconfig

import (
	"context"
	"strings"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	"hotelrates/internal/domain/shared/events"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

const (
	getSiteConfigKey    = "siteconfig.get"
	updateSiteConfigKey = "siteconfig.update"
)

type GetSiteConfigQuery struct{}

func (GetSiteConfigQuery) Key() string { return getSiteConfigKey }

// GetSiteConfigHandler returns the built-in defaults merged with the stored
// overrides.
type GetSiteConfigHandler struct {
	UoWFactory uow.UoWFactory
	Defaults   *domainsiteconfig.Config
}

func (h *GetSiteConfigHandler) Handle(ctx context.Context, _ GetSiteConfigQuery) (dto.SiteConfig, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.SiteConfig{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	stored, found, err := unit.SiteConfig().Load(execCtx)
	if err != nil {
		return dto.SiteConfig{}, err
	}
	b := domainsiteconfig.NewBuilder(h.base())
	if found {
		b.With(stored)
	}
	return dto.MapSiteConfig(b.Build()), nil
}

func (h *GetSiteConfigHandler) base() domainsiteconfig.Config {
	if h.Defaults != nil {
		return *h.Defaults
	}
	return domainsiteconfig.Default()
}

// UpdateSiteConfigCommand merges Config into the stored overrides.
type UpdateSiteConfigCommand struct {
	auth.BackOffice
	Config dto.SiteConfig
}

func (UpdateSiteConfigCommand) Key() string { return updateSiteConfigKey }

func (c UpdateSiteConfigCommand) Validate() error {
	seen := make(map[string]bool, len(c.Config.Navigation))
	for _, e := range c.Config.Navigation {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return ErrNavKeyRequired
		}
		if seen[key] {
			return ErrDuplicateNavKey
		}
		seen[key] = true
	}
	return nil
}

type UpdateSiteConfigHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateSiteConfigHandler) Handle(ctx context.Context, cmd UpdateSiteConfigCommand) (*dto.SiteConfig, error) {
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	stored, _, err := unit.SiteConfig().Load(execCtx)
	if err != nil {
		return nil, err
	}
	now := support.Clock(h.Now)
	override := cmd.Config.ToDomain()
	override.UpdatedAt = now
	next := domainsiteconfig.Merge(stored, override)
	if err := unit.SiteConfig().Save(execCtx, next); err != nil {
		return nil, err
	}
	ev := domainsiteconfig.UpdatedEvent(now)
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	out := dto.MapSiteConfig(domainsiteconfig.Merge(domainsiteconfig.Default(), next))
	return &out, nil
}

var (
	_ queries.Handler[GetSiteConfigQuery, dto.SiteConfig]        = (*GetSiteConfigHandler)(nil)
	_ commands.Handler[UpdateSiteConfigCommand, *dto.SiteConfig] = (*UpdateSiteConfigHandler)(nil)
)
