package pricing

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/handlers/support"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainpricing "hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/shared/events"
)

const (
	upsertRuleKey = "pricing.rules.upsert"
	deleteRuleKey = "pricing.rules.delete"
	listRulesKey  = "pricing.rules.list"
)

var ErrRuleIDRequired = errors.New("pricing: rule id is required")

type UpsertRuleCommand struct {
	auth.BackOffice
	Rule dto.PricingRule
}

func (c UpsertRuleCommand) Key() string { return upsertRuleKey }

func (c UpsertRuleCommand) Validate() error {
	if strings.TrimSpace(c.Rule.ID) == "" {
		return ErrRuleIDRequired
	}
	rule, err := c.Rule.ToDomain()
	if err != nil {
		return err
	}
	return rule.Validate()
}

type UpsertRuleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpsertRuleHandler) Handle(ctx context.Context, cmd UpsertRuleCommand) (*dto.PricingRule, error) {
	rule, err := cmd.Rule.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	now := support.Clock(h.Now)
	rule.UpdatedAt = now
	if err := unit.Rules().Save(execCtx, &rule); err != nil {
		return nil, err
	}
	ev := domainpricing.RuleEvent(domainpricing.EventRuleUpserted, rule.ID, now)
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}
	if err := commit(); err != nil {
		return nil, err
	}
	out := dto.MapRule(rule)
	return &out, nil
}

type DeleteRuleCommand struct {
	auth.BackOffice
	RuleID string
}

func (c DeleteRuleCommand) Key() string { return deleteRuleKey }

func (c DeleteRuleCommand) Validate() error {
	if strings.TrimSpace(c.RuleID) == "" {
		return ErrRuleIDRequired
	}
	return nil
}

type DeleteRuleHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *DeleteRuleHandler) Handle(ctx context.Context, cmd DeleteRuleCommand) (struct{}, error) {
	unit, execCtx, commit, cleanup, err := support.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return struct{}{}, err
	}
	defer cleanup()

	if err := unit.Rules().Delete(execCtx, cmd.RuleID); err != nil {
		return struct{}{}, err
	}
	ev := domainpricing.RuleEvent(domainpricing.EventRuleDeleted, cmd.RuleID, support.Clock(h.Now))
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, commit()
}

type ListRulesQuery struct {
	auth.BackOffice
}

func (q ListRulesQuery) Key() string { return listRulesKey }

type ListRulesHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle lists rules by descending priority, then name.
func (h *ListRulesHandler) Handle(ctx context.Context, _ ListRulesQuery) ([]dto.PricingRule, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rules, err := unit.Rules().List(execCtx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].Name < rules[j].Name
	})
	out := make([]dto.PricingRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, dto.MapRule(r))
	}
	return out, nil
}

var (
	_ commands.Handler[UpsertRuleCommand, *dto.PricingRule] = (*UpsertRuleHandler)(nil)
	_ commands.Handler[DeleteRuleCommand, struct{}]         = (*DeleteRuleHandler)(nil)
	_ queries.Handler[ListRulesQuery, []dto.PricingRule]    = (*ListRulesHandler)(nil)
)
