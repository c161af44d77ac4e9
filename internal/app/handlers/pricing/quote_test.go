package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/services/catalog"
	"hotelrates/internal/app/uow"
	domainpricing "hotelrates/internal/domain/pricing"
	domainrooms "hotelrates/internal/domain/rooms"
	"hotelrates/internal/infra/storage/memory"
)

func seeded(t *testing.T) *memory.Factory {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory(memory.NewStore())
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Rooms().Save(ctx, &domainrooms.Room{ID: "std-1", Price: 100, Category: domainrooms.CategoryStandard}))
	require.NoError(t, unit.Commit(ctx))
	return factory
}

func TestQuoteAppliesWeekendRule(t *testing.T) {
	factory := seeded(t)
	ctx := context.Background()
	upsert := &UpsertRuleHandler{UoWFactory: factory}
	_, err := upsert.Handle(ctx, UpsertRuleCommand{Rule: dto.PricingRule{
		ID: "wknd", Name: "Weekend", Type: "weekend", AdjustmentType: "percentage",
		Value: 20, DaysOfWeek: []int{5, 6}, RoomCategories: []string{"all"}, IsActive: true,
	}})
	require.NoError(t, err)

	// 2024-06-07 is a Friday.
	q, err := (&QuoteHandler{UoWFactory: factory}).Handle(ctx, QuoteQuery{RoomID: "std-1", CheckIn: "2024-06-06", CheckOut: "2024-06-09"})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Price.TotalNights)
	assert.InDelta(t, 340.0, q.Price.FinalTotal, 1e-9)
	require.Len(t, q.Price.Adjustments, 1)
	assert.Equal(t, domainpricing.NightlyAdjustmentsLabel, q.Price.Adjustments[0].RuleName)
	assert.Equal(t, "USD", q.Currency)
}

func TestQuoteUsesCacheUntilCatalogChanges(t *testing.T) {
	factory := seeded(t)
	ctx := context.Background()
	cache := memory.NewQuoteCache()
	cat := &catalog.Service{}
	h := &QuoteHandler{UoWFactory: factory, Cache: cache, Catalog: cat}
	query := QuoteQuery{RoomID: "std-1", CheckIn: "2024-06-10", CheckOut: "2024-06-12"}

	first, err := h.Handle(ctx, query)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, first.Price.FinalTotal, 1e-9)

	_, err = (&UpsertRuleHandler{UoWFactory: factory}).Handle(ctx, UpsertRuleCommand{Rule: dto.PricingRule{
		ID: "promo", Name: "Promo", Type: "custom", AdjustmentType: "fixed_amount",
		Value: -25, RoomCategories: []string{"std-1"}, IsActive: true,
	}})
	require.NoError(t, err)

	stale, err := h.Handle(ctx, query)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, stale.Price.FinalTotal, 1e-9)

	cat.Bump()
	fresh, err := h.Handle(ctx, query)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, fresh.Price.FinalTotal, 1e-9)
	assert.Equal(t, uint64(1), fresh.Revision)
}

func TestQuoteErrors(t *testing.T) {
	factory := seeded(t)
	h := &QuoteHandler{UoWFactory: factory}
	_, err := h.Handle(context.Background(), QuoteQuery{RoomID: "ghost", CheckIn: "2024-06-10", CheckOut: "2024-06-12"})
	assert.ErrorIs(t, err, domainpricing.ErrUnknownRoom)

	assert.ErrorIs(t, QuoteQuery{CheckIn: "2024-06-10", CheckOut: "2024-06-12"}.Validate(), ErrRoomIDRequired)
	assert.Error(t, QuoteQuery{RoomID: "std-1", CheckIn: "2024-06-10", CheckOut: "2024-06-10"}.Validate())
}

func TestRuleAdmin(t *testing.T) {
	factory := seeded(t)
	ctx := context.Background()

	bad := UpsertRuleCommand{Rule: dto.PricingRule{ID: "bad", Type: "seasonal", AdjustmentType: "percentage", StartDate: "2024-09-01", EndDate: "2024-06-01"}}
	assert.ErrorIs(t, bad.Validate(), domainpricing.ErrInvalidRule)

	for _, r := range []dto.PricingRule{
		{ID: "a", Name: "Low", Type: "custom", AdjustmentType: "percentage", Priority: 1},
		{ID: "b", Name: "High", Type: "custom", AdjustmentType: "percentage", Priority: 9},
	} {
		_, err := (&UpsertRuleHandler{UoWFactory: factory}).Handle(ctx, UpsertRuleCommand{Rule: r})
		require.NoError(t, err)
	}
	list, err := (&ListRulesHandler{UoWFactory: factory}).Handle(ctx, ListRulesQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	_, err = (&DeleteRuleHandler{UoWFactory: factory}).Handle(ctx, DeleteRuleCommand{RuleID: "a"})
	require.NoError(t, err)
	_, err = (&DeleteRuleHandler{UoWFactory: factory}).Handle(ctx, DeleteRuleCommand{RuleID: "a"})
	assert.ErrorIs(t, err, domainpricing.ErrRuleNotFound)
}
