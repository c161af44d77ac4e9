package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	pricingapp "hotelrates/internal/app/handlers/pricing"
	"hotelrates/internal/app/queries"
)

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
	q := pricingapp.QuoteQuery{RoomID: c.Param("id"), CheckIn: c.Query("check_in"), CheckOut: c.Query("check_out")}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) ListRules(c *gin.Context) {
	result, err := queries.Ask[pricingapp.ListRulesQuery, []dto.PricingRule](c.Request.Context(), h.Queries, pricingapp.ListRulesQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h PricingHandler) UpsertRule(c *gin.Context) {
	var req dto.PricingRule
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.Param("id")
	result, err := commands.Dispatch[pricingapp.UpsertRuleCommand, *dto.PricingRule](c.Request.Context(), h.Commands, pricingapp.UpsertRuleCommand{Rule: req})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) DeleteRule(c *gin.Context) {
	_, err := commands.Dispatch[pricingapp.DeleteRuleCommand, struct{}](c.Request.Context(), h.Commands, pricingapp.DeleteRuleCommand{RuleID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
