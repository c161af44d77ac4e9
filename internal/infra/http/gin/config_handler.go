package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	siteconfigapp "hotelrates/internal/app/handlers/siteconfig"
	"hotelrates/internal/app/queries"
)

type ConfigHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h ConfigHandler) Get(c *gin.Context) {
	result, err := queries.Ask[siteconfigapp.GetSiteConfigQuery, dto.SiteConfig](c.Request.Context(), h.Queries, siteconfigapp.GetSiteConfigQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ConfigHandler) Update(c *gin.Context) {
	var req dto.SiteConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[siteconfigapp.UpdateSiteConfigCommand, *dto.SiteConfig](c.Request.Context(), h.Commands, siteconfigapp.UpdateSiteConfigCommand{Config: req})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
