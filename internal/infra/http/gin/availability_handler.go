package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/app/dto"
	availabilityapp "hotelrates/internal/app/handlers/availability"
	"hotelrates/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	q := availabilityapp.CheckAvailabilityQuery{RoomID: c.Param("id"), CheckIn: c.Query("check_in"), CheckOut: c.Query("check_out")}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	q := availabilityapp.RoomCalendarQuery{RoomID: c.Param("id"), From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[availabilityapp.RoomCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
