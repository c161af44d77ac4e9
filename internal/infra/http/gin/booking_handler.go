package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	bookingapp "hotelrates/internal/app/handlers/booking"
	"hotelrates/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	RoomID     string `json:"room_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	Guests     int    `json:"guests"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		RoomID:          req.RoomID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		Guests:          req.Guests,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) ListByRoom(c *gin.Context) {
	q := bookingapp.ListRoomBookingsQuery{RoomID: c.Param("id")}
	result, err := queries.Ask[bookingapp.ListRoomBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	dispatchTransition(c, h.Commands, bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason})
}

func (h BookingHandler) Arrive(c *gin.Context) {
	dispatchTransition(c, h.Commands, bookingapp.MarkArrivedCommand{BookingID: c.Param("id")})
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	dispatchTransition(c, h.Commands, bookingapp.CheckOutBookingCommand{BookingID: c.Param("id")})
}

type markPaidRequest struct {
	Reference string `json:"reference"`
}

// Paid is called by the payment provider webhook relay.
func (h BookingHandler) Paid(c *gin.Context) {
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dispatchTransition(c, h.Commands, bookingapp.MarkPaidCommand{
		BookingID:       c.Param("id"),
		Reference:       req.Reference,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	})
}

func dispatchTransition[C commands.Command](c *gin.Context, bus commands.Bus, cmd C) {
	result, err := commands.Dispatch[C, *dto.Booking](c.Request.Context(), bus, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
