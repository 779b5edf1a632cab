package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
	"github.com/beesaferoot/rental-engine/internal/property"
	"github.com/beesaferoot/rental-engine/internal/reservation"
)

// POST /auth/register
func (g *Gateway) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, bindError(err))
		return
	}
	var role models.Role
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			g.abortWithError(c, apperr.InvalidInput("%v", err))
			return
		}
		role = parsed
	}
	session, err := g.auth.Register(c.Request.Context(), auth.RegisterRequest{
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSession(session))
}

// POST /auth/login
func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, bindError(err))
		return
	}
	session, err := g.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSession(session))
}

// GET /auth/me
func (g *Gateway) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUser(userFrom(c)))
}

// GET /properties?status=...&q=...
func (g *Gateway) listProperties(c *gin.Context) {
	list, err := g.properties.List(c.Request.Context(), c.Query("status"), c.Query("q"))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProperties(list))
}

// GET /properties/my
func (g *Gateway) listMyProperties(c *gin.Context) {
	list, err := g.properties.ListMine(c.Request.Context(), mustCaller(c))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProperties(list))
}

// GET /properties/:id
func (g *Gateway) getProperty(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	p, err := g.properties.Get(c.Request.Context(), id)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProperty(p))
}

// POST /properties
func (g *Gateway) createProperty(c *gin.Context) {
	in, ok := g.bindProperty(c)
	if !ok {
		return
	}
	p, err := g.properties.Create(c.Request.Context(), mustCaller(c), in)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProperty(p))
}

// PUT /properties/:id
func (g *Gateway) updateProperty(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	in, ok := g.bindProperty(c)
	if !ok {
		return
	}
	p, err := g.properties.Update(c.Request.Context(), mustCaller(c), id, in)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProperty(p))
}

// DELETE /properties/:id
func (g *Gateway) deleteProperty(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	if err := g.properties.Delete(c.Request.Context(), mustCaller(c), id); err != nil {
		g.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /properties/:id/status
func (g *Gateway) setPropertyStatus(c *gin.Context) {
	id, ok := g.idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, bindError(err))
		return
	}
	status, err := models.ParsePropertyStatus(req.Status)
	if err != nil {
		g.abortWithError(c, apperr.InvalidInput("%v", err))
		return
	}
	p, err := g.properties.SetStatus(c.Request.Context(), mustCaller(c), id, status)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProperty(p))
}

// POST /rentals
func (g *Gateway) createRental(c *gin.Context) {
	caller := mustCaller(c)
	ctx := c.Request.Context()
	if err := policy.Check(ctx, g.logger, caller, policy.ActionCreateBooking, policy.NoOwner); err != nil {
		g.abortWithError(c, err)
		return
	}
	var req rentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, bindError(err))
		return
	}
	// Both dates passed the isodate tag.
	start, _ := models.ParseDate(req.StartDate)
	end, _ := models.ParseDate(req.EndDate)

	booking, err := g.reservations.CreateBooking(ctx, caller, reservation.Request{
		PropertyID: req.PropertyID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBooking(booking))
}

// GET /rentals/my-rentals
func (g *Gateway) myRentals(c *gin.Context) {
	caller := mustCaller(c)
	ctx := c.Request.Context()
	if err := policy.Check(ctx, g.logger, caller, policy.ActionListOwnBookings, policy.NoOwner); err != nil {
		g.abortWithError(c, err)
		return
	}
	list, err := g.reservations.ListForRenter(ctx, caller)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookings(list))
}

// GET /rentals/property/:propertyId
func (g *Gateway) propertyRentals(c *gin.Context) {
	id, ok := g.idParam(c, "propertyId")
	if !ok {
		return
	}
	list, err := g.reservations.ListForProperty(c.Request.Context(), mustCaller(c), id)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookings(list))
}

func (g *Gateway) bindProperty(c *gin.Context) (property.Input, bool) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, bindError(err))
		return property.Input{}, false
	}
	return property.Input{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		PricePerNight: req.PricePerNight,
		Images:        req.Images,
	}, true
}

func (g *Gateway) idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		g.abortWithError(c, apperr.InvalidInput("%s must be a positive integer", name))
		return 0, false
	}
	return uint(id), true
}
