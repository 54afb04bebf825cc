package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plantsforlife/storefront/internal/auth"
	"github.com/plantsforlife/storefront/internal/profile"
	"github.com/plantsforlife/storefront/internal/validation"
)

func (d *deps) getProfile(c *gin.Context) {
	id, _ := auth.FromContext(c)
	p, err := d.profiles.Get(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (d *deps) saveProfile(c *gin.Context) {
	id, _ := auth.FromContext(c)
	var req validation.ProfileRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}
	p := profile.Profile{
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}
	if err := d.profiles.Save(c.Request.Context(), id.UserID, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
