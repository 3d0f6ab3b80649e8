package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/geo"
	"imobdesk/server/internal/models"
)

func (h *Handler) GetAllProperties(c *gin.Context) {
	status := c.Query("status")
	city := c.Query("city")

	properties, err := h.db.GetAllProperties(c.Request.Context(), auth.UserID(c), status, city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.db.GetPropertyByID(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

type propertyRequest struct {
	Title        string   `json:"title" binding:"required"`
	Street       string   `json:"street"`
	Neighborhood string   `json:"neighborhood"`
	PropertyType string   `json:"property_type"`
	City         string   `json:"city"`
	PostalCode   string   `json:"postal_code"`
	Price        int      `json:"price"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	Area         *int     `json:"area"`
	Status       string   `json:"status"`
	Description  string   `json:"description"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (r *propertyRequest) apply(p *models.Property) {
	p.Title = r.Title
	p.Street = r.Street
	p.Neighborhood = r.Neighborhood
	p.PropertyType = r.PropertyType
	p.City = r.City
	p.PostalCode = r.PostalCode
	p.Price = r.Price
	p.Bedrooms = r.Bedrooms
	p.Bathrooms = r.Bathrooms
	p.Area = r.Area
	p.Status = r.Status
	p.Description = r.Description
	p.Latitude = r.Latitude
	p.Longitude = r.Longitude
}

func validStatus(status string) bool {
	switch status {
	case models.PropertyAvailable, models.PropertyReserved, models.PropertySold:
		return true
	}
	return false
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == "" {
		req.Status = models.PropertyAvailable
	}
	if !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown property status"})
		return
	}

	now := time.Now()
	property := &models.Property{
		ID:        uuid.NewString(),
		UserID:    auth.UserID(c),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(property)

	if err := h.db.InsertProperty(c.Request.Context(), property); err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" && !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown property status"})
		return
	}

	property, err := h.db.GetPropertyByID(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	req.apply(property)
	property.UpdatedAt = time.Now()
	if err := h.db.UpdateProperty(c.Request.Context(), property); err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.db.DeleteProperty(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete property"})
		return
	}
	c.Status(http.StatusNoContent)
}

type addImageRequest struct {
	URL      string `json:"url" binding:"required"`
	Position int    `json:"position"`
}

func (h *Handler) AddPropertyImage(c *gin.Context) {
	var req addImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	img := &models.PropertyImage{
		ID:         uuid.NewString(),
		PropertyID: c.Param("id"),
		URL:        req.URL,
		Position:   req.Position,
	}
	if err := h.db.AddPropertyImage(c.Request.Context(), img); err != nil {
		h.logger.WithError(err).Error("Failed to add property image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add image"})
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *Handler) DeletePropertyImage(c *gin.Context) {
	if err := h.db.DeletePropertyImage(c.Request.Context(), c.Param("image_id")); err != nil {
		h.logger.WithError(err).Error("Failed to delete property image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete image"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPropertyStats(c *gin.Context) {
	stats, err := h.db.GetPropertyStats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get property stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPropertyMap returns listings inside the requested viewport as a
// GeoJSON feature collection, plus per-city centers for navigation
func (h *Handler) GetPropertyMap(c *gin.Context) {
	var bounds geo.Bounds
	if err := c.ShouldBindQuery(&bounds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewport"})
		return
	}

	properties, err := h.db.GetAllProperties(c.Request.Context(), auth.UserID(c), c.Query("status"), c.Query("city"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties for map")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get properties"})
		return
	}

	visible := geo.FilterByBounds(properties, bounds)
	c.JSON(http.StatusOK, gin.H{
		"features": geo.FeatureCollection(visible),
		"cities":   geo.CityCenters(properties),
	})
}
