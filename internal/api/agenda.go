package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imobdesk/server/internal/auth"
)

// agendaWindow parses the from/to query parameters, defaulting to the
// next 30 days
func agendaWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 30)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return from, to, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return from, to, false
		}
		to = parsed
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return from, to, false
	}
	return from, to, true
}

func (h *Handler) GetAppointments(c *gin.Context) {
	from, to, ok := agendaWindow(c)
	if !ok {
		return
	}

	appointments, err := h.db.GetAppointments(c.Request.Context(), auth.UserID(c), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get appointments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get appointments"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// SyncAgenda pulls the scheduling webhook and replaces the cached
// window for the caller
func (h *Handler) SyncAgenda(c *gin.Context) {
	if !h.agenda.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "agenda sync is not configured"})
		return
	}

	from, to, ok := agendaWindow(c)
	if !ok {
		return
	}

	userID := auth.UserID(c)
	appointments, err := h.agenda.Sync(c.Request.Context(), userID, c.Query("agenda"), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sync agenda")
		RecordGatewayError("agenda")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to sync agenda"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

type confirmationRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required"`
	Email         string `json:"email" binding:"required"`
}

// SendAppointmentConfirmation emails a visit confirmation to the client
func (h *Handler) SendAppointmentConfirmation(c *gin.Context) {
	if !h.mailer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email is not configured"})
		return
	}

	var req confirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointment_id and email are required"})
		return
	}

	userID := auth.UserID(c)
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(0, 3, 0)
	appointments, err := h.db.GetAppointments(c.Request.Context(), userID, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load appointments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load appointments"})
		return
	}

	for _, appointment := range appointments {
		if appointment.ID != req.AppointmentID {
			continue
		}

		brokerName := ""
		if user, err := h.db.GetUserByID(c.Request.Context(), userID); err == nil && user != nil {
			brokerName = user.Name
		}

		if err := h.mailer.SendAppointmentConfirmation(req.Email, appointment, brokerName); err != nil {
			h.logger.WithError(err).Error("Failed to send confirmation email")
			RecordGatewayError("smtp")
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send email"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sent": true})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
}
