package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/models"
)

func SetupRoutes(router *gin.Engine, handler *Handler, jwtSecret string) {
	router.Use(Metrics())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/login", handler.Login)

	authed := api.Group("")
	authed.Use(auth.Middleware(jwtSecret))
	{
		authed.GET("/me", handler.GetCurrentUser)
		authed.GET("/stages", handler.GetFunnelStages)

		authed.GET("/leads", handler.GetLeads)
		authed.POST("/leads", handler.CreateLead)
		authed.PATCH("/leads/:id", handler.UpdateLead)
		authed.PUT("/leads/:id/stage", handler.MoveLeadStage)
		authed.DELETE("/leads/:id", handler.DeleteLead)
		authed.POST("/leads/intake", handler.IntakeLeads)
		authed.POST("/leads/import", handler.ImportLeads)

		authed.GET("/properties", handler.GetAllProperties)
		authed.GET("/properties/map", handler.GetPropertyMap)
		authed.GET("/properties/:id", handler.GetProperty)
		authed.POST("/properties", handler.CreateProperty)
		authed.PUT("/properties/:id", handler.UpdateProperty)
		authed.DELETE("/properties/:id", handler.DeleteProperty)
		authed.POST("/properties/:id/images", handler.AddPropertyImage)
		authed.DELETE("/properties/:id/images/:image_id", handler.DeletePropertyImage)
		authed.GET("/stats", handler.GetPropertyStats)

		authed.GET("/appointments", handler.GetAppointments)
		authed.POST("/appointments/sync", handler.SyncAgenda)
		authed.POST("/appointments/confirmation", handler.SendAppointmentConfirmation)

		authed.GET("/contracts", handler.ListContracts)
		authed.POST("/contracts", handler.GenerateContract)
		authed.PUT("/contracts/:id/status", handler.UpdateContractStatus)
		authed.DELETE("/contracts/:id", handler.DeleteContract)

		authed.GET("/whatsapp", handler.GetWhatsAppInstance)
		authed.POST("/whatsapp", handler.CreateWhatsAppInstance)
		authed.GET("/whatsapp/qrcode", handler.GetWhatsAppQRCode)
		authed.GET("/whatsapp/status", handler.GetWhatsAppStatus)
		authed.DELETE("/whatsapp", handler.DisconnectWhatsApp)
		authed.POST("/whatsapp/messages", handler.SendWhatsAppMessage)

		authed.GET("/reports/pipeline", handler.GetPipelineReport)
		authed.GET("/reports/pipeline/export", handler.ExportPipelineXLSX)
	}

	// Template management and user administration are restricted
	managers := authed.Group("")
	managers.Use(auth.RequireRole(models.RoleManager))
	{
		managers.GET("/contract-templates", handler.ListContractTemplates)
		managers.POST("/contract-templates", handler.UploadContractTemplate)
		managers.DELETE("/contract-templates/:id", handler.DeleteContractTemplate)
	}

	admins := authed.Group("")
	admins.Use(auth.RequireRole())
	{
		admins.GET("/users", handler.ListUsers)
		admins.POST("/users", handler.CreateUser)
	}
}
