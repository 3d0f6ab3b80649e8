package api

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imobdesk/server/config"
	"imobdesk/server/internal/agenda"
	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/contracts"
	"imobdesk/server/internal/database"
	"imobdesk/server/internal/intake"
	"imobdesk/server/internal/leadstore"
	"imobdesk/server/internal/mail"
	"imobdesk/server/internal/models"
	"imobdesk/server/internal/whatsapp"
)

type Handler struct {
	db        *database.Database
	cfg       *config.Config
	logger    *logrus.Logger
	stores    *leadstore.Manager
	agenda    *agenda.Service
	contracts *contracts.Service
	whatsapp  *whatsapp.Service
	intake    *intake.BatchProcessor
	mailer    *mail.Sender
}

func NewHandler(db *database.Database, cfg *config.Config, logger *logrus.Logger, stores *leadstore.Manager, processor *intake.BatchProcessor, agendaService *agenda.Service, whatsappService *whatsapp.Service) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:        db,
		cfg:       cfg,
		logger:    logger,
		stores:    stores,
		agenda:    agendaService,
		contracts: contracts.NewService(db, logger),
		whatsapp:  whatsappService,
		intake:    processor,
		mailer:    mail.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		// Same response for unknown email and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	ttl := time.Duration(h.cfg.TokenTTLHours) * time.Hour
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, ttl)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type createUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
	Password   string `json:"password" binding:"required"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleManager && req.Role != models.RoleBroker {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user := &models.UserProfile{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := h.db.InsertUser(c.Request.Context(), user); err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.db.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetFunnelStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stages":  config.StageNames(),
		"default": config.DefaultStage,
	})
}
