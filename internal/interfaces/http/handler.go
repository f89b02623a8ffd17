package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loremaster/internal/access"
	"loremaster/internal/usecases"
)

// Usecases bundles everything the handlers call.
type Usecases struct {
	Auth       *usecases.AuthUsecase
	Campaigns  *usecases.CampaignUsecase
	Characters *usecases.CharacterUsecase
	Locations  *usecases.LocationUsecase
	Factions   *usecases.FactionUsecase
	WorldInfo  *usecases.WorldInfoUsecase
	Creatures  *usecases.CreatureUsecase
	Items      *usecases.ContentItemUsecase
	Quests     *usecases.QuestUsecase
	Sessions   *usecases.SessionUsecase
	Tags       *usecases.TagUsecase
	Images     *usecases.ImageUsecase
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	uc     Usecases
	health HealthChecker
	log    zerolog.Logger
}

func NewHandler(uc Usecases, health HealthChecker, log zerolog.Logger) *Handler {
	return &Handler{uc: uc, health: health, log: log}
}

// Limits configures the request guards installed by SetupRoutes.
type Limits struct {
	MaxUploadBytes int64
	UserLimiter    RateLimiter
	AuthLimiter    RateLimiter
}

func SetupRoutes(r *gin.Engine, h *Handler, m *Middleware, limits Limits) {
	// Apply Security Middleware
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(limits.MaxUploadBytes + 1<<20))
	r.Use(m.CORSMiddleware())

	r.GET("/api/health", h.Health)

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", m.RateLimitPerIP(limits.AuthLimiter), h.Register)
		authGroup.POST("/login", m.RateLimitPerIP(limits.AuthLimiter), h.Login)
		authGroup.GET("/me", m.AuthRequired(), h.Me)
		authGroup.PUT("/password", m.AuthRequired(), m.RateLimitPerUser(limits.AuthLimiter), h.ChangePassword)
	}

	// Protected Routes
	api := r.Group("/api")
	api.Use(m.AuthRequired())
	api.Use(m.RateLimitPerUser(limits.UserLimiter))
	{
		api.GET("/campaigns", h.ListCampaigns)
		api.POST("/campaigns", h.CreateCampaign)
	}

	cp := api.Group("/campaigns/:campaignId")
	cp.Use(m.CampaignAccess())
	dm := m.DMRequired()
	{
		cp.GET("", h.GetCampaign)
		cp.PUT("", dm, h.UpdateCampaign)
		cp.DELETE("", dm, h.DeleteCampaign)

		cp.GET("/participants", h.ListParticipants)
		cp.POST("/participants", dm, h.InviteParticipant)
		cp.PUT("/participants/:userId", dm, h.UpdateParticipant)
		cp.DELETE("/participants/:userId", dm, h.RemoveParticipant)

		// Characters and sessions enforce per-row rules in their usecases;
		// the other entity kinds are DM-only to write.
		registerEntity(cp, "/characters", h, h.uc.Characters)
		registerEntity(cp, "/sessions", h, h.uc.Sessions)
		registerEntity(cp, "/locations", h, h.uc.Locations, dm)
		registerEntity(cp, "/factions", h, h.uc.Factions, dm)
		registerEntity(cp, "/world-info", h, h.uc.WorldInfo, dm)
		registerEntity(cp, "/creatures", h, h.uc.Creatures, dm)
		registerEntity(cp, "/items", h, h.uc.Items, dm)
		registerEntity(cp, "/quests", h, h.uc.Quests, dm)

		cp.GET("/locations/:id/children", h.LocationChildren)

		cp.POST("/quests/:id/objectives", dm, h.AddObjective)
		cp.PUT("/quests/:id/objectives/:subId", dm, h.UpdateObjective)
		cp.DELETE("/quests/:id/objectives/:subId", dm, h.DeleteObjective)
		cp.POST("/quests/:id/milestones", dm, h.AddMilestone)
		cp.PUT("/quests/:id/milestones/:subId", dm, h.UpdateMilestone)
		cp.DELETE("/quests/:id/milestones/:subId", dm, h.DeleteMilestone)
		cp.POST("/quests/:id/links", dm, h.AddLink)
		cp.DELETE("/quests/:id/links/:subId", dm, h.DeleteLink)
		cp.PUT("/quests/:id/sessions", dm, h.SetQuestSessions)

		cp.GET("/sessions/:id/notes", h.ListNotes)
		cp.POST("/sessions/:id/notes", h.CreateNote)
		cp.PUT("/sessions/:id/notes/:noteId", h.UpdateNote)
		cp.DELETE("/sessions/:id/notes/:noteId", h.DeleteNote)

		cp.GET("/tags", h.ListTags)
		cp.POST("/tags", dm, h.CreateTag)
		cp.PUT("/tags/:id", dm, h.UpdateTag)
		cp.DELETE("/tags/:id", dm, h.DeleteTag)
		cp.GET("/entity-tags/:entityType/:entityId", h.GetEntityTags)
		cp.PUT("/entity-tags/:entityType/:entityId", dm, h.SetEntityTags)

		cp.GET("/images/:entityType/:entityId", h.ListImages)
		cp.POST("/images/:entityType/:entityId", dm, h.UploadImage(limits.MaxUploadBytes))
		cp.GET("/image-files/:imageId", h.GetImageFile)
		cp.DELETE("/image-files/:imageId", dm, h.DeleteImage)
	}
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.health.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	respondError(c, h.log, err)
}

// viewer returns the Viewer installed by CampaignAccess.
func (h *Handler) viewer(c *gin.Context) access.Viewer {
	v, _ := viewerFrom(c)
	return v
}

func (h *Handler) identity(c *gin.Context) access.Identity {
	id, _ := identityFrom(c)
	return id
}
