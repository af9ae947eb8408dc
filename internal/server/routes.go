package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pantheonlabs/zeta/internal/autonomy"
	"github.com/pantheonlabs/zeta/internal/chat"
	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/integrations"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/pantheonlabs/zeta/internal/onboarding"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	router.GET("/healthz", handleHealth(opts.DB))

	api := router.Group("/api")
	api.POST("/projects", handleCreateProject(opts.DB))
	api.GET("/projects/:id", handleGetProject(opts.DB))
	api.POST("/projects/:id/chat", handleChat(opts.Pipeline))
	api.GET("/projects/:id/onboarding", handleOnboarding(opts.DB))
	api.POST("/projects/:id/plan", handlePlan(opts.Applier, opts.DefaultPolicy))
	api.GET("/projects/:id/events", handleEvents(opts.DB))
	api.GET("/projects/:id/calendar", handleCalendar(opts.DB))
	api.GET("/projects/:id/tasks", handleTasks(opts.DB))
	api.GET("/projects/:id/goals", handleGoals(opts.DB))
	api.POST("/projects/:id/integrations/telegram", handleConnectTelegram(opts.DB))
	api.POST("/projects/:id/integrations/github", handleConnectGitHub(opts.DB))

	// Generated files are served straight off the blob directory.
	if opts.Blobs != nil {
		router.Static("/files", opts.Blobs.Dir())
	}
}

// projectID parses the :id path parameter, writing a 400 on failure.
func projectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return 0, false
	}
	return uint(id), true
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleCreateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name    string `json:"name" binding:"required"`
			OwnerID string `json:"owner_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		project := models.Project{Name: req.Name, OwnerID: req.OwnerID}
		if err := db.Create(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

func handleGetProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var project models.Project
		if err := db.First(&project, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func handleChat(pipeline *chat.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var req struct {
			Message string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reply, err := pipeline.Handle(c.Request.Context(), id, req.Message)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reply": reply})
	}
}

func handleOnboarding(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		status, err := onboarding.Sync(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp := gin.H{"status": status}
		if step, open := onboarding.NextStep(status); open {
			resp["next_step"] = string(step)
			resp["prompt"] = onboarding.StepPrompt(step)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handlePlan(applier *autonomy.Applier, defaultPolicy autonomy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var req struct {
			Policy string        `json:"policy"`
			Plan   autonomy.Plan `json:"plan"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		policy := defaultPolicy
		if req.Policy != "" {
			var err error
			if policy, err = autonomy.ParsePolicy(req.Policy); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		applier.Apply(c.Request.Context(), id, req.Plan, policy)
		c.JSON(http.StatusAccepted, gin.H{"policy": string(policy)})
	}
}

func handleEvents(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		events, err := eventlog.Recent(db, id, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func handleCalendar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var items []models.CalendarItem
		if err := db.Where("project_id = ?", id).Order("date, id").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func handleTasks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var tasks []models.TaskItem
		if err := db.Where("project_id = ?", id).Order("id").Find(&tasks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func handleGoals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var goals []models.Goal
		query := db.Where("project_id = ?", id)
		if t := c.Query("type"); t != "" {
			query = query.Where("goal_type = ?", t)
		}
		if err := query.Order("id").Find(&goals).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, goals)
	}
}

func handleConnectTelegram(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var req struct {
			BotToken string `json:"bot_token" binding:"required"`
			ChatID   string `json:"chat_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := integrations.ConnectTelegram(c.Request.Context(), db, id, integrations.ConnectTelegramOpts{
			BotToken: req.BotToken,
			ChatID:   req.ChatID,
		})
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		status, _ := onboarding.Sync(db, id)
		c.JSON(http.StatusOK, gin.H{"connected": true, "onboarding_status": status})
	}
}

func handleConnectGitHub(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := projectID(c)
		if !ok {
			return
		}
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := integrations.ConnectGitHub(c.Request.Context(), db, id, req.Token); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"connected": true})
	}
}
