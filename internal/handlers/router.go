package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/config"
	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/session"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// HandlerManager wires every handler and owns route registration.
type HandlerManager struct {
	auth         *AuthHandler
	dashboard    *DashboardHandler
	course       *CourseHandler
	attempt      *AttemptHandler
	adminContent *AdminContentHandler
	adminPortal  *AdminPortalHandler

	sessionMw *SessionMiddleware
	services  services.ServiceManager
	logger    utils.Logger
}

func NewHandlerManager(sm services.ServiceManager, sessions *session.Store, cfg *config.Config, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		auth:         NewAuthHandler(sm.Auth(), cfg.SessionCookie, cfg.SessionTTL, logger),
		dashboard:    NewDashboardHandler(sm.Aggregator(), sm.Calendar(), logger),
		course:       NewCourseHandler(sm.Course(), logger),
		attempt:      NewAttemptHandler(sm.Attempt(), logger),
		adminContent: NewAdminContentHandler(sm.Course(), sm.Content(), sm.Export(), logger),
		adminPortal:  NewAdminPortalHandler(sm.Users(), sm.Config(), sm.Calendar(), sm.Stats(), logger),
		sessionMw:    NewSessionMiddleware(sessions, sm.Auth(), cfg.SessionCookie, logger),
		services:     sm,
		logger:       logger,
	}
}

// SetupRoutes registers the full route tree on the engine.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(gin.Recovery())

	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Login is the only endpoint reachable without a session.
	v1.POST("/auth/login", hm.auth.Login)

	authed := v1.Group("")
	authed.Use(hm.sessionMw.RequireSession())
	{
		authed.POST("/auth/logout", hm.auth.Logout)

		authed.GET("/dashboard", hm.dashboard.Dashboard)
		authed.GET("/events", hm.dashboard.ListEvents)

		authed.GET("/courses", hm.course.List)
		authed.GET("/courses/:code", hm.course.GetByCode)

		tests := authed.Group("/tests/:kind/:id")
		{
			tests.GET("", hm.attempt.Detail)
			tests.GET("/attempt", hm.attempt.AttemptPage)
			tests.POST("/attempt", hm.attempt.SaveAnswer)
			tests.GET("/finish", hm.attempt.Finish)
			tests.GET("/review", hm.attempt.Review)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(hm.sessionMw.RequireSession(), hm.sessionMw.RequireAdmin())
	{
		admin.GET("/stats", hm.adminPortal.PortalStats)

		admin.POST("/courses", hm.adminContent.CreateCourse)
		admin.PUT("/courses/:id", hm.adminContent.UpdateCourse)
		admin.DELETE("/courses/:id", hm.adminContent.DeleteCourse)

		admin.GET("/tests", hm.adminContent.ListAssessments)
		admin.POST("/tests", hm.adminContent.CreateAssessment)
		adminTests := admin.Group("/tests/:kind/:id")
		{
			adminTests.GET("", hm.adminContent.GetAssessment)
			adminTests.PUT("", hm.adminContent.UpdateAssessment)
			adminTests.DELETE("", hm.adminContent.DeleteAssessment)
			adminTests.PUT("/live", hm.adminContent.SetLive)

			adminTests.GET("/questions", hm.adminContent.ListQuestions)
			adminTests.POST("/questions", hm.adminContent.CreateQuestion)
			adminTests.POST("/questions/bulk", hm.adminContent.BulkImport)
			adminTests.GET("/export", hm.adminContent.ExportQuestions)
		}

		admin.PUT("/questions/:id", hm.adminContent.UpdateQuestion)
		admin.DELETE("/questions/:id", hm.adminContent.DeleteQuestion)

		admin.GET("/users", hm.adminPortal.ListUsers)
		admin.PUT("/users/:id/ban", hm.adminPortal.SetBanned)
		admin.DELETE("/users/:id", hm.adminPortal.DeleteUser)

		admin.GET("/config", hm.adminPortal.GetConfig)
		admin.PUT("/config", hm.adminPortal.UpdateConfig)

		admin.GET("/events", hm.adminPortal.ListEvents)
		admin.POST("/events", hm.adminPortal.CreateEvent)
		admin.PUT("/events/:id", hm.adminPortal.UpdateEvent)
		admin.DELETE("/events/:id", hm.adminPortal.DeleteEvent)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.services.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "portal-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
