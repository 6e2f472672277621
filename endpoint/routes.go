package endpoint

import (
	"fmt"
	"net/http"

	"github.com/ariebrainware/clinic-therapy/middleware"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter builds the gin engine with the shared middleware chain and every
// API route registered.
func NewRouter(db *gorm.DB, logger *zap.Logger, appName string) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(),
		middleware.DatabaseMiddleware(db),
	)
	RegisterRoutes(r, appName)
	return r
}

// RegisterRoutes mounts the public, authenticated and admin-only routes.
func RegisterRoutes(r *gin.Engine, appName string) {
	RegisterValidators()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Welcome to %s!", appName)})
	})
	r.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), Login)
	r.GET("/token/validate", ValidateToken)

	auth := r.Group("/", middleware.ValidateLoginToken(), middleware.EndpointCallLogger())
	{
		auth.DELETE("/logout", Logout)
		auth.POST("/token/refresh", RefreshToken)
		auth.POST("/verify-password", VerifyPassword)
		auth.PATCH("/user", UpdateUser)

		auth.GET("/patient", ListPatients)
		auth.POST("/patient", CreatePatient)
		auth.GET("/patient/:id", GetPatientInfo)
		auth.PATCH("/patient/:id", UpdatePatient)
		auth.DELETE("/patient/:id", DeletePatient)

		auth.GET("/record", ListClinicalRecords)
		auth.POST("/record", CreateClinicalRecord)
		auth.GET("/record/:id", GetClinicalRecord)
		auth.PATCH("/record/:id", UpdateClinicalRecord)
		auth.POST("/record/:id/close", CloseClinicalRecord)

		auth.GET("/therapy-type", ListTherapyTypes)

		auth.GET("/therapy", ListTherapies)
		auth.POST("/therapy", CreateTherapy)
		auth.GET("/therapy/:id", GetTherapy)
		auth.PATCH("/therapy/:id", UpdateTherapy)
		auth.POST("/therapy/:id/sessions", ScheduleTherapySessions)
		auth.GET("/therapy/:id/progress", GetTherapyProgress)
		auth.GET("/therapy/:id/history", GetTherapyHistory)
		auth.POST("/therapy/:id/suspend", SuspendTherapy)
		auth.POST("/therapy/:id/resume", ResumeTherapy)

		auth.GET("/session", ListSessions)
		auth.GET("/session/:id", GetSession)
		auth.PATCH("/session/:id", UpdateSession)
		auth.POST("/session/:id/complete", CompleteSession)
		auth.POST("/session/:id/cancel", CancelSession)

		auth.GET("/dashboard/stats", GetDashboardStats)
		auth.GET("/dashboard/activity", GetDashboardActivity)

		auth.GET("/therapist", ListTherapists)
		auth.POST("/therapist", CreateTherapist)
		auth.PATCH("/therapist/:id", UpdateTherapist)
		auth.DELETE("/therapist/:id", DeleteTherapist)
	}

	admin := auth.Group("/user", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("", ListUsers)
		admin.POST("", CreateUser)
		admin.GET("/:id", GetUserInfo)
		admin.PATCH("/:id", UpdateUserByID)
		admin.DELETE("/:id", DeleteUser)
	}
}
