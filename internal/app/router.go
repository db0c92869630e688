package app

import (
	"recruit_backend/docs"
	"recruit_backend/internal/middleware"
	"recruit_backend/internal/model"
	"recruit_backend/internal/util"
	"recruit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.NoRoute(util.NotFound)

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config, a.Cache))
	{
		authGroup.POST("/auth/logout", c.auth.Logout)

		// 候选人接口
		a.registerCandidateRoutes(authGroup, c)

		// 管理员接口
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerCandidateRoutes(rg *gin.RouterGroup, c *controllers) {
	candidateOnly := middleware.RoleMiddleware(model.Candidate)

	assessments := rg.Group("/assessments")
	{
		assessments.POST("/start/:templateId", candidateOnly, c.assessment.Start)
		assessments.GET("/:templateId/questions", middleware.RoleMiddleware(model.Candidate, model.Recruiter), c.assessment.GetQuestions)
		assessments.PUT("/attempts/:attemptId/answers/:questionId", candidateOnly, c.assessment.RecordAnswer)
		assessments.POST("/attempts/:attemptId/submit", candidateOnly, c.assessment.Submit)
		// 管理员可查看任意记录，候选人仅限本人
		assessments.GET("/attempts/:attemptId/results", c.assessment.GetResults)
	}

	rg.GET("/candidate/assessments/pending", candidateOnly, c.assessment.ListPending)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin/assessments")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/attempts/:attemptId/answers/:questionId/review", c.review.ReviewAnswer)
		admin.GET("/reviews", c.review.ListAwaitingReview)
		admin.GET("/results", c.results.ListResults)
	}

	candidates := rg.Group("/admin/candidates")
	candidates.Use(middleware.RoleMiddleware(model.Admin))
	{
		candidates.GET("/:candidateId/assessments", c.results.ListCandidateResults)
	}
}
