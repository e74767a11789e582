package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edunest/school-back/docs"
	"github.com/edunest/school-back/internal/auth"
	"github.com/edunest/school-back/internal/store"
)

// @title           School Management API
// @version         1.0
// @description     REST backend for the school management dashboards.
// @host            localhost:8000
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func SetupRouter(s *Server, users auth.UserStore) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		if err := s.ping(); err != nil {
			c.JSON(500, gin.H{"status": "db_ping_error"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	api.POST("/auth/login", auth.LoginHandler(s.cfg, users, s.activity))
	api.POST("/auth/refresh", auth.RefreshHandler(s.cfg))

	authed := api.Group("", auth.Middleware(s.cfg))
	authed.POST("/auth/logout", auth.LogoutHandler(s.activity))
	authed.GET("/activity-log", s.listActivity)
	authed.GET("/ws", s.ws)

	admin := auth.RequireRole("admin")

	for _, name := range []string{"student", "teacher", "class", "subject", "exam", "library", "event"} {
		ent := store.Entities[name]
		g := authed.Group("/" + ent.Plural)

		g.GET("/get-"+ent.Plural, s.listHandler(ent))
		g.GET("/get-"+ent.Name+"/:id", s.getHandler(ent))
		g.POST("/import-"+ent.Plural, admin, s.importHandler(ent))

		// Classes and exams carry notification side effects and get
		// dedicated mutation handlers below.
		switch name {
		case "class":
			g.POST("/create-"+ent.Name, s.createHandler(ent))
			g.PUT("/update-"+ent.Name+"/:id", s.updateClass)
			g.DELETE("/delete-"+ent.Name+"/:id", admin, s.deleteClass)
		case "exam":
			g.POST("/create-"+ent.Name, s.createExam)
			g.PUT("/update-"+ent.Name+"/:id", s.updateExam)
			g.DELETE("/delete-"+ent.Name+"/:id", admin, s.deleteExam)
		default:
			g.POST("/create-"+ent.Name, s.createHandler(ent))
			g.PUT("/update-"+ent.Name+"/:id", s.updateHandler(ent))
			g.DELETE("/delete-"+ent.Name+"/:id", admin, s.deleteHandler(ent))
		}
	}

	return r
}
