package routes

import (
	"os"
	"strings"

	"customer-care-backend/config"
	"customer-care-backend/controllers"
	"customer-care-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth      *controllers.AuthController
	Customers *controllers.CustomerController
	Employees *controllers.EmployeeController
	Services  *controllers.ServiceController
	Histories *controllers.HistoryController
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)

		auth.Use(utils.AuthMiddleware())
		auth.POST("/logout", deps.Auth.Logout)
		auth.GET("/me", deps.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		customers := api.Group("/customers")
		{
			customers.POST("", deps.Customers.Create)
			customers.GET("", deps.Customers.List)
			customers.GET("/:id", deps.Customers.Get)
			customers.PUT("/:id", deps.Customers.Update)
			customers.DELETE("/:id", deps.Customers.Delete)
		}

		employees := api.Group("/employees")
		{
			employees.POST("", deps.Employees.Create)
			employees.GET("", deps.Employees.List)
			employees.GET("/:id", deps.Employees.Get)
			employees.PUT("/:id", deps.Employees.Update)
			employees.DELETE("/:id", deps.Employees.Delete)
		}

		services := api.Group("/services")
		{
			services.POST("", deps.Services.Create)
			services.GET("", deps.Services.List)
			services.GET("/:id", deps.Services.Get)
			services.PUT("/:id", deps.Services.Update)
			services.DELETE("/:id", deps.Services.Delete)
		}
	}

	// Reads are public; mutations go through the access gate.
	histories := r.Group("/service-histories")
	{
		histories.GET("", deps.Histories.List)
		histories.GET("/:id", deps.Histories.Get)

		histories.Use(utils.AuthMiddleware())
		histories.POST("", deps.Histories.Create)
		histories.PUT("/:id", deps.Histories.Update)
		histories.DELETE("/:id", deps.Histories.Delete)
	}

	return r
}
