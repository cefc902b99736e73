package main

import (
	"fmt"
	"log"
	"os"

	"customer-care-backend/config"
	"customer-care-backend/controllers"
	"customer-care-backend/models"
	"customer-care-backend/routes"
	"customer-care-backend/services"
	"customer-care-backend/storage"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Employee{},
		&models.Service{},
		&models.ServiceHistory{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := utils.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	blobs, err := storage.NewCloudinaryStore()
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = "customer-care/service-histories"
	}

	store := storage.NewEntityStore(db)
	attachments := services.NewAttachmentService(blobs, folder)
	histories := services.NewHistoryService(store, attachments)
	directory := services.NewDirectoryService(store)

	cleanup := services.NewCleanupService(store, blobs, folder)
	cleanup.StartScheduler()

	r := routes.SetupRouter(routes.Deps{
		Auth:      controllers.NewAuthController(db),
		Customers: controllers.NewCustomerController(store, directory),
		Employees: controllers.NewEmployeeController(store, directory),
		Services:  controllers.NewServiceController(store, directory),
		Histories: controllers.NewHistoryController(histories),
	})
	printRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
