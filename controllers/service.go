package controllers

import (
	"net/http"

	"customer-care-backend/models"
	"customer-care-backend/services"
	"customer-care-backend/storage"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
)

type ServiceController struct {
	store     *storage.EntityStore
	directory *services.DirectoryService
}

func NewServiceController(store *storage.EntityStore, directory *services.DirectoryService) *ServiceController {
	return &ServiceController{store: store, directory: directory}
}

type CreateServiceInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"isActive"`
}

type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"isActive"`
}

func (ctl *ServiceController) Create(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Price != nil && *input.Price < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	if taken, err := ctl.store.ServiceNameExists(c.Request.Context(), input.Name, 0); err != nil {
		utils.RespondWithServiceError(c, err, "Database error")
		return
	} else if taken {
		utils.RespondWithError(c, http.StatusBadRequest, "A service with this name already exists")
		return
	}

	service := models.Service{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := ctl.store.Create(c.Request.Context(), &service); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": service, "message": "Service created successfully"})
}

func (ctl *ServiceController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var isActive *bool
	if value := c.Query("isActive"); value != "" {
		active := value == "true"
		isActive = &active
	}

	services, total, err := ctl.store.ListServices(c.Request.Context(), c.Query("search"), isActive, page, limit)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       services,
		"pagination": paginationOf(total, page, limit),
	})
}

func (ctl *ServiceController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	service, err := ctl.store.FindService(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": service})
}

func (ctl *ServiceController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service, err := ctl.store.FindService(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve service")
		return
	}

	if input.Name != nil {
		if taken, err := ctl.store.ServiceNameExists(c.Request.Context(), *input.Name, service.ID); err != nil {
			utils.RespondWithServiceError(c, err, "Database error")
			return
		} else if taken {
			utils.RespondWithError(c, http.StatusBadRequest, "Another service with this name already exists")
			return
		}
		service.Name = *input.Name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		service.Price = *input.Price
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := ctl.store.Save(c.Request.Context(), service); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": service, "message": "Service updated successfully"})
}

// Delete is blocked while service history rows still reference the service.
func (ctl *ServiceController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.directory.DeleteService(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to delete service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Service deleted successfully"})
}
