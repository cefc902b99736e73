package controllers

import (
	"net/http"

	"customer-care-backend/models"
	"customer-care-backend/services"
	"customer-care-backend/storage"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
)

type EmployeeController struct {
	store     *storage.EntityStore
	directory *services.DirectoryService
}

func NewEmployeeController(store *storage.EntityStore, directory *services.DirectoryService) *EmployeeController {
	return &EmployeeController{store: store, directory: directory}
}

type CreateEmployeeInput struct {
	FullName string  `json:"fullName" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email"`
	Address  string  `json:"address"`
	Position string  `json:"position"`
	Notes    string  `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

type UpdateEmployeeInput struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Position *string `json:"position"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

func (ctl *EmployeeController) Create(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if taken, err := ctl.store.EmployeePhoneExists(c.Request.Context(), input.Phone, 0); err != nil {
		utils.RespondWithServiceError(c, err, "Database error")
		return
	} else if taken {
		utils.RespondWithError(c, http.StatusBadRequest, "An employee with this phone number already exists")
		return
	}

	if input.Email != nil {
		if !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		if taken, err := ctl.store.EmployeeEmailExists(c.Request.Context(), *input.Email, 0); err != nil {
			utils.RespondWithServiceError(c, err, "Database error")
			return
		} else if taken {
			utils.RespondWithError(c, http.StatusBadRequest, "An employee with this email already exists")
			return
		}
	}

	employee := models.Employee{
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		Position: input.Position,
		Notes:    input.Notes,
		IsActive: true,
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := ctl.store.Create(c.Request.Context(), &employee); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": employee, "message": "Employee created successfully"})
}

func (ctl *EmployeeController) List(c *gin.Context) {
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

	employees, total, err := ctl.store.ListEmployees(c.Request.Context(), c.Query("search"), isActive, page, limit)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       employees,
		"pagination": paginationOf(total, page, limit),
	})
}

func (ctl *EmployeeController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	employee, err := ctl.store.FindEmployee(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": employee})
}

func (ctl *EmployeeController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	employee, err := ctl.store.FindEmployee(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve employee")
		return
	}

	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		if taken, err := ctl.store.EmployeePhoneExists(c.Request.Context(), *input.Phone, employee.ID); err != nil {
			utils.RespondWithServiceError(c, err, "Database error")
			return
		} else if taken {
			utils.RespondWithError(c, http.StatusBadRequest, "Another employee with this phone number already exists")
			return
		}
		employee.Phone = *input.Phone
	}
	if input.Email != nil {
		if !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		if taken, err := ctl.store.EmployeeEmailExists(c.Request.Context(), *input.Email, employee.ID); err != nil {
			utils.RespondWithServiceError(c, err, "Database error")
			return
		} else if taken {
			utils.RespondWithError(c, http.StatusBadRequest, "Another employee with this email already exists")
			return
		}
		employee.Email = input.Email
	}
	if input.FullName != nil {
		employee.FullName = *input.FullName
	}
	if input.Address != nil {
		employee.Address = *input.Address
	}
	if input.Position != nil {
		employee.Position = *input.Position
	}
	if input.Notes != nil {
		employee.Notes = *input.Notes
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := ctl.store.Save(c.Request.Context(), employee); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": employee, "message": "Employee updated successfully"})
}

// Delete is blocked while service history rows still reference the employee.
func (ctl *EmployeeController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.directory.DeleteEmployee(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to delete employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employee deleted successfully"})
}
