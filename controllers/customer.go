package controllers

import (
	"net/http"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/services"
	"customer-care-backend/storage"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	store     *storage.EntityStore
	directory *services.DirectoryService
}

func NewCustomerController(store *storage.EntityStore, directory *services.DirectoryService) *CustomerController {
	return &CustomerController{store: store, directory: directory}
}

type CreateCustomerInput struct {
	FullName  string     `json:"fullName" binding:"required"`
	Phone     string     `json:"phone" binding:"required"`
	BirthDate *time.Time `json:"birthDate"`
	Address   string     `json:"address"`
	Notes     string     `json:"notes"`
}

type UpdateCustomerInput struct {
	FullName  *string    `json:"fullName"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birthDate"`
	Address   *string    `json:"address"`
	Notes     *string    `json:"notes"`
}

func (ctl *CustomerController) Create(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	taken, err := ctl.store.CustomerPhoneExists(c.Request.Context(), input.Phone, 0)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Database error")
		return
	}
	if taken {
		utils.RespondWithError(c, http.StatusBadRequest, "A customer with this phone number already exists")
		return
	}

	customer := models.Customer{
		FullName:  input.FullName,
		Phone:     input.Phone,
		BirthDate: input.BirthDate,
		Address:   input.Address,
		Notes:     input.Notes,
	}
	if err := ctl.store.Create(c.Request.Context(), &customer); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": customer, "message": "Customer created successfully"})
}

func (ctl *CustomerController) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	customers, total, err := ctl.store.ListCustomers(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       customers,
		"pagination": paginationOf(total, page, limit),
	})
}

func (ctl *CustomerController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	customer, err := ctl.store.FindCustomer(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
}

func (ctl *CustomerController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := ctl.store.FindCustomer(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve customer")
		return
	}

	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		taken, err := ctl.store.CustomerPhoneExists(c.Request.Context(), *input.Phone, customer.ID)
		if err != nil {
			utils.RespondWithServiceError(c, err, "Database error")
			return
		}
		if taken {
			utils.RespondWithError(c, http.StatusBadRequest, "Another customer with this phone number already exists")
			return
		}
		customer.Phone = *input.Phone
	}
	if input.FullName != nil {
		customer.FullName = *input.FullName
	}
	if input.BirthDate != nil {
		customer.BirthDate = input.BirthDate
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}

	if err := ctl.store.Save(c.Request.Context(), customer); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer, "message": "Customer updated successfully"})
}

// Delete refuses to remove a customer that service history rows still point
// at; the policy lives in DirectoryService.
func (ctl *CustomerController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctl.directory.DeleteCustomer(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer deleted successfully"})
}
