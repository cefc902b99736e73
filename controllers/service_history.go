package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/services"
	"customer-care-backend/storage"
	"customer-care-backend/utils"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 5 << 20 // 5MB per file

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

type HistoryController struct {
	histories *services.HistoryService
}

func NewHistoryController(histories *services.HistoryService) *HistoryController {
	return &HistoryController{histories: histories}
}

// List serves GET /service-histories with optional filters and pagination.
func (h *HistoryController) List(c *gin.Context) {
	filter := storage.HistoryFilter{
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 10),
		CustomerID: uint(queryInt(c, "customerId", 0)),
		ServiceID:  uint(queryInt(c, "serviceId", 0)),
		EmployeeID: uint(queryInt(c, "employeeId", 0)),
	}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filter.StartDate},
		{"endDate", &filter.EndDate},
	} {
		if value := c.Query(bound.name); value != "" {
			t, err := time.ParseInLocation("2006-01-02", value, time.Local)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+bound.name+" format, expected YYYY-MM-DD")
				return
			}
			*bound.dst = &t
		}
	}

	details, pagination, err := h.histories.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve service histories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       details,
		"pagination": pagination,
	})
}

// Get serves GET /service-histories/:id.
func (h *HistoryController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.histories.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to retrieve service history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

// Create serves POST /service-histories (multipart).
func (h *HistoryController) Create(c *gin.Context) {
	var input services.CreateHistoryInput
	var verr models.ValidationErrors

	for _, field := range []struct {
		name string
		dst  *uint
	}{
		{"customerId", &input.CustomerID},
		{"serviceId", &input.ServiceID},
		{"employeeId", &input.EmployeeID},
	} {
		value, ok := c.GetPostForm(field.name)
		if !ok || value == "" {
			verr.Add(field.name, field.name+" is required")
			continue
		}
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			verr.Add(field.name, "invalid "+field.name)
			continue
		}
		*field.dst = uint(id)
	}

	input.ServiceDate = parseFormDate(c, "serviceDate", &verr)
	input.Price = parseFormPrice(c, &verr)
	input.PaymentMethod = c.PostForm("paymentMethod")
	input.Notes = c.PostForm("notes")

	if verr.HasErrors() {
		utils.RespondWithServiceError(c, verr, "")
		return
	}

	files, closeFiles, ok := openUploads(c)
	if !ok {
		return
	}
	defer closeFiles()

	detail, err := h.histories.Create(c.Request.Context(), input, files)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to create service history")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    detail,
		"message": "Service history created successfully",
	})
}

// Update serves PUT /service-histories/:id (multipart, any subset of fields).
func (h *HistoryController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input services.UpdateHistoryInput
	var verr models.ValidationErrors

	for _, field := range []struct {
		name string
		dst  **uint
	}{
		{"customerId", &input.CustomerID},
		{"serviceId", &input.ServiceID},
		{"employeeId", &input.EmployeeID},
	} {
		value, present := c.GetPostForm(field.name)
		if !present {
			continue
		}
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil || parsed == 0 {
			verr.Add(field.name, "invalid "+field.name)
			continue
		}
		v := uint(parsed)
		*field.dst = &v
	}

	input.ServiceDate = parseFormDate(c, "serviceDate", &verr)
	input.Price = parseFormPrice(c, &verr)
	if value, present := c.GetPostForm("paymentMethod"); present {
		input.PaymentMethod = &value
	}
	if value, present := c.GetPostForm("notes"); present {
		input.Notes = &value
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, url := range form.Value["removedImages"] {
			if !utils.ValidateImageURL(url) {
				verr.Add("removedImages", "one or more image URLs are invalid")
				break
			}
		}
		input.RemovedImages = form.Value["removedImages"]
	}

	if verr.HasErrors() {
		utils.RespondWithServiceError(c, verr, "")
		return
	}

	files, closeFiles, ok := openUploads(c)
	if !ok {
		return
	}
	defer closeFiles()

	detail, err := h.histories.Update(c.Request.Context(), id, input, files)
	if err != nil {
		utils.RespondWithServiceError(c, err, "Failed to update service history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
		"message": "Service history updated successfully",
	})
}

// Delete serves DELETE /service-histories/:id.
func (h *HistoryController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.histories.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithServiceError(c, err, "Failed to delete service history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service history deleted successfully",
	})
}

// openUploads validates and opens the request's image files. File-type and
// size violations are rejected here, before anything reaches the blob store.
func openUploads(c *gin.Context) ([]services.Upload, func(), bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, func() {}, true
	}

	headers := form.File["images"]
	if len(headers) > models.MaxHistoryImages {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot upload more than 10 images")
		return nil, nil, false
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxUploadSize {
			closeAll()
			utils.RespondWithError(c, http.StatusBadRequest, "File too large. Maximum size is 5MB")
			return nil, nil, false
		}
		contentType := header.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			closeAll()
			utils.RespondWithError(c, http.StatusBadRequest, "Only image files are accepted (jpeg, jpg, png)")
			return nil, nil, false
		}

		file, err := header.Open()
		if err != nil {
			closeAll()
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file")
			return nil, nil, false
		}
		opened = append(opened, file)
		uploads = append(uploads, services.Upload{
			Filename:    header.Filename,
			ContentType: contentType,
			Content:     file,
		})
	}

	return uploads, closeAll, true
}

func paginationOf(total int64, page, limit int) services.Pagination {
	return services.Pagination{
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFormDate(c *gin.Context, name string, verr *models.ValidationErrors) *time.Time {
	value, present := c.GetPostForm(name)
	if !present || value == "" {
		return nil
	}
	// Parse in the server zone so day boundaries line up with the stored
	// service dates.
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		verr.Add(name, "invalid date, expected YYYY-MM-DD")
		return nil
	}
	return &t
}

func parseFormPrice(c *gin.Context, verr *models.ValidationErrors) *float64 {
	value, present := c.GetPostForm("price")
	if !present || value == "" {
		return nil
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil {
		verr.Add("price", "price must be a number")
		return nil
	}
	if price < 0 {
		verr.Add("price", "price cannot be negative")
		return nil
	}
	return &price
}
