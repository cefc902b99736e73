package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/storage"
	"customer-care-backend/utils"
)

const (
	defaultPageSize      = 10
	defaultPaymentMethod = "cash"
)

// HistoryService orchestrates service history records: cross-entity
// reference validation, default field policy, attachment lifecycle, and the
// joined read path.
type HistoryService struct {
	store       *storage.EntityStore
	attachments *AttachmentService
}

func NewHistoryService(store *storage.EntityStore, attachments *AttachmentService) *HistoryService {
	return &HistoryService{store: store, attachments: attachments}
}

type CreateHistoryInput struct {
	CustomerID    uint
	ServiceID     uint
	EmployeeID    uint
	ServiceDate   *time.Time
	Price         *float64
	PaymentMethod string
	Notes         string
}

// UpdateHistoryInput carries only the fields to change; nil fields are left
// untouched.
type UpdateHistoryInput struct {
	CustomerID    *uint
	ServiceID     *uint
	EmployeeID    *uint
	ServiceDate   *time.Time
	Price         *float64
	PaymentMethod *string
	Notes         *string
	RemovedImages []string
}

// HistoryDetail is a history record joined with summaries of the three
// entities it references.
type HistoryDetail struct {
	ID            uint                   `json:"id"`
	ServiceDate   time.Time              `json:"serviceDate"`
	Price         float64                `json:"price"`
	PaymentMethod string                 `json:"paymentMethod"`
	Notes         string                 `json:"notes"`
	Images        []string               `json:"images"`
	Customer      models.CustomerSummary `json:"customer"`
	Service       models.ServiceSummary  `json:"service"`
	Employee      models.EmployeeSummary `json:"employee"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

func detailFromRecord(h *models.ServiceHistory) HistoryDetail {
	return HistoryDetail{
		ID:            h.ID,
		ServiceDate:   h.ServiceDate,
		Price:         h.Price,
		PaymentMethod: h.PaymentMethod,
		Notes:         h.Notes,
		Images:        h.Images,
		Customer:      h.Customer.Summary(),
		Service:       h.Service.Summary(),
		Employee:      h.Employee.Summary(),
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

// List returns one page of joined history records plus pagination metadata.
// Non-positive page and limit values are clamped.
func (s *HistoryService) List(ctx context.Context, filter storage.HistoryFilter) ([]HistoryDetail, Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}

	histories, total, err := s.store.ListHistories(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	details := make([]HistoryDetail, len(histories))
	for i := range histories {
		details[i] = detailFromRecord(&histories[i])
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return details, Pagination{Total: total, Page: filter.Page, TotalPages: totalPages}, nil
}

func (s *HistoryService) Get(ctx context.Context, id uint) (*HistoryDetail, error) {
	history, err := s.store.FindHistoryDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := detailFromRecord(history)
	return &detail, nil
}

// Create validates the three references, applies default field policy,
// uploads the attachments and persists the record. A failure after any
// upload rolls the uploaded batch back, so a failed create never leaves
// blobs behind.
func (s *HistoryService) Create(ctx context.Context, input CreateHistoryInput, files []Upload) (*HistoryDetail, error) {
	var verr models.ValidationErrors
	if input.CustomerID == 0 {
		verr.Add("customerId", "customer is required")
	}
	if input.ServiceID == 0 {
		verr.Add("serviceId", "service is required")
	}
	if input.EmployeeID == 0 {
		verr.Add("employeeId", "employee is required")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if err := validateHistoryFields(input.ServiceDate, input.Price, len(files)); err != nil {
		return nil, err
	}

	_, service, _, err := s.resolveRefs(ctx, input.CustomerID, input.ServiceID, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	price := service.Price
	if input.Price != nil {
		price = *input.Price
	}

	serviceDate := utils.BeginningOfDay(time.Now())
	if input.ServiceDate != nil {
		serviceDate = utils.BeginningOfDay(*input.ServiceDate)
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	refs, err := s.attachments.AttachAll(ctx, files)
	if err != nil {
		return nil, err
	}

	history := models.ServiceHistory{
		CustomerID:    input.CustomerID,
		ServiceID:     input.ServiceID,
		EmployeeID:    input.EmployeeID,
		ServiceDate:   serviceDate,
		Price:         price,
		PaymentMethod: paymentMethod,
		Notes:         input.Notes,
		Images:        urlsOf(refs),
	}

	if err := s.store.CreateHistory(ctx, &history); err != nil {
		s.attachments.Rollback(ctx, refs)
		return nil, err
	}

	return s.Get(ctx, history.ID)
}

// Update applies a partial update. Supplied references are re-validated, new
// files are appended (rolling back only the new batch on failure), and
// removed image URLs are detached.
func (s *HistoryService) Update(ctx context.Context, id uint, input UpdateHistoryInput, files []Upload) (*HistoryDetail, error) {
	history, err := s.store.FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateHistoryFields(input.ServiceDate, input.Price, 0); err != nil {
		return nil, err
	}

	kept := withoutRemoved(history.Images, input.RemovedImages)
	if len(kept)+len(files) > models.MaxHistoryImages {
		var verr models.ValidationErrors
		verr.Add("images", "a record cannot have more than 10 images")
		return nil, verr
	}

	var customerID, serviceID, employeeID uint
	if input.CustomerID != nil {
		customerID = *input.CustomerID
	}
	if input.ServiceID != nil {
		serviceID = *input.ServiceID
	}
	if input.EmployeeID != nil {
		employeeID = *input.EmployeeID
	}
	if _, _, _, err := s.resolveRefs(ctx, customerID, serviceID, employeeID); err != nil {
		return nil, err
	}

	refs, err := s.attachments.AttachAll(ctx, files)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.CustomerID != nil {
		fields["customer_id"] = *input.CustomerID
	}
	if input.ServiceID != nil {
		fields["service_id"] = *input.ServiceID
	}
	if input.EmployeeID != nil {
		fields["employee_id"] = *input.EmployeeID
	}
	if input.ServiceDate != nil {
		fields["service_date"] = utils.BeginningOfDay(*input.ServiceDate)
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.PaymentMethod != nil {
		fields["payment_method"] = *input.PaymentMethod
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	if len(input.RemovedImages) > 0 || len(refs) > 0 {
		images := s.attachments.ApplyRemovals(ctx, history.Images, input.RemovedImages)
		images = append(images, urlsOf(refs)...)
		fields["images"] = models.StringList(images)
	}

	if len(fields) > 0 {
		if err := s.store.UpdateHistoryFields(ctx, id, fields); err != nil {
			s.attachments.Rollback(ctx, refs)
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// Delete detaches the record's attachments (best effort) and removes the
// record. A blob delete failure never blocks the record deletion.
func (s *HistoryService) Delete(ctx context.Context, id uint) error {
	history, err := s.store.FindHistory(ctx, id)
	if err != nil {
		return err
	}

	if len(history.Images) > 0 {
		s.attachments.DetachAll(ctx, history.Images)
	}

	return s.store.DeleteHistory(ctx, id)
}

// resolveRefs looks up the supplied foreign keys concurrently. Zero ids are
// skipped (update paths only re-validate what the caller changed). A missing
// row surfaces as ReferenceNotFound. Existence is always re-read from the
// store, never cached between calls.
func (s *HistoryService) resolveRefs(ctx context.Context, customerID, serviceID, employeeID uint) (*models.Customer, *models.Service, *models.Employee, error) {
	var (
		wg       sync.WaitGroup
		customer *models.Customer
		service  *models.Service
		employee *models.Employee
		errs     [3]error
	)

	if customerID != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			customer, errs[0] = s.store.FindCustomer(ctx, customerID)
		}()
	}
	if serviceID != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service, errs[1] = s.store.FindService(ctx, serviceID)
		}()
	}
	if employeeID != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			employee, errs[2] = s.store.FindEmployee(ctx, employeeID)
		}()
	}
	wg.Wait()

	entities := [3]string{"customer", "service", "employee"}
	ids := [3]uint{customerID, serviceID, employeeID}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, nil, &models.ReferenceNotFoundError{Entity: entities[i], ID: ids[i]}
		}
		return nil, nil, nil, err
	}

	return customer, service, employee, nil
}

// validateHistoryFields enforces field policy before any upload happens.
func validateHistoryFields(serviceDate *time.Time, price *float64, fileCount int) error {
	var verr models.ValidationErrors

	if serviceDate != nil && utils.IsAfterToday(*serviceDate) {
		verr.Add("serviceDate", "service date cannot be in the future")
	}
	if price != nil && *price < 0 {
		verr.Add("price", "price cannot be negative")
	}
	if fileCount > models.MaxHistoryImages {
		verr.Add("images", "a record cannot have more than 10 images")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func withoutRemoved(current models.StringList, toRemove []string) []string {
	if len(toRemove) == 0 {
		return current
	}
	removeSet := make(map[string]struct{}, len(toRemove))
	for _, url := range toRemove {
		removeSet[url] = struct{}{}
	}
	kept := make([]string, 0, len(current))
	for _, url := range current {
		if _, ok := removeSet[url]; !ok {
			kept = append(kept, url)
		}
	}
	return kept
}

func urlsOf(refs []storage.BlobRef) []string {
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.URL
	}
	return urls
}
