package storage

import (
	"context"
	"errors"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/utils"

	"gorm.io/gorm"
)

// EntityStore is the single handle to persistent records. It is constructed
// once at startup and passed to the services that need it.
type EntityStore struct {
	db *gorm.DB
}

func NewEntityStore(db *gorm.DB) *EntityStore {
	return &EntityStore{db: db}
}

// HistoryFilter narrows a service history listing. Zero ids mean "any";
// EndDate is normalized to the end of its day so a same-day range includes
// the whole end day.
type HistoryFilter struct {
	CustomerID uint
	ServiceID  uint
	EmployeeID uint
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

func (s *EntityStore) FindCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "customer", ID: id}
		}
		return nil, err
	}
	return &customer, nil
}

func (s *EntityStore) FindEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "employee", ID: id}
		}
		return nil, err
	}
	return &employee, nil
}

func (s *EntityStore) FindService(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "service", ID: id}
		}
		return nil, err
	}
	return &service, nil
}

func (s *EntityStore) FindHistory(ctx context.Context, id uint) (*models.ServiceHistory, error) {
	var history models.ServiceHistory
	if err := s.db.WithContext(ctx).First(&history, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "service history", ID: id}
		}
		return nil, err
	}
	return &history, nil
}

// FindHistoryDetailed loads a history row together with the customer,
// service and employee it references.
func (s *EntityStore) FindHistoryDetailed(ctx context.Context, id uint) (*models.ServiceHistory, error) {
	var history models.ServiceHistory
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Service").Preload("Employee").
		First(&history, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "service history", ID: id}
		}
		return nil, err
	}
	return &history, nil
}

// ListHistories returns one page of history rows with their referenced
// entities preloaded, newest service date first, same-day ties broken by
// creation order descending.
func (s *EntityStore) ListHistories(ctx context.Context, filter HistoryFilter) ([]models.ServiceHistory, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.ServiceHistory{})

	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ServiceID != 0 {
		q = q.Where("service_id = ?", filter.ServiceID)
	}
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.StartDate != nil {
		q = q.Where("service_date >= ?", utils.BeginningOfDay(*filter.StartDate))
	}
	if filter.EndDate != nil {
		q = q.Where("service_date <= ?", utils.EndOfDay(*filter.EndDate))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var histories []models.ServiceHistory
	err := q.Preload("Customer").Preload("Service").Preload("Employee").
		Order("service_date DESC, created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&histories).Error
	if err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}

func (s *EntityStore) CreateHistory(ctx context.Context, history *models.ServiceHistory) error {
	return s.db.WithContext(ctx).Create(history).Error
}

// UpdateHistoryFields applies a sparse set of column changes to one row.
// Absent fields are left untouched.
func (s *EntityStore) UpdateHistoryFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).
		Model(&models.ServiceHistory{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (s *EntityStore) DeleteHistory(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.ServiceHistory{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "service history", ID: id}
	}
	return nil
}

// AllHistoryImages collects every attachment URL referenced by any history
// row. Used by the orphan sweep.
func (s *EntityStore) AllHistoryImages(ctx context.Context) (map[string]struct{}, error) {
	var lists []models.StringList
	err := s.db.WithContext(ctx).
		Model(&models.ServiceHistory{}).
		Pluck("images", &lists).Error
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{})
	for _, list := range lists {
		for _, url := range list {
			referenced[url] = struct{}{}
		}
	}
	return referenced, nil
}

func (s *EntityStore) CountHistoriesByCustomer(ctx context.Context, customerID uint) (int64, error) {
	return s.countHistories(ctx, "customer_id", customerID)
}

func (s *EntityStore) CountHistoriesByService(ctx context.Context, serviceID uint) (int64, error) {
	return s.countHistories(ctx, "service_id", serviceID)
}

func (s *EntityStore) CountHistoriesByEmployee(ctx context.Context, employeeID uint) (int64, error) {
	return s.countHistories(ctx, "employee_id", employeeID)
}

func (s *EntityStore) countHistories(ctx context.Context, column string, id uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ServiceHistory{}).
		Where(column+" = ?", id).
		Count(&count).Error
	return count, err
}

// Create inserts any entity row.
func (s *EntityStore) Create(ctx context.Context, value interface{}) error {
	return s.db.WithContext(ctx).Create(value).Error
}

// Save writes back a loaded entity row.
func (s *EntityStore) Save(ctx context.Context, value interface{}) error {
	return s.db.WithContext(ctx).Save(value).Error
}

// Delete removes an entity row by primary key.
func (s *EntityStore) Delete(ctx context.Context, value interface{}, id uint) error {
	result := s.db.WithContext(ctx).Delete(value, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *EntityStore) ListCustomers(ctx context.Context, search string, page, limit int) ([]models.Customer, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR phone LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&customers).Error
	return customers, total, err
}

func (s *EntityStore) ListEmployees(ctx context.Context, search string, isActive *bool, page, limit int) ([]models.Employee, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Employee{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []models.Employee
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&employees).Error
	return employees, total, err
}

func (s *EntityStore) ListServices(ctx context.Context, search string, isActive *bool, page, limit int) ([]models.Service, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Service{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&services).Error
	return services, total, err
}

// CustomerPhoneExists reports whether another customer already uses a phone
// number. excludeID skips the row being updated.
func (s *EntityStore) CustomerPhoneExists(ctx context.Context, phone string, excludeID uint) (bool, error) {
	return s.exists(ctx, &models.Customer{}, "phone = ? AND id <> ?", phone, excludeID)
}

func (s *EntityStore) EmployeePhoneExists(ctx context.Context, phone string, excludeID uint) (bool, error) {
	return s.exists(ctx, &models.Employee{}, "phone = ? AND id <> ?", phone, excludeID)
}

func (s *EntityStore) EmployeeEmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	return s.exists(ctx, &models.Employee{}, "email = ? AND id <> ?", email, excludeID)
}

func (s *EntityStore) ServiceNameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	return s.exists(ctx, &models.Service{}, "name = ? AND id <> ?", name, excludeID)
}

func (s *EntityStore) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error
	return count > 0, err
}
