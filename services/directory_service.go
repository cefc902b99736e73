package services

import (
	"context"

	"customer-care-backend/models"
	"customer-care-backend/storage"
)

// DirectoryService owns the deletion policy for the three reference
// entities. A customer, employee or service is not removable while service
// history rows still point at it; history records are the system of record
// for past work and must keep resolving.
type DirectoryService struct {
	store *storage.EntityStore
}

func NewDirectoryService(store *storage.EntityStore) *DirectoryService {
	return &DirectoryService{store: store}
}

func (s *DirectoryService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.store.FindCustomer(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountHistoriesByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &models.ConflictError{Message: "Cannot delete a customer with existing service history"}
	}
	return s.store.Delete(ctx, &models.Customer{}, id)
}

func (s *DirectoryService) DeleteEmployee(ctx context.Context, id uint) error {
	if _, err := s.store.FindEmployee(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountHistoriesByEmployee(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &models.ConflictError{Message: "Cannot delete an employee with existing service history"}
	}
	return s.store.Delete(ctx, &models.Employee{}, id)
}

func (s *DirectoryService) DeleteService(ctx context.Context, id uint) error {
	if _, err := s.store.FindService(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountHistoriesByService(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &models.ConflictError{Message: "Cannot delete a service with existing service history"}
	}
	return s.store.Delete(ctx, &models.Service{}, id)
}
