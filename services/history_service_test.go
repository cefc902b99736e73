package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"customer-care-backend/models"
	"customer-care-backend/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type historyEnv struct {
	svc      *HistoryService
	blobs    *fakeBlobStore
	db       *gorm.DB
	customer models.Customer
	service  models.Service
	employee models.Employee
}

func newHistoryEnv(t *testing.T) *historyEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Employee{},
		&models.Service{},
		&models.ServiceHistory{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	env := &historyEnv{
		blobs: newFakeBlobStore(),
		db:    db,
		customer: models.Customer{
			FullName: "Tran Thi Mai",
			Phone:    "0901234567",
		},
		service: models.Service{
			Name:  "Facial treatment",
			Price: 150,
		},
		employee: models.Employee{
			FullName: "Nguyen Van An",
			Phone:    "0909876543",
			IsActive: true,
		},
	}

	if err := db.Create(&env.customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := db.Create(&env.service).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	if err := db.Create(&env.employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	store := storage.NewEntityStore(db)
	attachments := NewAttachmentService(env.blobs, "test-folder")
	env.svc = NewHistoryService(store, attachments)
	return env
}

func (env *historyEnv) createInput() CreateHistoryInput {
	return CreateHistoryInput{
		CustomerID: env.customer.ID,
		ServiceID:  env.service.ID,
		EmployeeID: env.employee.ID,
	}
}

func (env *historyEnv) historyCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(&models.ServiceHistory{}).Count(&count).Error; err != nil {
		t.Fatalf("count histories: %v", err)
	}
	return count
}

func TestCreate_MissingReferenceFails(t *testing.T) {
	env := newHistoryEnv(t)

	input := env.createInput()
	input.EmployeeID = 9999

	_, err := env.svc.Create(context.Background(), input, makeUploads(2))
	if !errors.Is(err, models.ErrReferenceNotFound) {
		t.Fatalf("got %v, want ErrReferenceNotFound", err)
	}

	if n := env.historyCount(t); n != 0 {
		t.Errorf("history table has %d rows after failed create, want 0", n)
	}
	if env.blobs.count() != 0 {
		t.Errorf("blob store holds %d objects after failed create, want 0", env.blobs.count())
	}
}

func TestCreate_UploadFailureLeavesNoBlobsAndNoRecord(t *testing.T) {
	env := newHistoryEnv(t)
	env.blobs.failAtCall = 3

	_, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(3))

	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("got %v, want StorageError", err)
	}
	if env.blobs.count() != 0 {
		t.Errorf("blob store holds %d objects after failed batch, want 0", env.blobs.count())
	}
	if n := env.historyCount(t); n != 0 {
		t.Errorf("history table has %d rows, want 0", n)
	}
}

func TestCreate_DefaultsComeFromPolicy(t *testing.T) {
	env := newHistoryEnv(t)

	detail, err := env.svc.Create(context.Background(), env.createInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if detail.Price != env.service.Price {
		t.Errorf("price = %v, want service price %v", detail.Price, env.service.Price)
	}
	if detail.PaymentMethod != "cash" {
		t.Errorf("payment method = %q, want %q", detail.PaymentMethod, "cash")
	}
	today := time.Now()
	if detail.ServiceDate.Year() != today.Year() ||
		detail.ServiceDate.Month() != today.Month() ||
		detail.ServiceDate.Day() != today.Day() {
		t.Errorf("service date = %v, want today", detail.ServiceDate)
	}
	if detail.Customer.ID != env.customer.ID || detail.Customer.FullName != env.customer.FullName {
		t.Errorf("customer summary = %+v, want seeded customer", detail.Customer)
	}
	if detail.Service.Name != env.service.Name || detail.Employee.FullName != env.employee.FullName {
		t.Errorf("joined summaries incomplete: %+v / %+v", detail.Service, detail.Employee)
	}
}

func TestCreate_ExplicitPriceWins(t *testing.T) {
	env := newHistoryEnv(t)

	price := 99.5
	input := env.createInput()
	input.Price = &price

	detail, err := env.svc.Create(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if detail.Price != price {
		t.Errorf("price = %v, want %v", detail.Price, price)
	}
}

func TestCreate_FutureDateRejectedTodayAccepted(t *testing.T) {
	env := newHistoryEnv(t)

	tomorrow := time.Now().AddDate(0, 0, 1)
	input := env.createInput()
	input.ServiceDate = &tomorrow

	_, err := env.svc.Create(context.Background(), input, nil)
	var verr models.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationErrors for future date", err)
	}

	// Today with a time-of-day is not "in the future".
	today := time.Now()
	input.ServiceDate = &today
	if _, err := env.svc.Create(context.Background(), input, nil); err != nil {
		t.Fatalf("Create with today's date: %v", err)
	}
}

func TestCreate_ImageCapRejectedBeforeUpload(t *testing.T) {
	env := newHistoryEnv(t)

	_, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(11))
	var verr models.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationErrors for image cap", err)
	}
	if env.blobs.storeCalls != 0 {
		t.Errorf("blob store saw %d uploads, want 0: cap must be checked first", env.blobs.storeCalls)
	}
}

func TestUpdate_PartialLeavesOtherFieldsAlone(t *testing.T) {
	env := newHistoryEnv(t)

	price := 200.0
	method := "card"
	date := time.Now().AddDate(0, 0, -3)
	input := env.createInput()
	input.Price = &price
	input.PaymentMethod = method
	input.ServiceDate = &date

	created, err := env.svc.Create(context.Background(), input, makeUploads(2))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	notes := "client asked for a different stylist next time"
	updated, err := env.svc.Update(context.Background(), created.ID, UpdateHistoryInput{Notes: &notes}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Notes != notes {
		t.Errorf("notes = %q, want %q", updated.Notes, notes)
	}
	if updated.Price != price ||
		updated.PaymentMethod != method ||
		!updated.ServiceDate.Equal(created.ServiceDate) ||
		updated.Customer.ID != created.Customer.ID ||
		updated.Service.ID != created.Service.ID ||
		updated.Employee.ID != created.Employee.ID {
		t.Errorf("unrelated fields changed: %+v vs %+v", updated, created)
	}
	if len(updated.Images) != 2 {
		t.Errorf("images = %v, want the 2 original attachments untouched", updated.Images)
	}
}

func TestUpdate_MissingReferenceFails(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	badID := uint(9999)
	_, err = env.svc.Update(context.Background(), created.ID, UpdateHistoryInput{ServiceID: &badID}, nil)
	if !errors.Is(err, models.ErrReferenceNotFound) {
		t.Fatalf("got %v, want ErrReferenceNotFound", err)
	}

	unchanged, err := env.svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if unchanged.Service.ID != env.service.ID {
		t.Errorf("service reference changed to %d after failed update", unchanged.Service.ID)
	}
}

func TestUpdate_RemovedImagesDetached(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := env.svc.Update(context.Background(), created.ID, UpdateHistoryInput{
		RemovedImages: []string{created.Images[1]},
	}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(updated.Images) != 2 {
		t.Fatalf("images = %v, want 2 left", updated.Images)
	}
	if updated.Images[0] != created.Images[0] || updated.Images[1] != created.Images[2] {
		t.Errorf("image order not preserved: %v", updated.Images)
	}
	if env.blobs.count() != 2 {
		t.Errorf("blob store holds %d objects, want 2 after detaching one", env.blobs.count())
	}
}

func TestUpdate_AppendsNewImages(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := env.svc.Update(context.Background(), created.ID, UpdateHistoryInput{}, makeUploads(2))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(updated.Images) != 3 {
		t.Fatalf("images = %v, want 3", updated.Images)
	}
	if updated.Images[0] != created.Images[0] {
		t.Errorf("existing attachment must stay first, got %v", updated.Images)
	}
}

func TestUpdate_ImageCapCountsExistingAttachments(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(9))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	uploaded := env.blobs.storeCalls
	_, err = env.svc.Update(context.Background(), created.ID, UpdateHistoryInput{}, makeUploads(2))
	var verr models.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationErrors: 9 existing + 2 new exceeds the cap", err)
	}
	if env.blobs.storeCalls != uploaded {
		t.Errorf("new files were uploaded despite the cap")
	}
}

func TestDelete_DetachesBlobsAndRemovesRecord(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(2))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if env.blobs.count() != 0 {
		t.Errorf("blob store holds %d objects after delete, want 0", env.blobs.count())
	}
	if _, err := env.svc.Get(context.Background(), created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestDelete_FailedBlobDeleteDoesNotBlockRecordDelete(t *testing.T) {
	env := newHistoryEnv(t)

	created, err := env.svc.Create(context.Background(), env.createInput(), makeUploads(1))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	env.blobs.failDelete[storage.ExtractPublicID(created.Images[0])] = true

	if err := env.svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete must succeed despite blob delete failure, got %v", err)
	}
	if n := env.historyCount(t); n != 0 {
		t.Errorf("history table has %d rows, want 0", n)
	}
}

func TestGetAndDelete_NotFound(t *testing.T) {
	env := newHistoryEnv(t)

	if _, err := env.svc.Get(context.Background(), 42); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if err := env.svc.Delete(context.Background(), 42); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}

func TestList_Pagination(t *testing.T) {
	env := newHistoryEnv(t)

	for i := 0; i < 25; i++ {
		if _, err := env.svc.Create(context.Background(), env.createInput(), nil); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	details, pagination, err := env.svc.List(context.Background(), storage.HistoryFilter{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(details) != 10 {
		t.Errorf("page 2 has %d records, want 10", len(details))
	}
	if pagination.Total != 25 {
		t.Errorf("total = %d, want 25", pagination.Total)
	}
	if pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", pagination.TotalPages)
	}
	if pagination.Page != 2 {
		t.Errorf("page = %d, want 2", pagination.Page)
	}
}

func TestList_ClampsNonPositivePaging(t *testing.T) {
	env := newHistoryEnv(t)

	if _, err := env.svc.Create(context.Background(), env.createInput(), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	details, pagination, err := env.svc.List(context.Background(), storage.HistoryFilter{Page: -1, Limit: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if pagination.Page != 1 {
		t.Errorf("page = %d, want clamped to 1", pagination.Page)
	}
	if len(details) != 1 {
		t.Errorf("got %d records, want 1", len(details))
	}
}

func TestList_FiltersByReference(t *testing.T) {
	env := newHistoryEnv(t)

	other := models.Employee{FullName: "Le Thi Hoa", Phone: "0911111111", IsActive: true}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("seed second employee: %v", err)
	}

	if _, err := env.svc.Create(context.Background(), env.createInput(), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	input := env.createInput()
	input.EmployeeID = other.ID
	if _, err := env.svc.Create(context.Background(), input, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	details, pagination, err := env.svc.List(context.Background(), storage.HistoryFilter{EmployeeID: other.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if pagination.Total != 1 || len(details) != 1 {
		t.Fatalf("got %d/%d records, want exactly 1", len(details), pagination.Total)
	}
	if details[0].Employee.ID != other.ID {
		t.Errorf("filtered record references employee %d, want %d", details[0].Employee.ID, other.ID)
	}
}

func TestList_EndDateIncludesWholeDay(t *testing.T) {
	env := newHistoryEnv(t)

	// A record whose stored timestamp sits mid-day must match an endDate
	// filter for the same calendar day.
	morning := time.Date(2024, 3, 15, 8, 0, 0, 0, time.Local)
	history := models.ServiceHistory{
		CustomerID:    env.customer.ID,
		ServiceID:     env.service.ID,
		EmployeeID:    env.employee.ID,
		ServiceDate:   morning,
		Price:         100,
		PaymentMethod: "cash",
		Images:        models.StringList{},
	}
	if err := env.db.Create(&history).Error; err != nil {
		t.Fatalf("insert history: %v", err)
	}

	endDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	details, _, err := env.svc.List(context.Background(), storage.HistoryFilter{EndDate: &endDate})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("endDate on the service day excluded the record, got %d results", len(details))
	}

	dayBefore := time.Date(2024, 3, 14, 0, 0, 0, 0, time.Local)
	details, _, err = env.svc.List(context.Background(), storage.HistoryFilter{EndDate: &dayBefore})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(details) != 0 {
		t.Fatalf("endDate before the service day must exclude the record, got %d results", len(details))
	}
}
