package postgres

import (
	"context"
	"time"

	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/domain/repository"
	"github.com/statech108/backend/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// customerRepository implements the domain.CustomerRepository interface using GORM.
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository is the constructor for customerRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

// Create persists a new customer entity to the database.
func (repo *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	customerM := fromCustomerDomain(customer)

	if err := repo.db.WithContext(ctx).Create(customerM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrHandleTaken.WrapMessage("handle or email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required customer information")
		}
		// For other database errors, return a generic database error
		return domainerrors.NewDatabaseExecuteError(err, "failed to create customer")
	}

	// Update the entity with the generated ID and timestamps
	customer.ID = customerM.ID
	customer.CreatedAt = customerM.CreatedAt
	customer.UpdatedAt = customerM.UpdatedAt

	return nil
}

// FindByHandle retrieves a single customer by their unique handle.
func (repo *customerRepository) FindByHandle(ctx context.Context, handle string) (*entity.Customer, error) {
	var customerM model.CustomerModel

	err := repo.db.WithContext(ctx).
		Where("handle = ?", handle).
		First(&customerM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCustomerNotFound
		}

		return nil, errors.Wrap(err, "failed to find customer by handle")
	}

	return toCustomerDomain(&customerM), nil
}

// ExistsByEmail reports whether an active customer already uses the email.
func (repo *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.CustomerModel{}).
		Where("email = ? AND is_active = ?", email, true).
		Count(&count).Error

	if err != nil {
		return false, errors.Wrap(err, "failed to check customer email")
	}

	return count > 0, nil
}

// UpdateLastLogin records a successful login timestamp.
func (repo *customerRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CustomerModel{}).
		Where("id = ?", id).
		Update("last_login_at", at)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update customer last login")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCustomerNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toCustomerDomain converts a GORM CustomerModel to a domain Customer entity.
func toCustomerDomain(data *model.CustomerModel) *entity.Customer {
	if data == nil {
		return nil
	}

	return &entity.Customer{
		ID:           data.ID,
		Handle:       data.Handle,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		LastLoginAt:  data.LastLoginAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromCustomerDomain converts a domain Customer entity to a GORM CustomerModel for persistence.
func fromCustomerDomain(data *entity.Customer) *model.CustomerModel {
	if data == nil {
		return nil
	}

	return &model.CustomerModel{
		ID:           data.ID,
		Handle:       data.Handle,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		LastLoginAt:  data.LastLoginAt,
	}
}
