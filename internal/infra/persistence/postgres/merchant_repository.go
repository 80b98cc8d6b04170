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

// merchantRepository implements the domain.MerchantRepository interface using GORM.
type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository is the constructor for merchantRepository.
func NewMerchantRepository(db *gorm.DB) repository.MerchantRepository {
	return &merchantRepository{db: db}
}

// Create persists a new merchant entity to the database.
func (repo *merchantRepository) Create(ctx context.Context, merchant *entity.Merchant) error {
	merchantM := fromMerchantDomain(merchant)

	if err := repo.db.WithContext(ctx).Create(merchantM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrMobileTaken.WrapMessage("merchant uid or mobile already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required merchant information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create merchant")
	}

	merchant.ID = merchantM.ID
	merchant.CreatedAt = merchantM.CreatedAt
	merchant.UpdatedAt = merchantM.UpdatedAt

	return nil
}

// FindByUID retrieves a single merchant by their generated merchant UID.
func (repo *merchantRepository) FindByUID(ctx context.Context, merchantUID string) (*entity.Merchant, error) {
	return repo.findOne(ctx, "merchant_uid = ?", merchantUID)
}

// FindByMobile retrieves a single merchant by their mobile number.
func (repo *merchantRepository) FindByMobile(ctx context.Context, mobile string) (*entity.Merchant, error) {
	return repo.findOne(ctx, "mobile = ?", mobile)
}

func (repo *merchantRepository) findOne(ctx context.Context, query string, arg any) (*entity.Merchant, error) {
	var merchantM model.MerchantModel

	err := repo.db.WithContext(ctx).
		Where(query, arg).
		First(&merchantM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMerchantNotFound
		}

		return nil, errors.Wrap(err, "failed to find merchant")
	}

	return toMerchantDomain(&merchantM), nil
}

// ExistsByUID reports whether the merchant UID is already allocated.
func (repo *merchantRepository) ExistsByUID(ctx context.Context, merchantUID string) (bool, error) {
	return repo.exists(ctx, "merchant_uid = ?", merchantUID)
}

// ExistsByMobile reports whether a merchant already uses the mobile number.
func (repo *merchantRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	return repo.exists(ctx, "mobile = ?", mobile)
}

func (repo *merchantRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.MerchantModel{}).
		Where(query, arg).
		Count(&count).Error

	if err != nil {
		return false, errors.Wrap(err, "failed to check merchant existence")
	}

	return count > 0, nil
}

// UpdateLastLogin records a successful login timestamp.
func (repo *merchantRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.MerchantModel{}).
		Where("id = ?", id).
		Update("last_login_at", at)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update merchant last login")
	}
	if result.RowsAffected == 0 {
		return repository.ErrMerchantNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toMerchantDomain converts a GORM MerchantModel to a domain Merchant entity.
func toMerchantDomain(data *model.MerchantModel) *entity.Merchant {
	if data == nil {
		return nil
	}

	return &entity.Merchant{
		ID:           data.ID,
		MerchantUID:  data.MerchantUID,
		BusinessName: data.BusinessName,
		Address:      data.Address,
		Mobile:       data.Mobile,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		LastLoginAt:  data.LastLoginAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromMerchantDomain converts a domain Merchant entity to a GORM MerchantModel for persistence.
func fromMerchantDomain(data *entity.Merchant) *model.MerchantModel {
	if data == nil {
		return nil
	}

	return &model.MerchantModel{
		ID:           data.ID,
		MerchantUID:  data.MerchantUID,
		BusinessName: data.BusinessName,
		Address:      data.Address,
		Mobile:       data.Mobile,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		IsActive:     data.IsActive,
		LastLoginAt:  data.LastLoginAt,
	}
}
