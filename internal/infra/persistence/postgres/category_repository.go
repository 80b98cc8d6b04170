package postgres

import (
	"context"

	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/domain/repository"
	"github.com/statech108/backend/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// categoryRepository implements the domain.CategoryRepository interface using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository is the constructor for categoryRepository.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

// Create persists a new category node.
func (repo *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	categoryM := fromCategoryDomain(category)

	if err := repo.db.WithContext(ctx).Create(categoryM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDuplicateCategory.WrapMessage("category already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrParentNotFound.WrapMessage("invalid parent reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required category information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create category")
	}

	category.ID = categoryM.ID
	category.CreatedAt = categoryM.CreatedAt
	category.UpdatedAt = categoryM.UpdatedAt

	return nil
}

// FindByID retrieves a node by ID regardless of its active flag.
func (repo *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var categoryM model.CategoryModel

	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&categoryM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find category by id")
	}

	return toCategoryDomain(&categoryM), nil
}

// ListRoots retrieves all active root nodes ordered by sort order.
func (repo *categoryRepository) ListRoots(ctx context.Context) ([]*entity.Category, error) {
	var categoryModels []*model.CategoryModel

	err := repo.db.WithContext(ctx).
		Where("parent_id IS NULL AND is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categoryModels).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to list root categories")
	}

	return toCategoryDomainList(categoryModels), nil
}

// ListChildren retrieves the active children of a node ordered by sort order.
func (repo *categoryRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*entity.Category, error) {
	var categoryModels []*model.CategoryModel

	err := repo.db.WithContext(ctx).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("sort_order ASC, name ASC").
		Find(&categoryModels).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to list child categories")
	}

	return toCategoryDomainList(categoryModels), nil
}

// ListByOwner retrieves all active nodes owned by the merchant ordered by sort order.
func (repo *categoryRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*entity.Category, error) {
	var categoryModels []*model.CategoryModel

	err := repo.db.WithContext(ctx).
		Where("owner_uid = ? AND is_active = ?", ownerUID, true).
		Order("sort_order ASC, name ASC").
		Find(&categoryModels).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories by owner")
	}

	return toCategoryDomainList(categoryModels), nil
}

// CountActiveChildren returns the number of active children of a node.
func (repo *categoryRepository) CountActiveChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Count(&count).Error

	if err != nil {
		return 0, errors.Wrap(err, "failed to count child categories")
	}

	return count, nil
}

// HasActiveChildren reports, per given node ID, whether any active child exists.
func (repo *categoryRepository) HasActiveChildren(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []struct {
		ParentID uuid.UUID
	}

	err := repo.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Select("parent_id").
		Where("parent_id IN ? AND is_active = ?", ids, true).
		Group("parent_id").
		Find(&rows).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve child flags")
	}

	for _, row := range rows {
		result[row.ParentID] = true
	}

	return result, nil
}

// ExistsActiveSibling reports whether an active node with the same name already
// exists under the parent for the owner.
func (repo *categoryRepository) ExistsActiveSibling(ctx context.Context, name string, parentID *uuid.UUID, ownerUID string, excludeID *uuid.UUID) (bool, error) {
	query := repo.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("name = ? AND owner_uid = ? AND is_active = ?", name, ownerUID, true)

	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check sibling uniqueness")
	}

	return count > 0, nil
}

// Update persists all mutable fields of the node.
func (repo *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	categoryM := fromCategoryDomain(category)

	result := repo.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("id = ?", categoryM.ID).
		Updates(map[string]any{
			"name":        categoryM.Name,
			"description": categoryM.Description,
			"color":       categoryM.Color,
			"icon":        categoryM.Icon,
			"sort_order":  categoryM.SortOrder,
			"image_url":   categoryM.ImageURL,
			"parent_id":   categoryM.ParentID,
			"is_active":   categoryM.IsActive,
		})

	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrDuplicateCategory.WrapMessage("category already exists")
		}
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrParentNotFound.WrapMessage("invalid parent reference")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	return nil
}

// Delete permanently removes the node. Dependent records are removed by the
// storage layer's ON DELETE CASCADE rules.
func (repo *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.CategoryModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toCategoryDomain converts a GORM CategoryModel to a domain Category entity.
func toCategoryDomain(data *model.CategoryModel) *entity.Category {
	if data == nil {
		return nil
	}

	return &entity.Category{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Color:       data.Color,
		Icon:        data.Icon,
		SortOrder:   data.SortOrder,
		ImageURL:    data.ImageURL,
		OwnerUID:    data.OwnerUID,
		ParentID:    data.ParentID,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func toCategoryDomainList(models []*model.CategoryModel) []*entity.Category {
	categories := make([]*entity.Category, 0, len(models))
	for _, m := range models {
		categories = append(categories, toCategoryDomain(m))
	}

	return categories
}

// fromCategoryDomain converts a domain Category entity to a GORM CategoryModel for persistence.
func fromCategoryDomain(data *entity.Category) *model.CategoryModel {
	if data == nil {
		return nil
	}

	return &model.CategoryModel{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Color:       data.Color,
		Icon:        data.Icon,
		SortOrder:   data.SortOrder,
		ImageURL:    data.ImageURL,
		OwnerUID:    data.OwnerUID,
		ParentID:    data.ParentID,
		IsActive:    data.IsActive,
	}
}
