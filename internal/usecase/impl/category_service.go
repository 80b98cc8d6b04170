package impl

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/statech108/backend/config"
	deliverycontext "github.com/statech108/backend/internal/delivery/context"
	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/domain/repository"
	"github.com/statech108/backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// Hierarchy levels: root, subcategory, leaf.
	levelRoot        = 0
	levelSubcategory = 1
	levelLeaf        = 2

	maxCategoryNameLength = 100
)

// categoryService implements the CategoryUsecase interface.
type categoryService struct {
	txManager    repository.TransactionManager
	maxLevelHops int
	imageBaseURL string
	logger       *slog.Logger
}

// NewCategoryService is the constructor for categoryService.
func NewCategoryService(
	txManager repository.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.CategoryUsecase {
	return &categoryService{
		txManager:    txManager,
		maxLevelHops: cfg.Category.MaxLevelHops,
		imageBaseURL: strings.TrimSuffix(cfg.Category.ImageBaseURL, "/"),
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListRoots retrieves all active root categories with a derived has_children flag.
func (srv *categoryService) ListRoots(ctx context.Context) ([]usecase.CategoryView, error) {
	srv.log(ctx).Debug("Listing root categories")

	var views []usecase.CategoryView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		roots, err := categoryRepo.ListRoots(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list roots")
		}

		ids := make([]uuid.UUID, 0, len(roots))
		for _, root := range roots {
			ids = append(ids, root.ID)
		}

		childFlags, err := categoryRepo.HasActiveChildren(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "failed to resolve child flags")
		}

		views = make([]usecase.CategoryView, 0, len(roots))
		for _, root := range roots {
			view := srv.toView(root)
			hasChildren := childFlags[root.ID]
			view.HasChildren = &hasChildren
			views = append(views, view)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list root categories", slog.Any("error", err))

		return nil, err
	}

	return views, nil
}

// ListChildren retrieves the active children of a node. A leaf collapses to a
// single-leaf payload carrying the node itself.
func (srv *categoryService) ListChildren(ctx context.Context, nodeID uuid.UUID) (*usecase.ChildrenOutput, error) {
	srv.log(ctx).Debug("Listing category children", slog.Any("category_id", nodeID))

	var output *usecase.ChildrenOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		node, err := srv.findActive(ctx, categoryRepo, nodeID)
		if err != nil {
			return err
		}

		children, err := categoryRepo.ListChildren(ctx, node.ID)
		if err != nil {
			return errors.Wrap(err, "failed to list children")
		}

		if len(children) == 0 {
			leaf := srv.toView(node)
			output = &usecase.ChildrenOutput{Leaf: &leaf}

			return nil
		}

		parent := srv.toView(node)
		output = &usecase.ChildrenOutput{
			Parent:   &parent,
			Children: srv.toViews(children),
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list category children", slog.Any("error", err), slog.Any("category_id", nodeID))

		return nil, err
	}

	return output, nil
}

// ListOwn retrieves the merchant's own top-level nodes: owned nodes whose
// parent is either absent or not owned by the same merchant.
func (srv *categoryService) ListOwn(ctx context.Context, merchantUID string) ([]usecase.CategoryView, error) {
	srv.log(ctx).Debug("Listing own categories", slog.String("merchant_uid", merchantUID))

	var views []usecase.CategoryView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		owned, err := categoryRepo.ListByOwner(ctx, merchantUID)
		if err != nil {
			return errors.Wrap(err, "failed to list owned categories")
		}

		ownedIDs := make(map[uuid.UUID]struct{}, len(owned))
		for _, node := range owned {
			ownedIDs[node.ID] = struct{}{}
		}

		views = make([]usecase.CategoryView, 0, len(owned))
		for _, node := range owned {
			if node.ParentID != nil {
				if _, ok := ownedIDs[*node.ParentID]; ok {
					continue
				}
			}
			views = append(views, srv.toView(node))
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list own categories", slog.Any("error", err), slog.String("merchant_uid", merchantUID))

		return nil, err
	}

	return views, nil
}

// ListAvailableParents retrieves the subcategory tree a merchant may attach
// leaf categories to: each active root with its active children.
func (srv *categoryService) ListAvailableParents(ctx context.Context, merchantUID string) ([]usecase.CategoryTreeNode, error) {
	srv.log(ctx).Debug("Listing available parents", slog.String("merchant_uid", merchantUID))

	var tree []usecase.CategoryTreeNode

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		roots, err := categoryRepo.ListRoots(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list roots")
		}

		tree = make([]usecase.CategoryTreeNode, 0, len(roots))
		for _, root := range roots {
			if !root.IsSystemOwned() && !root.OwnedBy(merchantUID) {
				continue
			}

			children, err := categoryRepo.ListChildren(ctx, root.ID)
			if err != nil {
				return errors.Wrap(err, "failed to list children")
			}

			tree = append(tree, usecase.CategoryTreeNode{
				CategoryView: srv.toView(root),
				Children:     srv.toViews(children),
			})
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list available parents", slog.Any("error", err), slog.String("merchant_uid", merchantUID))

		return nil, err
	}

	return tree, nil
}

// Create adds a node owned by the merchant. The node may hang off any active
// parent; only update and delete are restricted to leaf level.
func (srv *categoryService) Create(ctx context.Context, merchantUID string, input *usecase.CreateCategoryInput) (*usecase.CategoryView, error) {
	srv.log(ctx).Debug("Creating category", slog.String("merchant_uid", merchantUID), slog.String("name", input.Name))

	if err := validateCategoryName(input.Name); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		SortOrder:   input.SortOrder,
		ImageURL:    input.ImageURL,
		OwnerUID:    merchantUID,
		ParentID:    input.ParentID,
		IsActive:    true,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		// 1. The parent, when given, must exist and be active.
		if input.ParentID != nil {
			if _, err := srv.findActiveParent(ctx, categoryRepo, *input.ParentID); err != nil {
				return err
			}
		}

		// 2. No active sibling may carry the same name for this owner.
		taken, err := categoryRepo.ExistsActiveSibling(ctx, input.Name, input.ParentID, merchantUID, nil)
		if err != nil {
			return errors.Wrap(err, "failed to check sibling uniqueness")
		}
		if taken {
			return domainerrors.ErrDuplicateCategory
		}

		// 3. Persist the node.
		if err := categoryRepo.Create(ctx, category); err != nil {
			return errors.Wrap(err, "failed to create category")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create category", slog.Any("error", err), slog.String("merchant_uid", merchantUID))

		return nil, err
	}
	srv.log(ctx).Info("Category created", slog.Any("category_id", category.ID), slog.String("merchant_uid", merchantUID))

	view := srv.toView(category)

	return &view, nil
}

// Update applies a field-presence-driven patch to a leaf node owned by the
// merchant. All gates and the write run in one transaction.
func (srv *categoryService) Update(ctx context.Context, merchantUID string, nodeID uuid.UUID, patch *usecase.UpdateCategoryInput) (*usecase.CategoryView, error) {
	srv.log(ctx).Debug("Updating category", slog.Any("category_id", nodeID), slog.String("merchant_uid", merchantUID))

	if patch.Empty() {
		return nil, domainerrors.ErrInvalidArgument.WithDetails("update patch carries no fields")
	}
	if patch.Name != nil {
		if err := validateCategoryName(*patch.Name); err != nil {
			return nil, err
		}
	}

	var updated *entity.Category

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		node, err := srv.gateOwnedLeaf(ctx, categoryRepo, merchantUID, nodeID)
		if err != nil {
			return err
		}

		// A new parent must be an active subcategory.
		if patch.ParentID != nil {
			parent, err := srv.findActiveParent(ctx, categoryRepo, *patch.ParentID)
			if err != nil {
				return err
			}

			parentLevel, err := srv.levelOf(ctx, categoryRepo, parent)
			if err != nil {
				return err
			}
			if parentLevel != levelSubcategory {
				return domainerrors.ErrInvalidParentLevel
			}
		}

		targetName := node.Name
		if patch.Name != nil {
			targetName = *patch.Name
		}
		targetParent := node.ParentID
		if patch.ParentID != nil {
			targetParent = patch.ParentID
		}

		// Name or parent changes re-check uniqueness under the target parent.
		if patch.Name != nil || patch.ParentID != nil {
			taken, err := categoryRepo.ExistsActiveSibling(ctx, targetName, targetParent, merchantUID, &node.ID)
			if err != nil {
				return errors.Wrap(err, "failed to check sibling uniqueness")
			}
			if taken {
				return domainerrors.ErrDuplicateCategory
			}
		}

		applyCategoryPatch(node, patch)

		if err := categoryRepo.Update(ctx, node); err != nil {
			return errors.Wrap(err, "failed to update category")
		}

		fresh, err := categoryRepo.FindByID(ctx, node.ID)
		if err != nil {
			return errors.Wrap(err, "failed to reload category")
		}
		updated = fresh

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update category", slog.Any("error", err), slog.Any("category_id", nodeID))

		return nil, err
	}
	srv.log(ctx).Info("Category updated", slog.Any("category_id", nodeID), slog.String("merchant_uid", merchantUID))

	view := srv.toView(updated)

	return &view, nil
}

// Delete permanently removes a childless leaf node owned by the merchant.
func (srv *categoryService) Delete(ctx context.Context, merchantUID string, nodeID uuid.UUID) (*usecase.DeleteCategoryOutput, error) {
	srv.log(ctx).Debug("Deleting category", slog.Any("category_id", nodeID), slog.String("merchant_uid", merchantUID))

	var output *usecase.DeleteCategoryOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		node, err := srv.gateOwnedLeaf(ctx, categoryRepo, merchantUID, nodeID)
		if err != nil {
			return err
		}

		count, err := categoryRepo.CountActiveChildren(ctx, node.ID)
		if err != nil {
			return errors.Wrap(err, "failed to count children")
		}
		if count > 0 {
			return domainerrors.ErrCategoryHasChildren
		}

		if err := categoryRepo.Delete(ctx, node.ID); err != nil {
			return errors.Wrap(err, "failed to delete category")
		}
		output = &usecase.DeleteCategoryOutput{ID: node.ID, Name: node.Name}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete category", slog.Any("error", err), slog.Any("category_id", nodeID))

		return nil, err
	}
	srv.log(ctx).Info("Category deleted", slog.Any("category_id", nodeID), slog.String("merchant_uid", merchantUID))

	return output, nil
}

// Level derives the node's depth by walking parent references.
func (srv *categoryService) Level(ctx context.Context, nodeID uuid.UUID) (int, error) {
	var level int

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		node, err := categoryRepo.FindByID(ctx, nodeID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return domainerrors.ErrCategoryNotFound
			}

			return errors.Wrap(err, "failed to find category")
		}

		level, err = srv.levelOf(ctx, categoryRepo, node)

		return err
	})
	if err != nil {
		return 0, err
	}

	return level, nil
}

// levelOf counts parent hops up to the root. A walk that exceeds the
// configured hop cap signals a corrupted hierarchy, not a deep one.
func (srv *categoryService) levelOf(ctx context.Context, categoryRepo repository.CategoryRepository, node *entity.Category) (int, error) {
	level := 0
	for current := node; current.ParentID != nil; level++ {
		if level >= srv.maxLevelHops {
			return 0, domainerrors.ErrHierarchyCorrupt
		}

		parent, err := categoryRepo.FindByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return 0, domainerrors.ErrHierarchyCorrupt.WithDetails("dangling parent reference")
			}

			return 0, errors.Wrap(err, "failed to walk parent chain")
		}
		current = parent
	}

	return level, nil
}

// gateOwnedLeaf runs the shared mutation gates in order: the node must exist
// and be active, belong to the merchant, and sit at leaf level.
func (srv *categoryService) gateOwnedLeaf(ctx context.Context, categoryRepo repository.CategoryRepository, merchantUID string, nodeID uuid.UUID) (*entity.Category, error) {
	node, err := srv.findActive(ctx, categoryRepo, nodeID)
	if err != nil {
		return nil, err
	}

	if !node.OwnedBy(merchantUID) {
		return nil, domainerrors.ErrForbidden.WithDetails("category belongs to another owner")
	}

	level, err := srv.levelOf(ctx, categoryRepo, node)
	if err != nil {
		return nil, err
	}
	if level != levelLeaf {
		return nil, domainerrors.ErrNotLeafCategory
	}

	return node, nil
}

func (srv *categoryService) findActive(ctx context.Context, categoryRepo repository.CategoryRepository, nodeID uuid.UUID) (*entity.Category, error) {
	node, err := categoryRepo.FindByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, domainerrors.ErrCategoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find category")
	}
	if !node.IsActive {
		return nil, domainerrors.ErrCategoryNotFound
	}

	return node, nil
}

func (srv *categoryService) findActiveParent(ctx context.Context, categoryRepo repository.CategoryRepository, parentID uuid.UUID) (*entity.Category, error) {
	parent, err := categoryRepo.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, domainerrors.ErrParentNotFound
		}

		return nil, errors.Wrap(err, "failed to find parent category")
	}
	if !parent.IsActive {
		return nil, domainerrors.ErrParentNotFound
	}

	return parent, nil
}

// applyCategoryPatch copies the present fields of the patch onto the entity.
// Absent fields keep their stored value.
func applyCategoryPatch(node *entity.Category, patch *usecase.UpdateCategoryInput) {
	if patch.Name != nil {
		node.Name = *patch.Name
	}
	if patch.Description != nil {
		node.Description = *patch.Description
	}
	if patch.Color != nil {
		node.Color = *patch.Color
	}
	if patch.Icon != nil {
		node.Icon = *patch.Icon
	}
	if patch.SortOrder != nil {
		node.SortOrder = *patch.SortOrder
	}
	if patch.ImageURL != nil {
		node.ImageURL = *patch.ImageURL
	}
	if patch.ParentID != nil {
		node.ParentID = patch.ParentID
	}
}

func validateCategoryName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > maxCategoryNameLength {
		return domainerrors.ErrValidationFailed.WithDetails("category name must be 1-100 characters")
	}

	return nil
}

// toView maps an entity to its read model, synthesizing an image URL from the
// configured base when the node carries none.
func (srv *categoryService) toView(node *entity.Category) usecase.CategoryView {
	imageURL := node.ImageURL
	if imageURL == "" && srv.imageBaseURL != "" {
		imageURL = srv.imageBaseURL + "/" + node.ID.String() + ".png"
	}

	return usecase.CategoryView{
		ID:          node.ID,
		Name:        node.Name,
		Description: node.Description,
		Color:       node.Color,
		Icon:        node.Icon,
		SortOrder:   node.SortOrder,
		ImageURL:    imageURL,
		OwnerUID:    node.OwnerUID,
		ParentID:    node.ParentID,
		CreatedAt:   node.CreatedAt,
		UpdatedAt:   node.UpdatedAt,
	}
}

func (srv *categoryService) toViews(nodes []*entity.Category) []usecase.CategoryView {
	views := make([]usecase.CategoryView, 0, len(nodes))
	for _, node := range nodes {
		views = append(views, srv.toView(node))
	}

	return views
}
