package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/statech108/backend/config"
	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCategoryService() (usecase.CategoryUsecase, *memoryTxManager) {
	txManager := newMemoryTxManager()
	cfg := &config.Config{
		Category: &config.CategoryConfig{
			MaxLevelHops: 10,
			ImageBaseURL: "https://cdn.example.com/categories",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewCategoryService(txManager, cfg, logger)

	return service, txManager
}

func seedCategory(txManager *memoryTxManager, name, ownerUID string, parentID *uuid.UUID, active bool) *entity.Category {
	category := &entity.Category{
		ID:        uuid.New(),
		Name:      name,
		OwnerUID:  ownerUID,
		ParentID:  parentID,
		IsActive:  active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	txManager.store.categories[category.ID] = category

	return category
}

// seedTree builds a system root > subcategory pair and returns both.
func seedTree(txManager *memoryTxManager) (root, sub *entity.Category) {
	root = seedCategory(txManager, "Services", "", nil, true)
	sub = seedCategory(txManager, "Tailoring", "", &root.ID, true)

	return root, sub
}

func TestCategoryService_Level(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)

	for _, tt := range []struct {
		name string
		id   uuid.UUID
		want int
	}{
		{"root", root.ID, 0},
		{"subcategory", sub.ID, 1},
		{"leaf", leaf.ID, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			level, err := service.Level(ctx, tt.id)

			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestCategoryService_Level_CorruptHierarchy(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	// Two nodes referencing each other form a cycle the walk can never leave.
	a := seedCategory(txManager, "A", "", nil, true)
	b := seedCategory(txManager, "B", "", &a.ID, true)
	a.ParentID = &b.ID

	_, err := service.Level(ctx, a.ID)

	require.Error(t, err)
	assert.ErrorContains(t, err, domainerrors.ErrHierarchyCorrupt.Message())
}

func TestCategoryService_Level_DanglingParent(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	missing := uuid.New()
	orphan := seedCategory(txManager, "Orphan", "", &missing, true)

	_, err := service.Level(ctx, orphan.ID)

	require.Error(t, err)
	assert.ErrorContains(t, err, domainerrors.ErrHierarchyCorrupt.Message())
}

func TestCategoryService_ListRoots(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, _ := seedTree(txManager)
	bare := seedCategory(txManager, "Empty Root", "", nil, true)
	seedCategory(txManager, "Hidden Root", "", nil, false)

	views, err := service.ListRoots(ctx)

	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[uuid.UUID]usecase.CategoryView, len(views))
	for _, view := range views {
		byID[view.ID] = view
	}

	require.NotNil(t, byID[root.ID].HasChildren)
	assert.True(t, *byID[root.ID].HasChildren)
	require.NotNil(t, byID[bare.ID].HasChildren)
	assert.False(t, *byID[bare.ID].HasChildren)

	// Nodes without a stored image get one synthesized from the base URL.
	assert.Equal(t, "https://cdn.example.com/categories/"+root.ID.String()+".png", byID[root.ID].ImageURL)
}

func TestCategoryService_ListChildren(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)

	output, err := service.ListChildren(ctx, root.ID)

	require.NoError(t, err)
	require.NotNil(t, output.Parent)
	assert.Equal(t, root.ID, output.Parent.ID)
	require.Len(t, output.Children, 1)
	assert.Equal(t, sub.ID, output.Children[0].ID)
	assert.Nil(t, output.Leaf)
}

func TestCategoryService_ListChildren_LeafCollapses(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)

	output, err := service.ListChildren(ctx, sub.ID)

	require.NoError(t, err)
	require.NotNil(t, output.Leaf)
	assert.Equal(t, sub.ID, output.Leaf.ID)
	assert.Nil(t, output.Parent)
	assert.Empty(t, output.Children)
}

func TestCategoryService_ListChildren_MissingOrInactive(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	inactive := seedCategory(txManager, "Retired", "", nil, false)

	_, err := service.ListChildren(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrCategoryNotFound)

	_, err = service.ListChildren(ctx, inactive.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCategoryNotFound)
}

func TestCategoryService_ListOwn(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)

	// The merchant's top node hangs off a system subcategory; its own child
	// must not appear as a top-level entry.
	top := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)
	seedCategory(txManager, "Men's Alterations", "M1234567", &top.ID, true)
	seedCategory(txManager, "Foreign", "M7654321", &sub.ID, true)

	views, err := service.ListOwn(ctx, "M1234567")

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, top.ID, views[0].ID)
}

func TestCategoryService_ListAvailableParents(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)
	foreignRoot := seedCategory(txManager, "Foreign Root", "M7654321", nil, true)
	seedCategory(txManager, "Foreign Sub", "M7654321", &foreignRoot.ID, true)

	tree, err := service.ListAvailableParents(ctx, "M1234567")

	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, sub.ID, tree[0].Children[0].ID)
}

func TestCategoryService_Create(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)

	view, err := service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{
		Name:     "Alterations",
		ParentID: &sub.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alterations", view.Name)
	assert.Equal(t, "M1234567", view.OwnerUID)
	require.NotNil(t, view.ParentID)
	assert.Equal(t, sub.ID, *view.ParentID)
}

func TestCategoryService_Create_ParentGates(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	inactive := seedCategory(txManager, "Retired", "", nil, false)
	missing := uuid.New()

	_, err := service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{Name: "X", ParentID: &missing})
	assert.ErrorIs(t, err, domainerrors.ErrParentNotFound)

	_, err = service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{Name: "X", ParentID: &inactive.ID})
	assert.ErrorIs(t, err, domainerrors.ErrParentNotFound)
}

func TestCategoryService_Create_SiblingUniqueness(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)

	_, err := service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{Name: "Alterations", ParentID: &sub.ID})
	require.NoError(t, err)

	// Same name, same parent, same owner: rejected.
	_, err = service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{Name: "Alterations", ParentID: &sub.ID})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateCategory)

	// A different owner may reuse the name under the same parent.
	_, err = service.Create(ctx, "M7654321", &usecase.CreateCategoryInput{Name: "Alterations", ParentID: &sub.ID})
	assert.NoError(t, err)
}

// Creation has no level restriction; only update and delete are leaf-gated.
func TestCategoryService_Create_AnyDepth(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)

	view, err := service.Create(ctx, "M1234567", &usecase.CreateCategoryInput{
		Name:     "Men's Alterations",
		ParentID: &leaf.ID,
	})

	require.NoError(t, err)

	level, err := service.Level(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
}

func TestCategoryService_Update_Gates(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)
	ownedRoot := seedCategory(txManager, "My Root", "M1234567", nil, true)
	ownedSub := seedCategory(txManager, "My Sub", "M1234567", &root.ID, true)

	name := "Renamed"
	patch := &usecase.UpdateCategoryInput{Name: &name}

	// Empty patch is rejected before any lookup.
	_, err := service.Update(ctx, "M1234567", leaf.ID, &usecase.UpdateCategoryInput{})
	assert.ErrorContains(t, err, domainerrors.ErrInvalidArgument.Message())

	// Missing node.
	_, err = service.Update(ctx, "M1234567", uuid.New(), patch)
	assert.ErrorIs(t, err, domainerrors.ErrCategoryNotFound)

	// Foreign owner, including the system tree.
	_, err = service.Update(ctx, "M7654321", leaf.ID, patch)
	assert.ErrorContains(t, err, domainerrors.ErrForbidden.Message())
	_, err = service.Update(ctx, "M1234567", sub.ID, patch)
	assert.ErrorContains(t, err, domainerrors.ErrForbidden.Message())

	// Root and subcategory levels are immutable even for their owner.
	_, err = service.Update(ctx, "M1234567", ownedRoot.ID, patch)
	assert.ErrorIs(t, err, domainerrors.ErrNotLeafCategory)
	_, err = service.Update(ctx, "M1234567", ownedSub.ID, patch)
	assert.ErrorIs(t, err, domainerrors.ErrNotLeafCategory)
}

func TestCategoryService_Update_PartialPatch(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)
	leaf.Description = "original description"
	leaf.SortOrder = 5

	newName := "Express Alterations"
	view, err := service.Update(ctx, "M1234567", leaf.ID, &usecase.UpdateCategoryInput{Name: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Express Alterations", view.Name)
	assert.Equal(t, "original description", view.Description)
	assert.Equal(t, 5, view.SortOrder)
}

func TestCategoryService_Update_Reparent(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)
	otherSub := seedCategory(txManager, "Dry Cleaning", "", &root.ID, true)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)

	// A root is not a valid parent target.
	_, err := service.Update(ctx, "M1234567", leaf.ID, &usecase.UpdateCategoryInput{ParentID: &root.ID})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidParentLevel)

	// A missing parent target.
	missing := uuid.New()
	_, err = service.Update(ctx, "M1234567", leaf.ID, &usecase.UpdateCategoryInput{ParentID: &missing})
	assert.ErrorIs(t, err, domainerrors.ErrParentNotFound)

	// Moving under another subcategory works.
	view, err := service.Update(ctx, "M1234567", leaf.ID, &usecase.UpdateCategoryInput{ParentID: &otherSub.ID})
	require.NoError(t, err)
	require.NotNil(t, view.ParentID)
	assert.Equal(t, otherSub.ID, *view.ParentID)
}

func TestCategoryService_Update_RenameConflict(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)
	seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)
	other := seedCategory(txManager, "Repairs", "M1234567", &sub.ID, true)

	taken := "Alterations"
	_, err := service.Update(ctx, "M1234567", other.ID, &usecase.UpdateCategoryInput{Name: &taken})

	assert.ErrorIs(t, err, domainerrors.ErrDuplicateCategory)
}

func TestCategoryService_Delete(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	_, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)

	output, err := service.Delete(ctx, "M1234567", leaf.ID)

	require.NoError(t, err)
	assert.Equal(t, leaf.ID, output.ID)
	assert.Equal(t, "Alterations", output.Name)
	assert.NotContains(t, txManager.store.categories, leaf.ID)
}

func TestCategoryService_Delete_Gates(t *testing.T) {
	service, txManager := newTestCategoryService()
	ctx := context.Background()

	root, sub := seedTree(txManager)
	leaf := seedCategory(txManager, "Alterations", "M1234567", &sub.ID, true)
	seedCategory(txManager, "Men's Alterations", "M1234567", &leaf.ID, true)
	ownedSub := seedCategory(txManager, "My Sub", "M1234567", &root.ID, true)

	// Active children block deletion.
	_, err := service.Delete(ctx, "M1234567", leaf.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCategoryHasChildren)

	// Foreign owner.
	_, err = service.Delete(ctx, "M7654321", leaf.ID)
	assert.ErrorContains(t, err, domainerrors.ErrForbidden.Message())

	// Subcategories cannot be deleted even by their owner.
	_, err = service.Delete(ctx, "M1234567", ownedSub.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotLeafCategory)
}

// Full merchant journey: register, attach a leaf to the system tree, rename
// it, hit the structural guards, then clean up.
func TestCategoryService_MerchantJourney(t *testing.T) {
	txManager := newMemoryTxManager()
	cfg := &config.Config{Category: &config.CategoryConfig{MaxLevelHops: 10}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := NewAccountService(txManager, fakeHasher{}, &fakeTokenService{ttl: 24 * time.Hour}, logger)
	categories := NewCategoryService(txManager, cfg, logger)
	ctx := context.Background()

	registered, err := accounts.RegisterMerchant(ctx, &usecase.RegisterMerchantInput{
		BusinessName: "Acme Tailors",
		Address:      "1 Needle Street",
		Mobile:       "0912345678",
		Password:     "correct horse",
	})
	require.NoError(t, err)
	merchantUID := registered.Identity.MerchantUID

	root := seedCategory(txManager, "Services", "", nil, true)
	sub := seedCategory(txManager, "Tailoring", "", &root.ID, true)

	// Attach a leaf to the system subcategory.
	leaf, err := categories.Create(ctx, merchantUID, &usecase.CreateCategoryInput{
		Name:     "Alterations",
		ParentID: &sub.ID,
	})
	require.NoError(t, err)

	own, err := categories.ListOwn(ctx, merchantUID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, leaf.ID, own[0].ID)

	// The system tree is off-limits to the merchant.
	name := "Hijacked"
	_, err = categories.Update(ctx, merchantUID, sub.ID, &usecase.UpdateCategoryInput{Name: &name})
	assert.ErrorContains(t, err, domainerrors.ErrForbidden.Message())

	// A deeper node can be created but never modified or removed.
	deep, err := categories.Create(ctx, merchantUID, &usecase.CreateCategoryInput{
		Name:     "Men's Alterations",
		ParentID: &leaf.ID,
	})
	require.NoError(t, err)

	_, err = categories.Update(ctx, merchantUID, deep.ID, &usecase.UpdateCategoryInput{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotLeafCategory)
	_, err = categories.Delete(ctx, merchantUID, deep.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotLeafCategory)

	// The leaf itself cannot go while the deeper node is active.
	_, err = categories.Delete(ctx, merchantUID, leaf.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCategoryHasChildren)

	// Deactivating the deeper node unblocks the delete.
	txManager.store.categories[deep.ID].IsActive = false
	deleted, err := categories.Delete(ctx, merchantUID, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alterations", deleted.Name)
}
