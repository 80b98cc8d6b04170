package impl

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/statech108/backend/internal/domain/entity"
	"github.com/statech108/backend/internal/domain/repository"
	"github.com/statech108/backend/internal/domain/service"

	"github.com/google/uuid"
)

// memoryStore is a shared in-memory backing store for the fake repositories.
// A single store stands in for one database, so the fake transaction manager
// can hand out repositories bound to the same state.
type memoryStore struct {
	customers  map[uuid.UUID]*entity.Customer
	merchants  map[uuid.UUID]*entity.Merchant
	categories map[uuid.UUID]*entity.Category
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		customers:  make(map[uuid.UUID]*entity.Customer),
		merchants:  make(map[uuid.UUID]*entity.Merchant),
		categories: make(map[uuid.UUID]*entity.Category),
	}
}

// --- customer repository ---

type memoryCustomerRepo struct {
	store *memoryStore
}

func (r *memoryCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	cloned := *customer
	r.store.customers[customer.ID] = &cloned

	return nil
}

func (r *memoryCustomerRepo) FindByHandle(_ context.Context, handle string) (*entity.Customer, error) {
	for _, customer := range r.store.customers {
		if customer.Handle == handle {
			cloned := *customer

			return &cloned, nil
		}
	}

	return nil, repository.ErrCustomerNotFound
}

func (r *memoryCustomerRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, customer := range r.store.customers {
		if customer.IsActive && customer.Email != nil && *customer.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *memoryCustomerRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	customer, ok := r.store.customers[id]
	if !ok {
		return repository.ErrCustomerNotFound
	}
	customer.LastLoginAt = &at
	customer.UpdatedAt = at

	return nil
}

// --- merchant repository ---

type memoryMerchantRepo struct {
	store *memoryStore
}

func (r *memoryMerchantRepo) Create(_ context.Context, merchant *entity.Merchant) error {
	if merchant.ID == uuid.Nil {
		merchant.ID = uuid.New()
	}
	now := time.Now()
	merchant.CreatedAt = now
	merchant.UpdatedAt = now

	cloned := *merchant
	r.store.merchants[merchant.ID] = &cloned

	return nil
}

func (r *memoryMerchantRepo) FindByUID(_ context.Context, merchantUID string) (*entity.Merchant, error) {
	for _, merchant := range r.store.merchants {
		if merchant.MerchantUID == merchantUID {
			cloned := *merchant

			return &cloned, nil
		}
	}

	return nil, repository.ErrMerchantNotFound
}

func (r *memoryMerchantRepo) FindByMobile(_ context.Context, mobile string) (*entity.Merchant, error) {
	for _, merchant := range r.store.merchants {
		if merchant.Mobile == mobile {
			cloned := *merchant

			return &cloned, nil
		}
	}

	return nil, repository.ErrMerchantNotFound
}

func (r *memoryMerchantRepo) ExistsByUID(_ context.Context, merchantUID string) (bool, error) {
	_, err := r.FindByUID(context.Background(), merchantUID)
	if err == nil {
		return true, nil
	}

	return false, nil
}

func (r *memoryMerchantRepo) ExistsByMobile(_ context.Context, mobile string) (bool, error) {
	_, err := r.FindByMobile(context.Background(), mobile)
	if err == nil {
		return true, nil
	}

	return false, nil
}

func (r *memoryMerchantRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	merchant, ok := r.store.merchants[id]
	if !ok {
		return repository.ErrMerchantNotFound
	}
	merchant.LastLoginAt = &at
	merchant.UpdatedAt = at

	return nil
}

// --- category repository ---

type memoryCategoryRepo struct {
	store *memoryStore
}

func (r *memoryCategoryRepo) Create(_ context.Context, category *entity.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	cloned := *category
	r.store.categories[category.ID] = &cloned

	return nil
}

func (r *memoryCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	category, ok := r.store.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cloned := *category

	return &cloned, nil
}

func (r *memoryCategoryRepo) ListRoots(_ context.Context) ([]*entity.Category, error) {
	var result []*entity.Category
	for _, category := range r.store.categories {
		if category.ParentID == nil && category.IsActive {
			cloned := *category
			result = append(result, &cloned)
		}
	}
	sortCategories(result)

	return result, nil
}

func (r *memoryCategoryRepo) ListChildren(_ context.Context, parentID uuid.UUID) ([]*entity.Category, error) {
	var result []*entity.Category
	for _, category := range r.store.categories {
		if category.ParentID != nil && *category.ParentID == parentID && category.IsActive {
			cloned := *category
			result = append(result, &cloned)
		}
	}
	sortCategories(result)

	return result, nil
}

func (r *memoryCategoryRepo) ListByOwner(_ context.Context, ownerUID string) ([]*entity.Category, error) {
	var result []*entity.Category
	for _, category := range r.store.categories {
		if category.OwnerUID == ownerUID && category.IsActive {
			cloned := *category
			result = append(result, &cloned)
		}
	}
	sortCategories(result)

	return result, nil
}

func (r *memoryCategoryRepo) CountActiveChildren(_ context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	for _, category := range r.store.categories {
		if category.ParentID != nil && *category.ParentID == parentID && category.IsActive {
			count++
		}
	}

	return count, nil
}

func (r *memoryCategoryRepo) HasActiveChildren(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		count, _ := r.CountActiveChildren(context.Background(), id)
		if count > 0 {
			result[id] = true
		}
	}

	return result, nil
}

func (r *memoryCategoryRepo) ExistsActiveSibling(_ context.Context, name string, parentID *uuid.UUID, ownerUID string, excludeID *uuid.UUID) (bool, error) {
	for _, category := range r.store.categories {
		if !category.IsActive || category.Name != name || category.OwnerUID != ownerUID {
			continue
		}
		if excludeID != nil && category.ID == *excludeID {
			continue
		}
		switch {
		case parentID == nil && category.ParentID == nil:
			return true, nil
		case parentID != nil && category.ParentID != nil && *parentID == *category.ParentID:
			return true, nil
		}
	}

	return false, nil
}

func (r *memoryCategoryRepo) Update(_ context.Context, category *entity.Category) error {
	stored, ok := r.store.categories[category.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}

	cloned := *category
	cloned.CreatedAt = stored.CreatedAt
	cloned.UpdatedAt = time.Now()
	r.store.categories[category.ID] = &cloned

	return nil
}

func (r *memoryCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(r.store.categories, id)

	return nil
}

func sortCategories(categories []*entity.Category) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}

		return categories[i].Name < categories[j].Name
	})
}

// --- transaction manager ---

// memoryTxManager executes the function directly against the shared store;
// rollback semantics are not simulated.
type memoryTxManager struct {
	store *memoryStore
}

func newMemoryTxManager() *memoryTxManager {
	return &memoryTxManager{store: newMemoryStore()}
}

func (m *memoryTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return fn(&memoryRepoFactory{store: m.store})
}

type memoryRepoFactory struct {
	store *memoryStore
}

func (f *memoryRepoFactory) CustomerRepo() repository.CustomerRepository {
	return &memoryCustomerRepo{store: f.store}
}

func (f *memoryRepoFactory) MerchantRepo() repository.MerchantRepository {
	return &memoryMerchantRepo{store: f.store}
}

func (f *memoryRepoFactory) CategoryRepo() repository.CategoryRepository {
	return &memoryCategoryRepo{store: f.store}
}

// --- domain service fakes ---

// fakeHasher is a reversible stand-in for bcrypt so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService encodes claims into a cleartext token string.
type fakeTokenService struct {
	ttl time.Duration
}

func (s *fakeTokenService) Issue(claims service.Claims) (string, error) {
	return strings.Join([]string{"token", claims.Subject.String(), claims.Role.String(), claims.MerchantUID}, "|"), nil
}

func (s *fakeTokenService) Verify(token string) (*service.Claims, error) {
	parts := strings.Split(token, "|")
	subject, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, err
	}

	return &service.Claims{
		Subject:     subject,
		Role:        entity.Role(parts[2]),
		MerchantUID: parts[3],
		ExpiresAt:   time.Now().Add(s.ttl),
	}, nil
}

func (s *fakeTokenService) ExtractExpiry(string) (time.Time, error) {
	return time.Now().Add(s.ttl), nil
}

func (s *fakeTokenService) TokenTTL() time.Duration {
	return s.ttl
}
