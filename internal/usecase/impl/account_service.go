// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	deliverycontext "github.com/statech108/backend/internal/delivery/context"
	"github.com/statech108/backend/internal/domain/entity"
	domainerrors "github.com/statech108/backend/internal/domain/errors"
	"github.com/statech108/backend/internal/domain/repository"
	"github.com/statech108/backend/internal/domain/service"
	"github.com/statech108/backend/internal/usecase"

	"github.com/pkg/errors"
)

const (
	// merchantUIDAlphabet is the character set for the random part of a merchant UID.
	merchantUIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// merchantUIDRandomLength is the number of random characters after the "M" prefix.
	merchantUIDRandomLength = 7

	// merchantUIDMaxAttempts bounds the collision-check loop during registration.
	merchantUIDMaxAttempts = 10

	// minPasswordLength is the minimum accepted password length for both domains.
	minPasswordLength = 8
)

var (
	handleRegexp = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	mobileRegexp = regexp.MustCompile(`^[0-9]{10,15}$`)
	emailRegexp  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager      repository.TransactionManager
	passwordHasher service.PasswordHasher
	tokenService   service.TokenService
	logger         *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(
	txManager repository.TransactionManager,
	passwordHasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) usecase.AccountUsecase {
	return &accountService{
		txManager:      txManager,
		passwordHasher: passwordHasher,
		tokenService:   tokenService,
		logger:         logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterCustomer creates a customer account and issues its first credential.
func (srv *accountService) RegisterCustomer(ctx context.Context, input *usecase.RegisterCustomerInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Registering customer", slog.String("handle", input.Handle))

	if !handleRegexp.MatchString(input.Handle) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("handle must be 3-50 characters of letters, digits or underscore")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters")
	}
	if input.Email != "" && !emailRegexp.MatchString(input.Email) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is not a valid address")
	}

	passwordHash, err := srv.passwordHasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password")
	}

	customer := &entity.Customer{
		Handle:       input.Handle,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if input.Email != "" {
		email := input.Email
		customer.Email = &email
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		customerRepo := repoFactory.CustomerRepo()

		// 1. Reject a taken handle before hitting the unique index.
		_, err := customerRepo.FindByHandle(ctx, input.Handle)
		if err == nil {
			return domainerrors.ErrHandleTaken
		}
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			return errors.Wrap(err, "failed to check handle availability")
		}

		// 2. Email uniqueness only matters when one was supplied.
		if customer.Email != nil {
			taken, err := customerRepo.ExistsByEmail(ctx, *customer.Email)
			if err != nil {
				return errors.Wrap(err, "failed to check email availability")
			}
			if taken {
				return domainerrors.ErrEmailTaken
			}
		}

		// 3. Persist the new customer.
		if err := customerRepo.Create(ctx, customer); err != nil {
			return errors.Wrap(err, "failed to create customer")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to register customer", slog.Any("error", err), slog.String("handle", input.Handle))

		return nil, err
	}

	output, err := srv.issueCustomerCredential(customer)
	if err != nil {
		srv.log(ctx).Error("Failed to issue credential", slog.Any("error", err), slog.Any("customer_id", customer.ID))

		return nil, err
	}
	srv.log(ctx).Info("Customer registered", slog.Any("customer_id", customer.ID), slog.String("handle", customer.Handle))

	return output, nil
}

// LoginCustomer verifies a customer's credentials and issues a fresh token.
// Every failure mode collapses into the same invalid-credentials error so the
// response never reveals whether the handle exists.
func (srv *accountService) LoginCustomer(ctx context.Context, input *usecase.LoginCustomerInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Customer login attempt", slog.String("handle", input.Handle))

	if input.Handle == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("handle and password are required")
	}

	var customer *entity.Customer

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		customerRepo := repoFactory.CustomerRepo()

		found, err := customerRepo.FindByHandle(ctx, input.Handle)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find customer")
		}

		if !found.IsActive {
			return domainerrors.ErrInvalidCredentials
		}
		if !srv.passwordHasher.Check(input.Password, found.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		if err := customerRepo.UpdateLastLogin(ctx, found.ID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to record login")
		}
		customer = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Customer login failed", slog.Any("error", err), slog.String("handle", input.Handle))

		return nil, err
	}

	output, err := srv.issueCustomerCredential(customer)
	if err != nil {
		srv.log(ctx).Error("Failed to issue credential", slog.Any("error", err), slog.Any("customer_id", customer.ID))

		return nil, err
	}
	srv.log(ctx).Info("Customer logged in", slog.Any("customer_id", customer.ID), slog.String("handle", customer.Handle))

	return output, nil
}

// RegisterMerchant creates a merchant account with a freshly allocated
// merchant UID and issues its first credential.
func (srv *accountService) RegisterMerchant(ctx context.Context, input *usecase.RegisterMerchantInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Registering merchant", slog.String("business_name", input.BusinessName))

	if input.BusinessName == "" || input.Address == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("business name and address are required")
	}
	if !mobileRegexp.MatchString(input.Mobile) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("mobile must be 10-15 digits")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrValidationFailed.WithDetails("password must be at least 8 characters")
	}
	if input.Email != "" && !emailRegexp.MatchString(input.Email) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is not a valid address")
	}

	passwordHash, err := srv.passwordHasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password")
	}

	merchant := &entity.Merchant{
		BusinessName: input.BusinessName,
		Address:      input.Address,
		Mobile:       input.Mobile,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if input.Email != "" {
		email := input.Email
		merchant.Email = &email
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		merchantRepo := repoFactory.MerchantRepo()

		// 1. Mobile is the merchant's human-memorable login selector.
		taken, err := merchantRepo.ExistsByMobile(ctx, input.Mobile)
		if err != nil {
			return errors.Wrap(err, "failed to check mobile availability")
		}
		if taken {
			return domainerrors.ErrMobileTaken
		}

		// 2. Allocate a collision-free merchant UID.
		merchantUID, err := srv.allocateMerchantUID(ctx, merchantRepo)
		if err != nil {
			return err
		}
		merchant.MerchantUID = merchantUID

		// 3. Persist the new merchant.
		if err := merchantRepo.Create(ctx, merchant); err != nil {
			return errors.Wrap(err, "failed to create merchant")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to register merchant", slog.Any("error", err), slog.String("business_name", input.BusinessName))

		return nil, err
	}

	output, err := srv.issueMerchantCredential(merchant)
	if err != nil {
		srv.log(ctx).Error("Failed to issue credential", slog.Any("error", err), slog.Any("merchant_id", merchant.ID))

		return nil, err
	}
	srv.log(ctx).Info("Merchant registered",
		slog.Any("merchant_id", merchant.ID),
		slog.String("merchant_uid", merchant.MerchantUID))

	return output, nil
}

// LoginMerchant verifies a merchant's credentials and issues a fresh token.
// Exactly one of merchant UID or mobile selects the account; failures collapse
// into the same invalid-credentials error.
func (srv *accountService) LoginMerchant(ctx context.Context, input *usecase.LoginMerchantInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Merchant login attempt")

	hasUID := input.MerchantUID != ""
	hasMobile := input.Mobile != ""
	if hasUID == hasMobile {
		return nil, domainerrors.ErrValidationFailed.WithDetails("exactly one of merchant_uid or mobile is required")
	}
	if input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("password is required")
	}

	var merchant *entity.Merchant

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		merchantRepo := repoFactory.MerchantRepo()

		var (
			found *entity.Merchant
			err   error
		)
		if hasUID {
			found, err = merchantRepo.FindByUID(ctx, input.MerchantUID)
		} else {
			found, err = merchantRepo.FindByMobile(ctx, input.Mobile)
		}
		if err != nil {
			if errors.Is(err, repository.ErrMerchantNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find merchant")
		}

		if !found.IsActive {
			return domainerrors.ErrInvalidCredentials
		}
		if !srv.passwordHasher.Check(input.Password, found.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		if err := merchantRepo.UpdateLastLogin(ctx, found.ID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to record login")
		}
		merchant = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Merchant login failed", slog.Any("error", err))

		return nil, err
	}

	output, err := srv.issueMerchantCredential(merchant)
	if err != nil {
		srv.log(ctx).Error("Failed to issue credential", slog.Any("error", err), slog.Any("merchant_id", merchant.ID))

		return nil, err
	}
	srv.log(ctx).Info("Merchant logged in",
		slog.Any("merchant_id", merchant.ID),
		slog.String("merchant_uid", merchant.MerchantUID))

	return output, nil
}

// allocateMerchantUID generates "M" + 7 random alphanumerics and re-checks the
// store for collisions. The attempt loop is bounded; exhaustion is reported as
// an internal allocation failure rather than retried forever.
func (srv *accountService) allocateMerchantUID(ctx context.Context, merchantRepo repository.MerchantRepository) (string, error) {
	for attempt := 0; attempt < merchantUIDMaxAttempts; attempt++ {
		candidate, err := generateMerchantUID()
		if err != nil {
			return "", errors.Wrap(err, "failed to generate merchant uid")
		}

		exists, err := merchantRepo.ExistsByUID(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "failed to check merchant uid availability")
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", domainerrors.ErrMerchantIDExhausted
}

// generateMerchantUID produces a candidate merchant UID from a CSPRNG.
func generateMerchantUID() (string, error) {
	buf := make([]byte, 0, merchantUIDRandomLength+1)
	buf = append(buf, 'M')

	alphabetSize := big.NewInt(int64(len(merchantUIDAlphabet)))
	for i := 0; i < merchantUIDRandomLength; i++ {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}
		buf = append(buf, merchantUIDAlphabet[idx.Int64()])
	}

	return string(buf), nil
}

func (srv *accountService) issueCustomerCredential(customer *entity.Customer) (*usecase.AuthOutput, error) {
	expiresAt := time.Now().Add(srv.tokenService.TokenTTL())

	token, err := srv.tokenService.Issue(service.Claims{
		Subject:     customer.ID,
		Role:        entity.RoleCustomer,
		DisplayName: customer.Handle,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	identity := usecase.Identity{
		ID:          customer.ID.String(),
		Role:        entity.RoleCustomer.String(),
		DisplayName: customer.Handle,
	}
	if customer.Email != nil {
		identity.Email = *customer.Email
	}

	return &usecase.AuthOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}

func (srv *accountService) issueMerchantCredential(merchant *entity.Merchant) (*usecase.AuthOutput, error) {
	expiresAt := time.Now().Add(srv.tokenService.TokenTTL())

	token, err := srv.tokenService.Issue(service.Claims{
		Subject:     merchant.ID,
		Role:        entity.RoleMerchant,
		DisplayName: merchant.BusinessName,
		MerchantUID: merchant.MerchantUID,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	identity := usecase.Identity{
		ID:          merchant.ID.String(),
		Role:        entity.RoleMerchant.String(),
		DisplayName: merchant.BusinessName,
		MerchantUID: merchant.MerchantUID,
	}
	if merchant.Email != nil {
		identity.Email = *merchant.Email
	}

	return &usecase.AuthOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}
