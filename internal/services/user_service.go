package services

import (
	"context"
	"errors"
	"time"

	"github.com/crestline-ir/internal/db/models"
	"github.com/crestline-ir/internal/store"
	"github.com/crestline-ir/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles user administration and the NDA status record. The
// e-signature webhook is the only path that marks an NDA signed; this service
// otherwise only reads NDA state and offers the admin reset.
type UserService struct {
	users     store.UserStore
	ndaStatus store.NdaStatusStore
	grants    store.GrantStore
	audit     *AuditService
	logger    *zap.Logger
	metrics   *metrics.MetricsCollector
}

func NewUserService(stores *store.Stores, audit *AuditService, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *UserService {
	return &UserService{
		users:     stores.Users,
		ndaStatus: stores.NdaStatus,
		grants:    stores.Grants,
		audit:     audit,
		logger:    logger.With(zap.String("service", "user_service")),
		metrics:   metricsCollector,
	}
}

// CreateUser creates the account and its NDA record, unsigned.
func (us *UserService) CreateUser(ctx context.Context, email, displayName, password string, role models.UserRole) (*models.User, error) {
	if email == "" {
		return nil, validationErrorf("email is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		ActiveStatus: true,
	}
	if err := us.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := us.ndaStatus.Create(ctx, &models.NdaStatus{UserID: user.ID}); err != nil {
		return nil, err
	}

	us.logger.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(role)))
	return user, nil
}

func (us *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.ActiveStatus {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		us.metrics.IncrementCounter("auth.failed_logins", nil)
		return nil, ErrInvalidCredentials
	}

	if err := us.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		us.logger.Warn("last login update failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

func (us *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return us.users.Get(ctx, id)
}

func (us *UserService) List(ctx context.Context) ([]models.User, error) {
	return us.users.List(ctx)
}

func (us *UserService) GetNdaStatus(ctx context.Context, userID uint) (*models.NdaStatus, error) {
	return us.ndaStatus.GetByUser(ctx, userID)
}

// MarkNdaSigned is invoked by the e-signature callback. Signed and signedAt
// are written together.
func (us *UserService) MarkNdaSigned(ctx context.Context, userID uint, signedAt time.Time) error {
	if err := us.ndaStatus.SetSigned(ctx, userID, signedAt); err != nil {
		return err
	}

	us.audit.Record(ctx, userID, models.ActionNdaSigned, map[string]interface{}{
		"user_id":   userID,
		"signed_at": signedAt.Format(time.RFC3339),
	})
	us.metrics.IncrementCounter("nda.signed", nil)
	us.logger.Info("NDA signed", zap.Uint("user_id", userID))
	return nil
}

// ResetNda clears signed and signedAt together, forcing the user back through
// the signature flow before any document becomes visible again.
func (us *UserService) ResetNda(ctx context.Context, userID, actorID uint) error {
	if err := us.ndaStatus.Clear(ctx, userID); err != nil {
		return err
	}

	us.audit.Record(ctx, actorID, models.ActionNdaReset, map[string]interface{}{
		"user_id": userID,
	})
	us.metrics.IncrementCounter("nda.reset", nil)
	return nil
}

func (us *UserService) ChangeRole(ctx context.Context, userID uint, role models.UserRole, actorID uint) error {
	if role != models.RoleInvestor && role != models.RoleAdmin {
		return validationErrorf("unknown role %q", role)
	}

	if err := us.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	us.audit.Record(ctx, actorID, models.ActionRoleChanged, map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
	})
	return nil
}

// DeleteUser cascades: grants, NDA record, then the account.
func (us *UserService) DeleteUser(ctx context.Context, userID, actorID uint) error {
	if _, err := us.users.Get(ctx, userID); err != nil {
		return err
	}

	if err := us.grants.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := us.ndaStatus.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := us.users.Delete(ctx, userID); err != nil {
		return err
	}

	us.audit.Record(ctx, actorID, models.ActionUserDeleted, map[string]interface{}{
		"user_id": userID,
	})
	us.logger.Info("User deleted", zap.Uint("user_id", userID))
	return nil
}
