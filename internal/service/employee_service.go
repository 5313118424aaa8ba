package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// EmployeeService manages the user accounts of a firm.
type EmployeeService struct {
	users      repository.UserRepository
	guard      *Guard
	logger     *zap.Logger
	bcryptCost int
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	UserRepo   repository.UserRepository
	Guard      *Guard
	Logger     *zap.Logger
	BcryptCost int
}

// EmployeeCreateInput describes a new firm employee.
type EmployeeCreateInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		users:      deps.UserRepo,
		guard:      deps.Guard,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// ListEmployees lists the caller's firm members; a superuser sees every account.
func (s *EmployeeService) ListEmployees(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := s.guard.RequireFirmMember(actor); err != nil {
		return nil, err
	}
	var firmID *string
	if !actor.IsSuperuser() {
		firmID = actor.FirmID
	}
	users, err := s.users.ListByFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddEmployee creates a firm_employee account in the manager's firm.
func (s *EmployeeService) AddEmployee(ctx context.Context, actor domain.Actor, input EmployeeCreateInput) (*domain.User, error) {
	if err := s.guard.RequireManager(actor); err != nil {
		return nil, err
	}
	if !actor.HasFirm() {
		return nil, apperrors.NewForbiddenReason(apperrors.CodeNoFirm, "user must belong to a firm")
	}
	if fields := validateAccount(map[string]any{}, input.Username, input.Email, input.Password, ""); len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid employee", fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	firmID := *actor.FirmID
	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         domain.RoleFirmEmployee,
		FirmID:       &firmID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	s.logger.Info("employee added", zap.Int64("user_id", user.ID), zap.String("firm_id", firmID))
	return user, nil
}

// SetManager grants or revokes the manager role of a firm member. Managers cannot revoke their own role.
func (s *EmployeeService) SetManager(ctx context.Context, actor domain.Actor, userID int64, isManager bool) (*domain.User, error) {
	target, err := s.managedEmployee(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	if target.ID == actor.UserID && !isManager {
		return nil, apperrors.NewBadRequest(apperrors.CodeSelfDemotion, "you cannot revoke your own manager role")
	}
	if target.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("superuser roles are not managed here")
	}
	if target.FirmID == nil {
		return nil, apperrors.NewValidationError("user does not belong to a firm",
			map[string]any{"user_id": "has no firm"})
	}

	role := domain.RoleFirmEmployee
	if isManager {
		role = domain.RoleFirmManager
	}
	if target.Role == role {
		return target, nil
	}
	target.Role = role
	if err := s.users.Update(ctx, target); err != nil {
		return nil, mapRepoErr(err, "user")
	}
	s.logger.Info("employee role changed",
		zap.Int64("user_id", target.ID),
		zap.Int64("actor_id", actor.UserID),
		zap.String("role", string(role)))
	return target, nil
}

// RemoveEmployee deletes a firm member's account. Managers cannot delete themselves.
func (s *EmployeeService) RemoveEmployee(ctx context.Context, actor domain.Actor, userID int64) error {
	target, err := s.managedEmployee(ctx, actor, userID)
	if err != nil {
		return err
	}
	if target.ID == actor.UserID {
		return apperrors.NewBadRequest(apperrors.CodeSelfDelete, "you cannot delete your own account")
	}
	if target.Role == domain.RoleAdmin {
		return apperrors.NewForbidden("superuser accounts are not managed here")
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return mapRepoErr(err, "user")
	}
	s.logger.Info("employee removed", zap.Int64("user_id", target.ID), zap.Int64("actor_id", actor.UserID))
	return nil
}

// managedEmployee loads userID and checks the actor may manage them.
func (s *EmployeeService) managedEmployee(ctx context.Context, actor domain.Actor, userID int64) (*domain.User, error) {
	if err := s.guard.RequireManager(actor); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err, "user")
	}
	if actor.IsSuperuser() {
		return target, nil
	}
	if target.FirmID == nil || *target.FirmID != *actor.FirmID {
		return nil, apperrors.NewForbiddenReason(apperrors.CodeOtherFirm, "user belongs to another firm")
	}
	return target, nil
}
