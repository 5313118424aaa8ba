package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/auth"
	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/events"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// FirmService registers firms and exposes the caller's firm.
type FirmService struct {
	firms      repository.FirmRepository
	guard      *Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// FirmDependencies bundles collaborators for the firm service.
type FirmDependencies struct {
	FirmRepo   repository.FirmRepository
	Guard      *Guard
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
}

// FirmRegisterInput describes a new firm, its storefront company and its first manager.
type FirmRegisterInput struct {
	Name            string
	Slug            string
	Location        *string
	CompanyName     string
	Description     string
	ManagerUsername string
	ManagerEmail    string
	ManagerFullName string
	ManagerPassword string
}

// FirmRegistration is the result of a successful registration.
type FirmRegistration struct {
	Firm    *domain.Firm
	Company *domain.Company
	Manager *domain.User
}

// NewFirmService constructs the service.
func NewFirmService(deps FirmDependencies) *FirmService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirmService{
		firms:      deps.FirmRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// RegisterFirm creates the firm, its company linked by firm id and a manager account in one write.
func (s *FirmService) RegisterFirm(ctx context.Context, actor domain.Actor, input FirmRegisterInput) (*FirmRegistration, error) {
	if err := s.guard.RequireSuperuser(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	slug := slugify(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	fields := map[string]any{}
	if name == "" {
		fields["name"] = "required"
	} else if slug == "" {
		fields["slug"] = "cannot be derived from name"
	}
	fields = validateAccount(fields, input.ManagerUsername, input.ManagerEmail, input.ManagerPassword, "manager_")
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid firm registration", fields)
	}

	hash, err := auth.HashPassword(input.ManagerPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		companyName = name
	}
	location := ""
	if input.Location != nil {
		location = strings.TrimSpace(*input.Location)
	}

	firm := &domain.Firm{
		ID:       uuid.NewString(),
		Name:     name,
		Slug:     slug,
		Location: input.Location,
		IsActive: true,
	}
	company := &domain.Company{
		Name:         companyName,
		Slug:         slug,
		Description:  strings.TrimSpace(input.Description),
		LocationText: location,
	}
	manager := &domain.User{
		Username:     strings.TrimSpace(input.ManagerUsername),
		Email:        strings.TrimSpace(input.ManagerEmail),
		FullName:     strings.TrimSpace(input.ManagerFullName),
		PasswordHash: hash,
		Role:         domain.RoleFirmManager,
		IsActive:     true,
	}
	if err := s.firms.Register(ctx, firm, company, manager); err != nil {
		return nil, mapRepoErr(err, "firm, company or user")
	}

	s.logger.Info("firm registered",
		zap.String("firm_id", firm.ID),
		zap.Int64("company_id", company.ID),
		zap.Int64("manager_id", manager.ID))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventFirmRegistered,
		Actor: events.ActorFrom(actor),
		Payload: events.FirmRegisteredPayload{
			FirmID:    firm.ID,
			CompanyID: company.ID,
			ManagerID: manager.ID,
		},
	})
	return &FirmRegistration{Firm: firm, Company: company, Manager: manager}, nil
}

// GetFirm returns the caller's firm.
func (s *FirmService) GetFirm(ctx context.Context, actor domain.Actor) (*domain.Firm, error) {
	if err := s.guard.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if !actor.HasFirm() {
		return nil, apperrors.NewForbiddenReason(apperrors.CodeNoFirm, "user must belong to a firm")
	}
	firm, err := s.firms.GetByID(ctx, *actor.FirmID)
	if err != nil {
		return nil, mapRepoErr(err, "firm")
	}
	return firm, nil
}

// validateAccount records problems with account fields under prefix-qualified keys.
func validateAccount(fields map[string]any, username, email, password, prefix string) map[string]any {
	if strings.TrimSpace(username) == "" {
		fields[prefix+"username"] = "required"
	}
	if strings.TrimSpace(email) == "" {
		fields[prefix+"email"] = "required"
	} else if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		fields[prefix+"email"] = "invalid email address"
	}
	if len(password) < 8 {
		fields[prefix+"password"] = "must be at least 8 characters"
	}
	return fields
}
