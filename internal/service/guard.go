package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// Guard decides whether an actor may read or act on company-scoped resources.
// Every failure carries a distinct reason code.
type Guard struct {
	companies repository.CompanyRepository
}

// NewGuard constructs the guard.
func NewGuard(companies repository.CompanyRepository) *Guard {
	return &Guard{companies: companies}
}

func (g *Guard) RequireAuthenticated(actor domain.Actor) error {
	if !actor.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func (g *Guard) RequireSuperuser(actor domain.Actor) error {
	if err := g.RequireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsSuperuser() {
		return apperrors.NewForbiddenReason(apperrors.CodeNotSuperuser, "superuser required")
	}
	return nil
}

// RequireFirmMember admits superusers and users attached to a firm.
func (g *Guard) RequireFirmMember(actor domain.Actor) error {
	if err := g.RequireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsSuperuser() && !actor.HasFirm() {
		return apperrors.NewForbiddenReason(apperrors.CodeNoFirm, "user must belong to a firm")
	}
	return nil
}

// RequireManager admits superusers and firm managers attached to a firm.
func (g *Guard) RequireManager(actor domain.Actor) error {
	if err := g.RequireFirmMember(actor); err != nil {
		return err
	}
	if !actor.IsManager() {
		return apperrors.NewForbiddenReason(apperrors.CodeNotManager, "firm manager required")
	}
	return nil
}

// ResolveFirmCompany returns the company linked to the actor's firm. For a superuser it
// returns nil, meaning no company scope applies.
func (g *Guard) ResolveFirmCompany(ctx context.Context, actor domain.Actor) (*domain.Company, error) {
	if err := g.RequireFirmMember(actor); err != nil {
		return nil, err
	}
	if actor.IsSuperuser() {
		return nil, nil
	}
	company, err := g.companies.GetByFirmID(ctx, *actor.FirmID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noMatchingCompany(http.StatusForbidden)
		}
		return nil, err
	}
	return company, nil
}

// AuthorizeCompany checks that the actor owns companyID.
func (g *Guard) AuthorizeCompany(ctx context.Context, actor domain.Actor, companyID int64) error {
	company, err := g.ResolveFirmCompany(ctx, actor)
	if err != nil {
		return err
	}
	if company == nil {
		return nil
	}
	if company.ID != companyID {
		return apperrors.NewForbiddenReason(apperrors.CodeCompanyMismatch, "request belongs to another company")
	}
	return nil
}

// firmCompany resolves the actor's own company, requiring firm affiliation even for
// superusers. Used by operations that act on "my firm" rather than on an explicit id.
func (g *Guard) firmCompany(ctx context.Context, actor domain.Actor) (*domain.Company, error) {
	if err := g.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if !actor.HasFirm() {
		return nil, apperrors.NewForbiddenReason(apperrors.CodeNoFirm, "user must belong to a firm")
	}
	company, err := g.companies.GetByFirmID(ctx, *actor.FirmID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noMatchingCompany(http.StatusNotFound)
		}
		return nil, err
	}
	return company, nil
}

// noMatchingCompany reports a firm without a linked company. Acting on a request treats it as
// forbidden; reading "my firm" resources treats it as not found.
func noMatchingCompany(status int) error {
	return apperrors.NewDomainError(apperrors.CodeNoMatchingCompany, "no company is linked to the user's firm", status, nil)
}
