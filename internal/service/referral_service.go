package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/domain"
	"github.com/spec-kit/referral-service/internal/events"
	"github.com/spec-kit/referral-service/internal/observability"
	"github.com/spec-kit/referral-service/internal/repository"
	apperrors "github.com/spec-kit/referral-service/pkg/util/errorutil"
)

// ReferralService runs the referral lifecycle: creation, firm decisions and the timeout sweep.
type ReferralService struct {
	referrals  repository.ReferralRepository
	companies  repository.CompanyRepository
	services   repository.ServiceRepository
	guard      *Guard
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	commission decimal.Decimal
	timeout    time.Duration
	now        func() time.Time
}

// ReferralDependencies bundles collaborators for the referral service.
type ReferralDependencies struct {
	ReferralRepo     repository.ReferralRepository
	CompanyRepo      repository.CompanyRepository
	ServiceRepo      repository.ServiceRepository
	Guard            *Guard
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	CommissionAmount decimal.Decimal
	Timeout          time.Duration
}

// ReferralCreateInput describes a customer's referral submission.
type ReferralCreateInput struct {
	TargetCompanyID    int64
	RequestedServiceID int64
	CustomerName       string
	CustomerEmail      string
	Description        string
}

// ReferralListFilter narrows listings.
type ReferralListFilter struct {
	Status *domain.ReferralStatus
	Limit  int
	Offset int
}

// NewReferralService constructs the service.
func NewReferralService(deps ReferralDependencies) *ReferralService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	commission := deps.CommissionAmount
	if commission.IsZero() {
		commission = domain.DefaultCommissionAmount
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 36 * time.Hour
	}
	return &ReferralService{
		referrals:  deps.ReferralRepo,
		companies:  deps.CompanyRepo,
		services:   deps.ServiceRepo,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		commission: commission,
		timeout:    timeout,
		now:        time.Now,
	}
}

// WithClock overrides the time source.
func (s *ReferralService) WithClock(now func() time.Time) *ReferralService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create stores a new pending request. No authentication is required.
func (s *ReferralService) Create(ctx context.Context, input ReferralCreateInput) (*domain.ReferralView, error) {
	name := strings.TrimSpace(input.CustomerName)
	email := strings.TrimSpace(input.CustomerEmail)
	fields := map[string]any{}
	if name == "" {
		fields["customer_name"] = "required"
	}
	if email == "" {
		fields["customer_email"] = "required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["customer_email"] = "invalid email address"
	}
	if input.TargetCompanyID <= 0 {
		fields["target_company_id"] = "required"
	}
	if input.RequestedServiceID <= 0 {
		fields["requested_service_id"] = "required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid referral request", fields)
	}

	company, err := s.companies.GetByID(ctx, input.TargetCompanyID)
	if err != nil {
		return nil, mapRepoErr(err, "company")
	}
	service, err := s.services.GetByID(ctx, input.RequestedServiceID)
	if err != nil {
		return nil, mapRepoErr(err, "service")
	}
	if service.CompanyID != company.ID {
		return nil, apperrors.NewValidationError("service is not offered by the target company",
			map[string]any{"requested_service_id": "belongs to another company"})
	}

	now := s.now().UTC()
	serviceID := service.ID
	req := &domain.ReferralRequest{
		CustomerName:       name,
		CustomerEmail:      email,
		Description:        strings.TrimSpace(input.Description),
		TargetCompanyID:    company.ID,
		RequestedServiceID: &serviceID,
		Status:             domain.ReferralStatusPending,
		IsCommissionDue:    false,
		CommissionAmount:   s.commission,
		CreatedAt:          now,
	}
	if err := s.referrals.Create(ctx, req); err != nil {
		return nil, mapRepoErr(err, "company or service")
	}

	s.metrics.ReferralCreated()
	s.logger.Info("referral created",
		zap.Int64("referral_id", req.ID),
		zap.Int64("company_id", company.ID),
		zap.Int64("service_id", service.ID))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventReferralCreated,
		ReferralID: req.ID,
		Timestamp:  now,
		Payload: events.ReferralCreatedPayload{
			CompanyID:     company.ID,
			ServiceID:     req.RequestedServiceID,
			CustomerEmail: req.CustomerEmail,
			Commission:    req.CommissionAmount,
		},
	})

	return &domain.ReferralView{Request: req, Company: company, Service: service}, nil
}

// Transition applies a firm decision to a pending request.
func (s *ReferralService) Transition(ctx context.Context, actor domain.Actor, id int64, action domain.ReferralAction) (*domain.ReferralView, error) {
	target, commissionDue, ok := action.Outcome()
	if !ok {
		return nil, apperrors.NewValidationError("action must be accept or reject",
			map[string]any{"action": string(action)})
	}
	if err := s.guard.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	req, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "referral request")
	}
	if err := s.guard.AuthorizeCompany(ctx, actor, req.TargetCompanyID); err != nil {
		return nil, err
	}
	if req.Status != domain.ReferralStatusPending {
		return nil, apperrors.NewAlreadyProcessed(string(req.Status))
	}

	now := s.now().UTC()
	updated, err := s.referrals.TransitionIfPending(ctx, id, target, commissionDue, now)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, s.alreadyProcessed(ctx, id)
		}
		return nil, mapRepoErr(err, "referral request")
	}

	s.metrics.ReferralTransitioned(string(action))
	s.logger.Info("referral transitioned",
		zap.Int64("referral_id", id),
		zap.Int64("actor_id", actor.UserID),
		zap.String("status", string(updated.Status)))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventReferralStatusChanged,
		ReferralID: id,
		Actor:      events.ActorFrom(actor),
		Timestamp:  now,
		Payload: events.ReferralStatusChangedPayload{
			CompanyID:     updated.TargetCompanyID,
			OldStatus:     domain.ReferralStatusPending,
			NewStatus:     updated.Status,
			CommissionDue: updated.IsCommissionDue,
		},
	})

	return s.view(ctx, updated, nil)
}

// Get returns a single request the actor is entitled to see.
func (s *ReferralService) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.ReferralView, error) {
	if err := s.guard.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	req, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "referral request")
	}
	if err := s.guard.AuthorizeCompany(ctx, actor, req.TargetCompanyID); err != nil {
		return nil, err
	}
	return s.view(ctx, req, nil)
}

// ListForActor lists the requests addressed to the actor's company, or every request for a superuser.
func (s *ReferralService) ListForActor(ctx context.Context, actor domain.Actor, filter ReferralListFilter) ([]domain.ReferralView, error) {
	if err := s.guard.RequireFirmMember(actor); err != nil {
		return nil, err
	}
	repoFilter, err := toRepoFilter(filter)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser() {
		company, err := s.guard.firmCompany(ctx, actor)
		if err != nil {
			return nil, err
		}
		repoFilter.CompanyID = &company.ID
	}
	return s.list(ctx, repoFilter)
}

// ListAll lists every request. Superuser only.
func (s *ReferralService) ListAll(ctx context.Context, actor domain.Actor, filter ReferralListFilter) ([]domain.ReferralView, error) {
	if err := s.guard.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	repoFilter, err := toRepoFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repoFilter)
}

// SweepTimeouts moves every request pending for longer than the timeout to timeout.
// Zero stale requests is a normal outcome.
func (s *ReferralService) SweepTimeouts(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.timeout)

	count, err := s.referrals.TimeoutStale(ctx, cutoff, now)
	s.metrics.SweepCompleted(count, err)
	if err != nil {
		s.logger.Error("referral timeout sweep failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("referral timeout sweep finished",
		zap.Int64("timed_out", count),
		zap.Time("cutoff", cutoff))
	if count > 0 {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventReferralsTimedOut,
			Timestamp: now,
			Payload:   events.ReferralsTimedOutPayload{Count: count, Cutoff: cutoff},
		})
	}
	return count, nil
}

func (s *ReferralService) alreadyProcessed(ctx context.Context, id int64) error {
	current, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, "referral request")
	}
	return apperrors.NewAlreadyProcessed(string(current.Status))
}

func (s *ReferralService) list(ctx context.Context, filter repository.ReferralFilter) ([]domain.ReferralView, error) {
	requests, err := s.referrals.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	cache := &relationCache{companies: map[int64]*domain.Company{}, services: map[int64]*domain.Service{}}
	views := make([]domain.ReferralView, 0, len(requests))
	for i := range requests {
		view, err := s.view(ctx, &requests[i], cache)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

type relationCache struct {
	companies map[int64]*domain.Company
	services  map[int64]*domain.Service
}

// view resolves the company and service of req. A service deleted after creation resolves to nil.
func (s *ReferralService) view(ctx context.Context, req *domain.ReferralRequest, cache *relationCache) (*domain.ReferralView, error) {
	view := &domain.ReferralView{Request: req}

	if cache != nil && cache.companies[req.TargetCompanyID] != nil {
		view.Company = cache.companies[req.TargetCompanyID]
	} else {
		company, err := s.companies.GetByID(ctx, req.TargetCompanyID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		view.Company = company
		if cache != nil && company != nil {
			cache.companies[company.ID] = company
		}
	}

	if req.RequestedServiceID == nil {
		return view, nil
	}
	if cache != nil && cache.services[*req.RequestedServiceID] != nil {
		view.Service = cache.services[*req.RequestedServiceID]
		return view, nil
	}
	service, err := s.services.GetByID(ctx, *req.RequestedServiceID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	view.Service = service
	if cache != nil && service != nil {
		cache.services[service.ID] = service
	}
	return view, nil
}

func toRepoFilter(filter ReferralListFilter) (repository.ReferralFilter, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return repository.ReferralFilter{}, apperrors.NewValidationError("unknown status filter",
			map[string]any{"status": string(*filter.Status)})
	}
	return repository.ReferralFilter{Status: filter.Status, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ReferralService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}
