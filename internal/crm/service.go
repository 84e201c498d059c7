package crm

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/config"
	"crm-service/pkg/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Business-logic failures. These are not store errors: the referenced record
// is simply absent, and the HTTP layer reports them inside a success:false
// payload instead of an error status.
var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrFollowUpNotFound = errors.New("follow-up not found")
)

// Service orchestrates the CRM operations over an injected store session.
// It holds no cached rows across requests; the backing store is the sole
// owner of persistent state.
type Service struct {
	store     store.Store
	log       *zap.Logger
	companies string
	calls     string

	now   func() time.Time
	newID func() string
}

// New builds the service around an already-connected store.
func New(st store.Store, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		store:     st,
		log:       log,
		companies: cfg.Store.CompaniesTable,
		calls:     cfg.Store.CallsTable,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// LogCall ensures the company row exists, then appends the call row.
// Returns the generated call id.
func (s *Service) LogCall(ctx context.Context, in CallInput) (string, error) {
	companies, err := s.store.Table(ctx, s.companies)
	if err != nil {
		return "", err
	}

	now := s.now()
	if _, err := EnsureCompany(ctx, companies, in.CompanyName, in.ContactName, now); err != nil {
		return "", err
	}

	calls, err := s.store.Table(ctx, s.calls)
	if err != nil {
		return "", err
	}

	call, err := AppendCall(ctx, calls, in, s.newID(), now)
	if err != nil {
		return "", err
	}

	s.log.Info("call logged",
		zap.String("call_id", call.ID),
		zap.String("company_name", call.CompanyName))
	return call.ID, nil
}

// CompanyHistory returns the company row and every call referencing it by
// name. Returns ErrCompanyNotFound when no row matches the name.
func (s *Service) CompanyHistory(ctx context.Context, name string) (*model.Company, []model.Call, error) {
	companies, err := s.store.Table(ctx, s.companies)
	if err != nil {
		return nil, nil, err
	}

	_, company, err := FindCompany(ctx, companies, name)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, ErrCompanyNotFound
	}

	calls, err := s.listCalls(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Empty keyword with a company filter: just this company's calls.
	return company, SearchCalls(calls, "", name), nil
}

// Search returns the calls whose notes contain the keyword, optionally
// narrowed to one company.
func (s *Service) Search(ctx context.Context, keyword, companyFilter string) ([]model.Call, error) {
	calls, err := s.listCalls(ctx)
	if err != nil {
		return nil, err
	}
	return SearchCalls(calls, keyword, companyFilter), nil
}

// FollowUps returns the open follow-ups due on or before asOf, sorted by
// follow-up date. An empty asOf defaults to today.
func (s *Service) FollowUps(ctx context.Context, asOf string) ([]model.Call, error) {
	if asOf == "" {
		asOf = s.now().Format("2006-01-02")
	}

	calls, err := s.listCalls(ctx)
	if err != nil {
		return nil, err
	}
	return DueAsOf(calls, asOf), nil
}

// CompleteFollowUp marks the call with the given id completed. Returns
// ErrFollowUpNotFound when no call row carries the id.
func (s *Service) CompleteFollowUp(ctx context.Context, id string) error {
	calls, err := s.store.Table(ctx, s.calls)
	if err != nil {
		return err
	}

	rows, err := calls.Rows(ctx)
	if err != nil {
		return err
	}

	for i, row := range rows {
		if len(row) == 0 || row[0] != id {
			continue
		}
		call := model.CallFromRow(row)
		call.Completed = true
		if err := calls.Update(ctx, i, call.Row()); err != nil {
			return err
		}
		s.log.Info("follow-up completed", zap.String("call_id", id))
		return nil
	}
	return ErrFollowUpNotFound
}

func (s *Service) listCalls(ctx context.Context) ([]model.Call, error) {
	calls, err := s.store.Table(ctx, s.calls)
	if err != nil {
		return nil, err
	}
	return ListCalls(ctx, calls)
}
