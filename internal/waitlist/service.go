package waitlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/limited-access-backend/pkg/db"
	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
	"github.com/angelmondragon/limited-access-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the waitlist service.
type ServiceParams struct {
	Repo    *Repository
	Logger  *logger.Logger
	Metrics *metrics.WaitlistMetrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service exposes the waitlist business rules.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (ListResult, error)
	UpdateStatus(ctx context.Context, id string, status string) (Entry, error)
	Delete(ctx context.Context, id string) (Entry, error)
	Stats(ctx context.Context) (Stats, error)
	FindByEmail(ctx context.Context, email string) ([]Entry, error)
	LinkShopifyCustomer(ctx context.Context, id uuid.UUID, customerID string) (bool, error)
}

type service struct {
	repo    *Repository
	logg    *logger.Logger
	metrics *metrics.WaitlistMetrics
	now     func() time.Time
}

// NewService builds a waitlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "waitlist repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Create normalizes and validates input, then inserts a Pending entry.
func (s *service) Create(ctx context.Context, input CreateInput) (Entry, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return Entry{}, err
	}

	stamp := normalizeTime(s.now())
	entry := &models.WaitlistEntry{
		ID:                uuid.New(),
		Email:             input.Email,
		ProductID:         input.ProductID,
		Name:              input.Name,
		Status:            enums.WaitlistStatusPending,
		ShopifyCustomerID: input.ShopifyCustomerID,
		CreatedAt:         stamp,
		UpdatedAt:         stamp,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "") {
			return Entry{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email is already on the waitlist for this product").
				WithDetails(map[string]any{"email": input.Email, "productId": input.ProductID})
		}
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create waitlist entry")
	}

	s.metrics.IncCreated()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"entry_id":   entry.ID.String(),
		"product_id": entry.ProductID,
	}), "waitlist.entry_created")
	return entryFromModel(entry), nil
}

func (s *service) Get(ctx context.Context, id string) (Entry, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return entryFromModel(entry), nil
}

// List returns entries newest first with page metadata.
func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (ListResult, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return ListResult{}, invalidStatusError(string(filter.Status))
	}
	filter.ProductID = strings.TrimSpace(filter.ProductID)
	params = params.Normalize()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "count waitlist entries")
	}
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list waitlist entries")
	}

	return ListResult{
		Entries:    entriesFromModels(rows),
		Pagination: pagination.NewMeta(params, total),
	}, nil
}

// UpdateStatus validates status before touching the store, then applies
// Transition and persists the result in one write.
func (s *service) UpdateStatus(ctx context.Context, id string, status string) (Entry, error) {
	target, err := enums.ParseWaitlistStatus(status)
	if err != nil {
		return Entry{}, invalidStatusError(status)
	}

	entry, err := s.load(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	from := entry.Status
	if err := Transition(entry, target, s.now()); err != nil {
		return Entry{}, err
	}
	if err := s.repo.SaveStatus(ctx, entry); err != nil {
		if db.IsNotFound(err) {
			return Entry{}, notFound(id)
		}
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update waitlist status")
	}

	s.metrics.IncTransition(from.String(), target.String())
	s.logg.Info(s.logg.WithFields(s.logg.WithEntryID(ctx, entry.ID.String()), map[string]any{
		"from": from.String(),
		"to":   target.String(),
	}), "waitlist.status_changed")
	return entryFromModel(entry), nil
}

// Delete removes the entry and returns it as it was.
func (s *service) Delete(ctx context.Context, id string) (Entry, error) {
	entryID, err := parseID(id)
	if err != nil {
		return Entry{}, err
	}
	deleted, err := s.repo.Delete(ctx, entryID)
	if err != nil {
		if db.IsNotFound(err) {
			return Entry{}, notFound(id)
		}
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete waitlist entry")
	}
	s.logg.Info(s.logg.WithEntryID(ctx, deleted.ID.String()), "waitlist.entry_deleted")
	return entryFromModel(deleted), nil
}

// Stats counts entries per status. Every status is present, zero-filled.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeStore, err, "count waitlist entries by status")
	}

	stats := Stats{ByStatus: make(map[enums.WaitlistStatus]int64, len(counts))}
	for _, status := range enums.WaitlistStatuses() {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// FindByEmail normalizes email the same way Create does before matching.
func (s *service) FindByEmail(ctx context.Context, email string) ([]Entry, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return []Entry{}, nil
	}
	rows, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "find waitlist entries by email")
	}
	return entriesFromModels(rows), nil
}

// LinkShopifyCustomer records the Shopify customer id on an entry that has none.
func (s *service) LinkShopifyCustomer(ctx context.Context, id uuid.UUID, customerID string) (bool, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "shopify customer id is required")
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return false, notFound(id.String())
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load waitlist entry")
	}

	stamp := normalizeTime(s.now())
	if !stamp.After(entry.UpdatedAt) {
		stamp = entry.UpdatedAt.Add(timestampPrecision)
	}
	linked, err := s.repo.SetShopifyCustomerID(ctx, id, customerID, stamp)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeStore, err, "link shopify customer")
	}
	return linked, nil
}

func (s *service) load(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	entryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load waitlist entry")
	}
	return entry, nil
}

// parseID treats a malformed id like an unknown one.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, notFound(id)
	}
	return parsed, nil
}

func notFound(id string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "waitlist entry not found").WithDetails(map[string]any{"id": id})
}
