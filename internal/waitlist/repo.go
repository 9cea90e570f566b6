package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	"github.com/angelmondragon/limited-access-backend/pkg/pagination"
)

// Repository encapsulates waitlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a waitlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the entry. A duplicate (email, product_id) surfaces as the
// driver's unique violation.
func (r *Repository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByEmail returns every entry for an already normalized email, oldest first.
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]models.WaitlistEntry, error) {
	var rows []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// List returns one page of entries matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.WaitlistEntry, error) {
	params = params.Normalize()
	var rows []models.WaitlistEntry
	err := r.filtered(ctx, filter).
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	return rows, err
}

// Count returns the number of entries matching filter.
func (r *Repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}

type statusCount struct {
	Status enums.WaitlistStatus
	Total  int64
}

// CountByStatus groups all entries by status. Absent statuses are missing from the map.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.WaitlistStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.WaitlistStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// SaveStatus writes status, updated_at and approved_at in a single UPDATE.
func (r *Repository) SaveStatus(ctx context.Context, entry *models.WaitlistEntry) error {
	res := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":      entry.Status,
			"updated_at":  entry.UpdatedAt,
			"approved_at": entry.ApprovedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetShopifyCustomerID links the entry to a Shopify customer unless it is
// already linked. It reports whether a row changed.
func (r *Repository) SetShopifyCustomerID(ctx context.Context, id uuid.UUID, customerID string, updatedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND shopify_customer_id IS NULL", id).
		Updates(map[string]any{
			"shopify_customer_id": customerID,
			"updated_at":          updatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the entry and returns the row as it was before deletion.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	var deleted models.WaitlistEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&deleted).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.WaitlistEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *Repository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.WaitlistEntry{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	return q
}
