package waitlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	"github.com/angelmondragon/limited-access-backend/pkg/pagination"
)

// Entry is the API projection of a waitlist row.
type Entry struct {
	ID                uuid.UUID            `json:"id"`
	Email             string               `json:"email"`
	ProductID         string               `json:"productId"`
	Name              string               `json:"name"`
	Status            enums.WaitlistStatus `json:"status"`
	ShopifyCustomerID *string              `json:"shopifyCustomerId,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	ApprovedAt        *time.Time           `json:"approvedAt,omitempty"`
}

func entryFromModel(m *models.WaitlistEntry) Entry {
	return Entry{
		ID:                m.ID,
		Email:             m.Email,
		ProductID:         m.ProductID,
		Name:              m.Name,
		Status:            m.Status,
		ShopifyCustomerID: m.ShopifyCustomerID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		ApprovedAt:        m.ApprovedAt,
	}
}

func entriesFromModels(rows []models.WaitlistEntry) []Entry {
	out := make([]Entry, 0, len(rows))
	for i := range rows {
		out = append(out, entryFromModel(&rows[i]))
	}
	return out
}

// CreateInput carries the caller supplied fields of a new entry.
type CreateInput struct {
	Email     string
	ProductID string
	Name      string

	// ShopifyCustomerID is optional; blank values are stored as NULL.
	ShopifyCustomerID *string
}

// ListFilter narrows list and count queries. Zero values mean "any".
type ListFilter struct {
	Status    enums.WaitlistStatus
	ProductID string
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries    []Entry         `json:"entries"`
	Pagination pagination.Meta `json:"pagination"`
}

// Stats summarizes the waitlist. ByStatus always carries every status.
type Stats struct {
	Total    int64                          `json:"total"`
	ByStatus map[enums.WaitlistStatus]int64 `json:"byStatus"`
}
