package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/limited-access-backend/pkg/enums"
)

// WaitlistEntry is a customer waiting for access to a limited product.
// Only (email, product_id) is unique; the same email may join several products.
// Timestamps are stamped by the waitlist package, not by gorm hooks.
type WaitlistEntry struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Email             string               `gorm:"column:email;not null;index:waitlist_entries_email_idx;uniqueIndex:waitlist_entries_email_product_key"`
	ProductID         string               `gorm:"column:product_id;type:varchar(50);not null;index:waitlist_entries_product_id_idx;uniqueIndex:waitlist_entries_email_product_key"`
	Name              string               `gorm:"column:name;type:varchar(100);not null"`
	Status            enums.WaitlistStatus `gorm:"column:status;type:varchar(16);not null;default:'Pending';check:waitlist_entries_status_check,status IN ('Pending','Approved','Rejected');index:waitlist_entries_status_idx;index:waitlist_entries_status_created_idx,priority:1"`
	ShopifyCustomerID *string              `gorm:"column:shopify_customer_id"`
	CreatedAt         time.Time            `gorm:"column:created_at;not null;autoCreateTime:false;index:waitlist_entries_created_at_idx;index:waitlist_entries_status_created_idx,priority:2,sort:desc"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;not null;autoUpdateTime:false"`
	ApprovedAt        *time.Time           `gorm:"column:approved_at"`
}

// TableName pins the table name used by migrations.
func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
