package shopifywebhook

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

// StatusUpdater applies status transitions through the waitlist state machine.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status string) (waitlist.Entry, error)
}

// CustomerLinker records a Shopify customer id on an entry.
type CustomerLinker interface {
	LinkShopifyCustomer(ctx context.Context, id uuid.UUID, customerID string) (bool, error)
}

type HandlerParams struct {
	Updater StatusUpdater
	Linker  CustomerLinker
	Logger  *logger.Logger
	// AutoApproveOnOrder approves Pending entries whose product was just ordered.
	AutoApproveOnOrder bool
}

// RegisterDefaults installs the order-created and customer-created handlers.
func RegisterDefaults(d *Dispatcher, params HandlerParams) error {
	if params.Logger == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	if params.AutoApproveOnOrder && params.Updater == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "status updater is required for auto-approve")
	}
	if params.Linker == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "customer linker is required")
	}
	if err := d.Register(enums.WebhookKindOrderCreated, OrderCreatedHandler(params)); err != nil {
		return err
	}
	return d.Register(enums.WebhookKindCustomerCreated, CustomerCreatedHandler(params))
}

// OrderCreatedHandler logs the order against its matches and, when enabled,
// approves Pending entries for products in the order. Every match is attempted;
// failures are combined.
func OrderCreatedHandler(params HandlerParams) Handler {
	logg := params.Logger
	return HandlerFunc(func(ctx context.Context, event *Event, matches []waitlist.Entry) error {
		if event.Order == nil {
			return nil
		}
		ctx = logg.WithFields(ctx, map[string]any{
			"order_id":   event.Order.ID,
			"line_items": len(event.Order.LineItems),
		})
		logg.Info(ctx, "shopify.order_created")

		if !params.AutoApproveOnOrder || len(matches) == 0 {
			return nil
		}

		refs := event.Order.ProductRefs()
		var errs error
		for _, entry := range matches {
			if entry.Status != enums.WaitlistStatusPending {
				continue
			}
			if _, ok := refs[entry.ProductID]; !ok {
				continue
			}
			if _, err := params.Updater.UpdateStatus(ctx, entry.ID.String(), enums.WaitlistStatusApproved.String()); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			logg.Info(logg.WithEntryID(ctx, entry.ID.String()), "waitlist.auto_approved")
		}
		return errs
	})
}

// CustomerCreatedHandler back-fills the Shopify customer id on matching entries
// that are not linked yet.
func CustomerCreatedHandler(params HandlerParams) Handler {
	logg := params.Logger
	return HandlerFunc(func(ctx context.Context, event *Event, matches []waitlist.Entry) error {
		if event.Customer == nil {
			return nil
		}
		ctx = logg.WithField(ctx, "customer_id", event.Customer.ID)
		logg.Info(ctx, "shopify.customer_created")

		if event.Customer.ID == 0 || params.Linker == nil {
			return nil
		}
		customerID := strconv.FormatInt(event.Customer.ID, 10)

		var errs error
		for _, entry := range matches {
			if entry.ShopifyCustomerID != nil {
				continue
			}
			linked, err := params.Linker.LinkShopifyCustomer(ctx, entry.ID, customerID)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if linked {
				logg.Info(logg.WithEntryID(ctx, entry.ID.String()), "waitlist.customer_linked")
			}
		}
		return errs
	})
}
