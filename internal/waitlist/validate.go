package waitlist

import (
	"regexp"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
)

const (
	nameMinLen = 2
	nameMaxLen = 100

	customerIDMaxLen = 64
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	productIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)
)

// NormalizeEmail is applied on write and on every lookup, so webhook emails
// compare equal to stored ones regardless of case or padding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email, once normalized, has a local part, an @ and a dotted domain.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(NormalizeEmail(email))
}

// ValidProductID reports whether id is 1-50 characters of letters, digits, underscore or hyphen.
func ValidProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

// normalizeInput trims every field and lowercases the email.
func normalizeInput(in CreateInput) CreateInput {
	out := CreateInput{
		Email:     NormalizeEmail(in.Email),
		ProductID: strings.TrimSpace(in.ProductID),
		Name:      strings.TrimSpace(in.Name),
	}
	if in.ShopifyCustomerID != nil {
		if id := strings.TrimSpace(*in.ShopifyCustomerID); id != "" {
			out.ShopifyCustomerID = &id
		}
	}
	return out
}

// validateInput checks a normalized input and reports every failing field.
func validateInput(in CreateInput) error {
	details := map[string]string{}

	switch {
	case in.Email == "":
		details["email"] = "is required"
	case !emailPattern.MatchString(in.Email):
		details["email"] = "must be a valid email"
	}

	switch {
	case in.ProductID == "":
		details["productId"] = "is required"
	case !productIDPattern.MatchString(in.ProductID):
		details["productId"] = "must be 1-50 letters, digits, underscores or hyphens"
	}

	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		details["name"] = "is required"
	case n < nameMinLen:
		details["name"] = "must be at least 2 characters"
	case n > nameMaxLen:
		details["name"] = "must be at most 100 characters"
	}

	if in.ShopifyCustomerID != nil && utf8.RuneCountInString(*in.ShopifyCustomerID) > customerIDMaxLen {
		details["shopifyCustomerId"] = "must be at most 64 characters"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
