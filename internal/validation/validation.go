// Package validation checks purchase and login forms and uploaded payment
// proofs before anything reaches storage.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/example/fftopup/internal/catalog"
)

const (
	// MaxImageSize is the largest accepted payment proof, in bytes.
	MaxImageSize = 5 * 1024 * 1024

	maxNotesLength = 500
)

var (
	ErrFileType = errors.New("Only JPEG, PNG, and WebP images are allowed")
	ErrFileSize = errors.New("File size must be less than 5MB")
)

var (
	uidPattern = regexp.MustCompile(`^[0-9]+$`)
	ignPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	// emailPattern only checks the rough shape of an address.
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
)

// TopUpForm is the customer-entered part of a purchase.
type TopUpForm struct {
	UID           string `json:"uid" form:"uid"`
	IGN           string `json:"ign" form:"ign"`
	PaymentMethod string `json:"payment_method" form:"payment_method"`
	TransactionID string `json:"transaction_id" form:"transaction_id"`
	Notes         string `json:"notes" form:"notes"`
}

// FieldErrors maps a form field to its message. An empty map means valid.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Sanitize strips angle brackets and surrounding whitespace. It is a minimal
// markup guard, not an HTML encoder.
func Sanitize(input string) string {
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(input))
}

// SanitizeTopUpForm sanitizes every free-text field. The payment method is an
// enum and is left as submitted.
func SanitizeTopUpForm(f TopUpForm) TopUpForm {
	return TopUpForm{
		UID:           Sanitize(f.UID),
		IGN:           Sanitize(f.IGN),
		PaymentMethod: f.PaymentMethod,
		TransactionID: Sanitize(f.TransactionID),
		Notes:         Sanitize(f.Notes),
	}
}

// ValidateTopUpForm applies the purchase form rules. When a field fails more
// than one rule the last failing rule supplies the message.
func ValidateTopUpForm(f TopUpForm) FieldErrors {
	errs := FieldErrors{}

	checkLength(errs, "uid", f.UID, 6, 20, "UID")
	if !uidPattern.MatchString(f.UID) {
		errs["uid"] = "UID must contain only numbers"
	}

	checkLength(errs, "ign", f.IGN, 3, 20, "IGN")
	if !ignPattern.MatchString(f.IGN) {
		errs["ign"] = "IGN can only contain letters, numbers, and underscores"
	}

	if !isPaymentMethod(f.PaymentMethod) {
		errs["payment_method"] = "Please select a valid payment method"
	}

	if f.TransactionID != "" && textLength(f.TransactionID) < 3 {
		errs["transaction_id"] = "Transaction ID must be at least 3 characters"
	}

	if textLength(f.Notes) > maxNotesLength {
		errs["notes"] = "Notes must be less than 500 characters"
	}

	return errs
}

// ValidateLogin checks the shape of login credentials only.
func ValidateLogin(username, password string) FieldErrors {
	errs := FieldErrors{}
	checkLength(errs, "username", username, 3, 50, "Username")
	checkLength(errs, "password", password, 6, 100, "Password")
	return errs
}

// ValidateSignup checks a new account. Password rules match ValidateLogin.
func ValidateSignup(displayName, email, password string) FieldErrors {
	errs := FieldErrors{}
	if textLength(displayName) > 50 {
		errs["display_name"] = "Display name must be less than 50 characters"
	}
	if textLength(email) > 254 || !emailPattern.MatchString(email) {
		errs["email"] = "Please enter a valid email address"
	}
	checkLength(errs, "password", password, 6, 100, "Password")
	return errs
}

// ValidateImageFile checks a payment proof's declared type, then its size.
func ValidateImageFile(contentType string, size int64) error {
	if !allowedImageTypes[contentType] {
		return ErrFileType
	}
	if size > MaxImageSize {
		return ErrFileSize
	}
	return nil
}

// textLength counts UTF-16 code units, so characters outside the Basic
// Multilingual Plane count twice, matching browser form limits.
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func checkLength(errs FieldErrors, field, value string, min, max int, label string) {
	n := textLength(value)
	if n < min {
		errs[field] = fmt.Sprintf("%s must be at least %d characters", label, min)
	}
	if n > max {
		errs[field] = fmt.Sprintf("%s must be less than %d characters", label, max)
	}
}

func isPaymentMethod(method string) bool {
	for _, m := range catalog.PaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}
