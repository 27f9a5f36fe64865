package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const DefaultMinDescriptionLength = 10

var orderIDPattern = regexp.MustCompile(`^(?i)[A-Z0-9]{6,12}$`)

var (
	ErrEmptyOrderID     = errors.New("order id cannot be empty")
	ErrInvalidOrderID   = errors.New("order id must be 6-12 alphanumeric characters")
	ErrInvalidCategory  = errors.New("category must be one of: shipping, billing, technical, other")
	ErrInvalidUrgency   = errors.New("urgency must be one of: low, medium, high")
	ErrEmptyDescription = errors.New("description cannot be empty")
)

// Localized synonyms accepted for category values.
var categoryTranslations = map[string]Category{
	"envío":       CategoryShipping,
	"envio":       CategoryShipping,
	"envios":      CategoryShipping,
	"envíos":      CategoryShipping,
	"facturación": CategoryBilling,
	"facturacion": CategoryBilling,
	"factura":     CategoryBilling,
	"pago":        CategoryBilling,
	"pagos":       CategoryBilling,
	"técnico":     CategoryTechnical,
	"tecnico":     CategoryTechnical,
	"técnica":     CategoryTechnical,
	"tecnica":     CategoryTechnical,
	"otro":        CategoryOther,
	"otra":        CategoryOther,
	"otros":       CategoryOther,
}

var urgencyTranslations = map[string]Urgency{
	"baja":    UrgencyLow,
	"bajo":    UrgencyLow,
	"media":   UrgencyMedium,
	"medio":   UrgencyMedium,
	"alta":    UrgencyHigh,
	"alto":    UrgencyHigh,
	"urgente": UrgencyHigh,
}

// NormalizeOrderID trims and upper-cases an order id, rejecting anything
// outside the 6-12 alphanumeric canonical form.
func NormalizeOrderID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyOrderID
	}
	if !orderIDPattern.MatchString(trimmed) {
		return "", ErrInvalidOrderID
	}
	return strings.ToUpper(trimmed), nil
}

// NormalizeCategory maps a raw value onto the canonical category set,
// accepting localized synonyms.
func NormalizeCategory(raw string) (Category, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return "", ErrInvalidCategory
	}
	switch Category(lowered) {
	case CategoryShipping, CategoryBilling, CategoryTechnical, CategoryOther:
		return Category(lowered), nil
	}
	if translated, ok := categoryTranslations[lowered]; ok {
		return translated, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// NormalizeUrgency maps a raw value onto the canonical urgency set,
// accepting localized synonyms.
func NormalizeUrgency(raw string) (Urgency, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return "", ErrInvalidUrgency
	}
	switch Urgency(lowered) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(lowered), nil
	}
	if translated, ok := urgencyTranslations[lowered]; ok {
		return translated, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUrgency, raw)
}

// NormalizeDescription trims a description and enforces the minimum
// length. minLength <= 0 falls back to the default.
func NormalizeDescription(raw string, minLength int) (string, error) {
	if minLength <= 0 {
		minLength = DefaultMinDescriptionLength
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyDescription
	}
	if len([]rune(trimmed)) < minLength {
		return "", fmt.Errorf("description must be at least %d characters", minLength)
	}
	return trimmed, nil
}
