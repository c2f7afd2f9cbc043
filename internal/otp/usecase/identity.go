package usecase

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/emailotp/internal/pkg/validator"
)

type identityInput struct {
	Email string `validate:"required,email,mailbox"`
}

// IdentityValidator accepts single well-formed addresses whose domain is allow-listed.
type IdentityValidator struct {
	validator validator.Validator
	domains   map[string]struct{}
}

// NewIdentityValidator builds a validator for the given domains. Matching is
// case-insensitive and ignores surrounding whitespace.
func NewIdentityValidator(v validator.Validator, domains []string) *IdentityValidator {
	normalized := lo.Compact(lo.Map(domains, func(d string, _ int) string {
		return strings.ToLower(strings.TrimSpace(d))
	}))

	return &IdentityValidator{validator: v, domains: lo.Keyify(normalized)}
}

// Validate reports whether raw is an acceptable recipient.
func (iv *IdentityValidator) Validate(raw string) bool {
	email := strings.TrimSpace(raw)

	if err := iv.validator.Validate(identityInput{Email: email}); err != nil {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}

	_, ok := iv.domains[strings.ToLower(email[at+1:])]
	return ok
}
