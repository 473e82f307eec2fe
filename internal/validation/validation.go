// Package validation holds the pure input checks applied before any store
// access.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sp3dr4/tern/internal/domain"
)

const (
	DefaultMaxURLLength = 2048
	DefaultCodeLength   = 6
)

type Validator struct {
	validate     *validator.Validate
	maxURLLength int
	codeLength   int
}

func New(maxURLLength, codeLength int) *Validator {
	if maxURLLength <= 0 {
		maxURLLength = DefaultMaxURLLength
	}
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}

	return &Validator{
		validate:     validator.New(),
		maxURLLength: maxURLLength,
		codeLength:   codeLength,
	}
}

// ValidateURL accepts absolute URLs with a scheme and a host.
func (v *Validator) ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return domain.ErrEmptyInput
	}

	if len(rawURL) > v.maxURLLength {
		return fmt.Errorf("%w (max %d characters)", domain.ErrTooLong, v.maxURLLength)
	}

	if err := v.validate.Var(rawURL, "url"); err != nil {
		return domain.ErrMalformedURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.ErrMalformedURL
	}

	return nil
}

func (v *Validator) ValidateShortCode(code string) error {
	if code == "" {
		return domain.ErrMissingCode
	}

	if len(code) != v.codeLength {
		return domain.ErrMalformedCode
	}

	if err := v.validate.Var(code, "alphanum"); err != nil {
		return domain.ErrMalformedCode
	}

	return nil
}
