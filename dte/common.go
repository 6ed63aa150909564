// Package dte holds the pieces shared by every service in the client:
// the target MH environment, common sentinel errors and the NIT helpers.
package dte

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 coming back from MH, usually a stale token.
	ErrUnauthorized = errors.New("mh unauthorized")
	ErrForbidden    = errors.New("mh forbidden")
	ErrNoToken      = errors.New("no auth token available")
)

type Environment int

const (
	Test Environment = iota
	Prod
)

func (e Environment) BaseURL() string {
	switch e {
	case Prod:
		return "https://api.dtes.mh.gob.sv/fesv"
	case Test:
		return "https://apitest.dtes.mh.gob.sv/fesv"
	}
	panic("invalid environment")
}

// Ambiente returns the MH destination environment code (CAT-001).
func (e Environment) Ambiente() string {
	switch e {
	case Prod:
		return "01"
	case Test:
		return "00"
	}
	panic("invalid environment")
}

func (e Environment) Name() string {
	switch e {
	case Prod:
		return "prod"
	case Test:
		return "test"
	}
	panic("invalid environment")
}

func (e *Environment) UnmarshalText(text []byte) error {
	val := strings.ToLower(strings.TrimSpace(string(text)))

	switch val {
	case "prod":
		*e = Prod
	case "test":
		*e = Test
	default:
		return fmt.Errorf("invalid DTE_ENV: %q (allowed: prod, test)", val)
	}
	return nil
}

var nitPattern = regexp.MustCompile(`^\d{14}$`)

// NormalizeNit strips dashes and spaces from a NIT and validates that
// exactly 14 digits remain.
func NormalizeNit(nit string) (string, error) {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(nit)
	if !nitPattern.MatchString(cleaned) {
		return "", fmt.Errorf("NIT must be exactly 14 digits, got %q", nit)
	}
	return cleaned, nil
}
