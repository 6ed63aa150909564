// Package sequence issues the per-document identifiers: the 36-char
// generation code and the 31-char control number.
package sequence

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Generator supplies unique identifiers for new submissions.
type Generator interface {
	GenerationCode() string
	ControlNumber(tipoDte string) (string, error)
}

type generator struct {
	estab      string
	puntoVenta string

	mu   sync.Mutex
	next uint64
}

// New creates a Generator for an establishment and point-of-sale pair.
// Both codes are padded to 4 characters in the control number.
func New(estab, puntoVenta string) (Generator, error) {
	if len(estab) > 4 || len(puntoVenta) > 4 {
		return nil, errors.New("establishment and point-of-sale codes must be at most 4 characters")
	}
	return &generator{
		estab:      pad(estab),
		puntoVenta: pad(puntoVenta),
		next:       1,
	}, nil
}

// GenerationCode returns an uppercase UUID, the 36-char unique id MH
// expects in codigoGeneracion.
func (g *generator) GenerationCode() string {
	return strings.ToUpper(uuid.NewString())
}

// ControlNumber returns the next control number in the fixed
// DTE-{tipo}-{estab}{pv}-{seq} layout, always 31 characters.
func (g *generator) ControlNumber(tipoDte string) (string, error) {
	if len(tipoDte) != 2 {
		return "", errors.New("document type code must be 2 characters")
	}

	g.mu.Lock()
	n := g.next
	g.next++
	g.mu.Unlock()

	return fmt.Sprintf("DTE-%s-%s%s-%015d", tipoDte, g.estab, g.puntoVenta, n), nil
}

func pad(code string) string {
	return strings.Repeat("0", 4-len(code)) + code
}
