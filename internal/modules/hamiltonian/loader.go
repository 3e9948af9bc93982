package hamiltonian

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// FileExtension is the suffix of serialized parameter files.
const FileExtension = ".msgpack"

// Loader reads a molecule's parameter file from a Source.
type Loader struct {
	source Source
	log    zerolog.Logger
}

// NewLoader creates a loader over source
func NewLoader(source Source, log zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		log:    log.With().Str("component", "hamiltonian_loader").Logger(),
	}
}

// Load opens <molecule>.msgpack and decodes it.
func (l *Loader) Load(ctx context.Context, molecule string) (*Hamiltonian, error) {
	molecule = strings.TrimSpace(molecule)
	if molecule == "" {
		return nil, fmt.Errorf("%w: empty molecule name", ErrInvalid)
	}
	name := molecule + FileExtension

	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", molecule, err)
	}
	defer rc.Close()

	h, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from %s: %w", molecule, l.source.Describe(name), err)
	}
	if h.Molecule == "" {
		h.Molecule = molecule
	}

	l.log.Info().
		Str("molecule", h.Molecule).
		Int("states", h.States).
		Int("modes", h.Modes).
		Str("source", l.source.Describe(name)).
		Msg("Loaded Hamiltonian")

	return h, nil
}
