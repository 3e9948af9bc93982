// Package norms looks up precomputed Trotter-error norms.
//
// The norm of a (molecule, d, modes, scheme) combination is the commutator bound
// that sets the Trotter step count. It is computed offline and shipped as a CSV
// table with the columns molecule, d, modes, scheme and norm.
package norms

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNormNotFound is returned when the table has no entry for a key.
var ErrNormNotFound = errors.New("trotter norm not found")

// DefaultFile is the conventional name of the norm table in the data directory.
const DefaultFile = "trotter_norms.csv"

var requiredColumns = []string{"molecule", "d", "modes", "scheme", "norm"}

// Key identifies one norm. D is the per-mode dimension 2^k.
type Key struct {
	Molecule string
	D        int
	Modes    int
	Scheme   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s (d=%d, modes=%d, scheme=%s)", k.Molecule, k.D, k.Modes, k.Scheme)
}

func (k Key) normalized() Key {
	k.Molecule = strings.ToLower(strings.TrimSpace(k.Molecule))
	k.Scheme = NormalizeScheme(k.Scheme)
	return k
}

// NormalizeScheme lowercases a scheme name and drops separators, so "mode_based"
// and "ModeBased" both become "modebased".
func NormalizeScheme(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// Table is an in-memory norm table.
type Table struct {
	norms map[Key]float64
}

// Parse reads a norm CSV. Rows that cannot be parsed are skipped with a warning;
// a missing required column fails the whole table.
func Parse(r io.Reader, log zerolog.Logger) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read norm table header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("norm table is missing column %q", col)
		}
	}

	t := &Table{norms: make(map[Key]float64)}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping unreadable norm row")
			continue
		}

		key, norm, err := parseRow(row, index)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping malformed norm row")
			continue
		}
		if _, dup := t.norms[key]; dup {
			log.Warn().Str("key", key.String()).Int("line", line).Msg("Duplicate norm row, keeping the last one")
		}
		t.norms[key] = norm
	}

	log.Debug().Int("entries", len(t.norms)).Msg("Parsed norm table")
	return t, nil
}

func parseRow(row []string, index map[string]int) (Key, float64, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(row) {
			return "", fmt.Errorf("row has no %s field", col)
		}
		return strings.TrimSpace(row[i]), nil
	}

	var raw [5]string
	for i, col := range requiredColumns {
		v, err := field(col)
		if err != nil {
			return Key{}, 0, err
		}
		raw[i] = v
	}

	d, err := strconv.Atoi(raw[1])
	if err != nil || d < 2 {
		return Key{}, 0, fmt.Errorf("invalid d %q", raw[1])
	}
	modes, err := strconv.Atoi(raw[2])
	if err != nil || modes < 1 {
		return Key{}, 0, fmt.Errorf("invalid modes %q", raw[2])
	}
	norm, err := strconv.ParseFloat(raw[4], 64)
	if err != nil || norm < 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return Key{}, 0, fmt.Errorf("invalid norm %q", raw[4])
	}
	if raw[0] == "" || raw[3] == "" {
		return Key{}, 0, fmt.Errorf("empty molecule or scheme")
	}

	key := Key{Molecule: raw[0], D: d, Modes: modes, Scheme: raw[3]}
	return key.normalized(), norm, nil
}

// Lookup returns the norm for key and whether it exists.
func (t *Table) Lookup(key Key) (float64, bool) {
	norm, ok := t.norms[key.normalized()]
	return norm, ok
}

// Get is Lookup with ErrNormNotFound for a miss.
func (t *Table) Get(key Key) (float64, error) {
	norm, ok := t.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNormNotFound, key)
	}
	return norm, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.norms)
}

// Keys returns every key, sorted.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.norms))
	for k := range t.norms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Molecule != b.Molecule {
			return a.Molecule < b.Molecule
		}
		if a.D != b.D {
			return a.D < b.D
		}
		if a.Modes != b.Modes {
			return a.Modes < b.Modes
		}
		return a.Scheme < b.Scheme
	})
	return keys
}
