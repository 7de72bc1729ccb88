// Package store persists the branch graph as a single versioned CSV file.
// Schema changes are applied as forward-only migrations on the raw file
// before any row is interpreted, and every write is committed atomically.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/papapumpkin/stacker/internal/graph"
)

const rowFields = 5 // child, parent, base, second base, archived

// Store reads and writes the branch graph file at Path.
type Store struct {
	Path string

	migrations []Migration
}

// New returns a Store for the file at path. Nothing is touched on disk until Load.
func New(path string) *Store {
	return &Store{Path: path, migrations: migrations}
}

// Load reads the file, migrating it to the latest schema first, and
// returns the graph it describes. A missing file or directory is created
// empty and yields an empty graph.
func (s *Store) Load() (*graph.Graph, error) {
	data, err := s.bootstrap()
	if err != nil {
		return nil, err
	}

	data, err = s.migrate(data)
	if err != nil {
		return nil, err
	}
	return s.decode(data)
}

// Save writes the graph, replacing the file atomically.
func (s *Store) Save(g *graph.Graph) error {
	data, err := s.encode(g)
	if err != nil {
		return fmt.Errorf("encoding branch store: %w", err)
	}
	return writeAtomic(s.Path, data)
}

// Update loads the graph, applies fn, and saves the result. The graph is
// saved even when fn fails, so a rebase that was started and interrupted
// stays recorded. When Load fails fn is not called and nothing is written.
func (s *Store) Update(fn func(*graph.Graph) error) error {
	g, err := s.Load()
	if err != nil {
		return err
	}
	fnErr := fn(g)
	if err := s.Save(g); err != nil {
		return errors.Join(fnErr, fmt.Errorf("saving branch store: %w", err))
	}
	return fnErr
}

// View loads the graph and passes it to fn without saving it afterwards.
func (s *Store) View(fn func(*graph.Graph) error) error {
	g, err := s.Load()
	if err != nil {
		return err
	}
	return fn(g)
}

func (s *Store) latest() int {
	return len(s.migrations)
}

// bootstrap makes sure the file exists and returns its contents.
func (s *Store) bootstrap() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading branch store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating branch store directory: %w", err)
	}
	if err := os.WriteFile(s.Path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("creating branch store: %w", err)
	}
	log.Debug().Str("path", s.Path).Msg("created empty branch store")
	return nil, nil
}

// migrate runs every pending migration against the file on disk and
// re-reads it, returning the migrated contents.
func (s *Store) migrate(data []byte) ([]byte, error) {
	version, err := readVersion(data)
	if err != nil {
		return nil, &FormatError{Path: s.Path, Line: 1, Err: err}
	}
	if version > s.latest() {
		return nil, &FormatError{Path: s.Path, Line: 1,
			Err: fmt.Errorf("%w: file is version %d, newest known is %d", ErrUnsupportedVersion, version, s.latest())}
	}
	if version == s.latest() {
		return data, nil
	}

	for v := version; v < s.latest(); v++ {
		out, err := s.migrations[v](data)
		if err != nil {
			return nil, &FormatError{Path: s.Path, Err: fmt.Errorf("migrating from version %d: %w", v, err)}
		}
		if err := writeAtomic(s.Path, out); err != nil {
			return nil, err
		}
		log.Debug().Str("path", s.Path).Int("from", v).Int("to", v+1).Msg("migrated branch store")
		data = out
	}

	// Re-read from disk so the rows we interpret are the ones committed.
	data, err = os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("re-reading branch store: %w", err)
	}
	got, err := readVersion(data)
	if err != nil || got != s.latest() {
		return nil, &FormatError{Path: s.Path,
			Err: fmt.Errorf("%w: at version %d, want %d", ErrMigration, got, s.latest())}
	}
	return data, nil
}

func (s *Store) decode(data []byte) (*graph.Graph, error) {
	g := graph.New()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	// The version record was validated by migrate.
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		return nil, &FormatError{Path: s.Path, Line: 1, Err: err}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Path: s.Path, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		line, _ := r.FieldPos(0)

		child, parent, base, err := parseRow(rec)
		if err != nil {
			return nil, &FormatError{Path: s.Path, Line: line, Err: err}
		}
		archived, _ := strconv.ParseBool(rec[4])
		if err := g.Restore(child, parent, base, archived); err != nil {
			if errors.Is(err, graph.ErrBranchExists) {
				err = fmt.Errorf("%w: %s", ErrDuplicateBranch, child)
			}
			return nil, &FormatError{Path: s.Path, Line: line, Err: err}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, &FormatError{Path: s.Path, Err: err}
	}
	return g, nil
}

// parseRow validates a data record and returns its child, parent and base.
func parseRow(rec []string) (string, string, graph.Base, error) {
	if len(rec) != rowFields {
		return "", "", graph.Base{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRow, len(rec), rowFields)
	}
	child, parent, from, onto := rec[0], rec[1], rec[2], rec[3]
	if child == "" || parent == "" {
		return "", "", graph.Base{}, fmt.Errorf("%w: empty branch name", ErrMalformedRow)
	}
	if _, err := strconv.ParseBool(rec[4]); err != nil {
		return "", "", graph.Base{}, fmt.Errorf("%w: archived flag %q", ErrMalformedRow, rec[4])
	}

	switch {
	case from == "" && onto != "":
		return "", "", graph.Base{}, fmt.Errorf("%w: second base without a first", ErrMalformedRow)
	case from == "":
		return child, parent, graph.Base{}, nil
	case onto == "":
		return child, parent, graph.Settled(from), nil
	default:
		return child, parent, graph.Pending(from, onto), nil
	}
}

func (s *Store) encode(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{versionRowID, strconv.Itoa(s.latest())}); err != nil {
		return nil, err
	}
	for _, name := range g.Linearized() {
		parent, ok := g.Parent(name)
		if !ok {
			continue
		}
		b := g.Base(name)
		row := []string{name, parent, b.From(), b.Onto(), formatArchived(g.IsArchived(name))}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatArchived spells booleans the way version 1 files have always stored them.
func formatArchived(archived bool) string {
	if archived {
		return "True"
	}
	return "False"
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp branch store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming branch store: %w", err)
	}
	return nil
}
