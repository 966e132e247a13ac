package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// csvHeader is the fixed export column layout.
var csvHeader = []string{"company", "name", "title", "email", "confidence", "sources"}

// sourcesSeparator delimits the serialized sources set inside one CSV cell.
const sourcesSeparator = ";"

// ExportCSV writes the finalized contact set to a timestamped CSV file under
// dir and returns the file path. The filename embeds the run timestamp so
// successive runs never overwrite each other.
func (s *Store) ExportCSV(dir string) (string, error) {
	contacts := s.Finalize()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("contacts_%d.csv", time.Now().Unix()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range contacts {
		record := []string{
			c.Company.Name,
			c.Name,
			c.Title,
			c.Email,
			strconv.FormatFloat(c.Confidence, 'f', 4, 64),
			serializeSources(c.Sources),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record for %s: %w", c.Email, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	return path, nil
}

// ReadContactsCSV loads a previously exported contact set. The downstream
// email-generation and delivery stages consume contacts through this file,
// never through the live store.
func ReadContactsCSV(path string) ([]types.ResolvedContact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse contacts file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("contacts file %s is empty", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range csvHeader {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("contacts file %s missing column %q", path, required)
		}
	}

	contacts := make([]types.ResolvedContact, 0, len(rows)-1)
	for _, row := range rows[1:] {
		confidence, err := strconv.ParseFloat(row[cols["confidence"]], 64)
		if err != nil {
			return nil, fmt.Errorf("bad confidence value %q: %w", row[cols["confidence"]], err)
		}
		contacts = append(contacts, types.ResolvedContact{
			Company:    types.Company{Name: row[cols["company"]]},
			Name:       row[cols["name"]],
			Title:      row[cols["title"]],
			Email:      row[cols["email"]],
			Confidence: confidence,
			Sources:    parseSources(row[cols["sources"]]),
		})
	}
	return contacts, nil
}

func serializeSources(sources []types.SourceKind) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, sourcesSeparator)
}

func parseSources(cell string) []types.SourceKind {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, sourcesSeparator)
	sources := make([]types.SourceKind, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sources = append(sources, types.SourceKind(p))
		}
	}
	return sources
}
