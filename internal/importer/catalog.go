// Package importer loads the bird catalog from a spreadsheet or a JSON file.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vytor/birdtalk/internal/models"
)

// Sheet names of a catalog workbook.
const (
	BirdsSheet = "Birds"
	PacksSheet = "Packs"
)

// Catalog is everything one import file holds.
type Catalog struct {
	Birds []models.Bird `json:"birds"`
	Packs []PackEntry   `json:"packs"`
}

// PackEntry is a catalog pack by name, listing its birds by id.
type PackEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Birds       []uint64 `json:"birds"`
}

// ReadFile reads a catalog, choosing the format by extension.
func ReadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

func ReadJSON(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// ReadXLSX reads a workbook with a Birds sheet and an optional Packs sheet.
// The first row of each sheet is a header.
//
// Birds columns: id, common name, scientific name, image, sounds. Sounds are
// separated by ";" and the first one is the default.
//
// Packs columns: name, description, bird ids separated by commas or spaces.
func ReadXLSX(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(BirdsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", BirdsSheet, err)
	}
	c := &Catalog{}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		b, err := parseBirdRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", BirdsSheet, i+1, err)
		}
		c.Birds = append(c.Birds, b)
	}

	if idx, _ := f.GetSheetIndex(PacksSheet); idx < 0 {
		return c, nil
	}
	rows, err = f.GetRows(PacksSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", PacksSheet, err)
	}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		p, err := parsePackRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", PacksSheet, i+1, err)
		}
		c.Packs = append(c.Packs, p)
	}
	return c, nil
}

func parseBirdRow(row []string) (models.Bird, error) {
	id, err := strconv.ParseUint(cell(row, 0), 10, 64)
	if err != nil {
		return models.Bird{}, fmt.Errorf("invalid id %q", cell(row, 0))
	}
	b := models.Bird{
		ID:             id,
		CommonName:     cell(row, 1),
		ScientificName: cell(row, 2),
		Image:          cell(row, 3),
	}
	for n, path := range strings.Split(cell(row, 4), ";") {
		if path = strings.TrimSpace(path); path != "" {
			b.Sounds = append(b.Sounds, models.Sound{Path: path, Default: n == 0})
		}
	}
	return b, nil
}

func parsePackRow(row []string) (PackEntry, error) {
	p := PackEntry{Name: cell(row, 0), Description: cell(row, 1)}
	fields := strings.FieldsFunc(cell(row, 2), func(r rune) bool { return r == ',' || r == ' ' })
	for _, f := range fields {
		id, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return PackEntry{}, fmt.Errorf("invalid bird id %q", f)
		}
		p.Birds = append(p.Birds, id)
	}
	return p, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
