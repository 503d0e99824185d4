package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"feynman_tutor/src/graph"
	"feynman_tutor/src/logger"
	"feynman_tutor/src/model"

	"github.com/xuri/excelize/v2"
)

// header aliases, matched case-insensitively
var importColumns = map[string][]string{
	"name":        {"name", "concept", "名称", "概念"},
	"description": {"description", "描述", "说明"},
	"category":    {"category", "类别", "分类"},
	"difficulty":  {"difficulty", "难度"},
	"related":     {"related", "related_concepts", "相关", "相关概念"},
}

// Importer loads concepts from a spreadsheet into the catalog
type Importer struct {
	catalog graph.Catalog
}

func NewImporter(catalog graph.Catalog) *Importer {
	return &Importer{catalog: catalog}
}

// Import reads an .xlsx workbook (first sheet) or a .csv file, chosen by
// filename extension. The first row is the header; rows without a name are skipped.
func (im *Importer) Import(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readExcelRows(r)
	case ".csv":
		rows, err = readCSVRows(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	columns := mapColumns(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: header has no name column", ErrInvalidInput)
	}

	result := &model.ImportResult{Concepts: []string{}, Errors: []string{}}
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		result.TotalProcessed++

		concept := model.Concept{
			Name:            cell(row, columns, "name"),
			Description:     cell(row, columns, "description"),
			Category:        cell(row, columns, "category"),
			Difficulty:      cell(row, columns, "difficulty"),
			RelatedConcepts: splitRelated(cell(row, columns, "related")),
		}
		if concept.Name == "" {
			result.Skipped++
			continue
		}

		if err := im.catalog.AddConcept(ctx, concept); err != nil {
			// row numbers are 1-based and include the header
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+2, err))
			continue
		}
		result.Imported++
		result.Concepts = append(result.Concepts, concept.Name)
	}

	logger.Info().
		Str("file", filename).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("concepts imported")
	return result, nil
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidInput)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: error reading CSV: %v", ErrInvalidInput, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func mapColumns(header []string) map[string]int {
	columns := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, aliases := range importColumns {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					columns[field] = i
				}
			}
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, field string) string {
	i, ok := columns[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitRelated(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == ';' || r == '；'
	})
	related := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			related = append(related, p)
		}
	}
	return related
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
