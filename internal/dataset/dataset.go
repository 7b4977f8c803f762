// Package dataset loads the question spreadsheet and validates question
// images before any backend call is made.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"medcouncil/internal/core"
)

// Column headers expected in the dataset, matching the original spreadsheet.
const (
	colQuestion  = "pregunta"
	colAnswer    = "respuesta_correcta"
	colImage     = "ruta"
	colCategory1 = "categoria_1"
	colCategory2 = "categoria_2"
)

// Load reads questions from an XLSX or CSV file. Image paths are joined
// with imageBaseDir. Question IDs are the zero-based row order, which is
// stable across runs of the same file and is what resume filtering keys on.
func Load(path, imageBaseDir string) ([]core.Question, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, core.ErrValidation("DATASET_FORMAT",
			fmt.Sprintf("unsupported dataset format %q (want .xlsx or .csv)", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrValidation("DATASET_EMPTY", "dataset has no header row")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	questions := make([]core.Question, 0, len(rows)-1)
	for i, row := range rows[1:] {
		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		q := core.Question{
			ID:            i,
			Text:          get(cols[colQuestion]),
			CorrectAnswer: strings.ToLower(get(cols[colAnswer])),
			ImagePath:     filepath.Join(imageBaseDir, filepath.FromSlash(get(cols[colImage]))),
			Category1:     get(cols[colCategory1]),
			Category2:     get(cols[colCategory2]),
		}
		if q.Text == "" {
			continue // trailing blank rows
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrValidation("DATASET_EMPTY", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colQuestion, colAnswer, colImage, colCategory1, colCategory2} {
		if _, ok := cols[required]; !ok {
			return nil, core.ErrValidation("DATASET_COLUMNS",
				fmt.Sprintf("dataset is missing the %q column", required))
		}
	}
	return cols, nil
}
