package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/lu4p/cat"
	"github.com/xuri/excelize/v2"
)

// loader extracts a document's raw text into a single string.
type loader func(path string) (string, error)

// loaders is the extension dispatch table; its key set is the recognized
// format set. The upload surface allow-lists the same extensions.
var loaders = map[string]loader{
	".txt":  loadPlainText,
	".pdf":  loadPDF,
	".md":   loadMarkdown,
	".csv":  loadCSV,
	".xlsx": loadXLSX,
	".xls":  loadXLS,
}

func docTypeFor(ext string) docModel.DocType {
	switch ext {
	case ".txt":
		return docModel.TXT
	case ".pdf":
		return docModel.PDF
	case ".md":
		return docModel.MD
	case ".csv":
		return docModel.CSV
	case ".xlsx":
		return docModel.XLSX
	case ".xls":
		return docModel.XLS
	default:
		return docModel.ERR
	}
}

// cat also transparently handles odt/docx/rtf content behind a .txt name
func loadPlainText(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// markdown is already text; chunking works on the raw source
func loadMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse csv: %w", err)
	}

	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, ", "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func loadXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, ", "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func loadXLS(path string) (string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", fmt.Errorf("failed to open xls: %w", err)
	}

	var b strings.Builder
	for i := 0; i < workbook.NumSheets(); i++ {
		sheet := workbook.GetSheet(i)
		if sheet == nil {
			continue
		}
		for j := 0; j <= int(sheet.MaxRow); j++ {
			row := sheet.Row(j)
			if row == nil {
				continue
			}
			var cells []string
			for k := row.FirstCol(); k <= row.LastCol(); k++ {
				cells = append(cells, row.Col(k))
			}
			b.WriteString(strings.Join(cells, ", "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
