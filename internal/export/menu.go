// Package export renders the menu as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bistro/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName     = "Menu"
	headerRow     = 2
	firstDataRow  = 3
	priceNumFmt   = `"€"#,##0.00`
	uncategorized = "Other"
)

var columns = []string{"ID", "Name", "Category", "Price", "Description", "Image"}

// MenuWorkbook builds a workbook with one row per item, grouped by category.
// The caller closes the file.
func MenuWorkbook(items []models.MenuItem, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	// Заголовок с датой выгрузки
	_ = f.SetCellValue(SheetName, "A1", fmt.Sprintf("Menu export %s", generatedAt.Format("02.01.2006 15:04")))
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	writeHeaders(f)
	row := writeRows(f, items)

	totalCell, _ := excelize.CoordinatesToCellName(2, row+1)
	_ = f.SetCellValue(SheetName, totalCell, fmt.Sprintf("Items: %d", len(items)))

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "C", 25)
	_ = f.SetColWidth(SheetName, "D", "D", 12)
	_ = f.SetColWidth(SheetName, "E", "F", 40)
	return f, nil
}

func writeHeaders(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(SheetName, cell, name)
		_ = f.SetCellStyle(SheetName, cell, cell, style)
	}
}

// writeRows returns the last row written.
func writeRows(f *excelize.File, items []models.MenuItem) int {
	groups := make(map[string][]models.MenuItem)
	for _, item := range items {
		label := strings.TrimSpace(item.Category)
		if label == "" {
			label = uncategorized
		}
		groups[label] = append(groups[label], item)
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	categoryStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	fmtCode := priceNumFmt
	priceStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode})

	row := firstDataRow - 1
	for _, label := range labels {
		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(SheetName, cell, label)
		_ = f.SetCellStyle(SheetName, cell, cell, categoryStyle)

		for _, item := range groups[label] {
			row++
			values := []interface{}{
				item.ID,
				item.Name,
				item.Category,
				float64(item.PriceMinor) / 100,
				item.Description,
				item.ImageURL,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(SheetName, cell, v)
			}
			priceCell, _ := excelize.CoordinatesToCellName(4, row)
			_ = f.SetCellStyle(SheetName, priceCell, priceCell, priceStyle)
		}
	}
	return row
}

// WriteMenu streams the workbook to w.
func WriteMenu(w io.Writer, items []models.MenuItem, generatedAt time.Time) error {
	f, err := MenuWorkbook(items, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveMenu writes menu_<date>.xlsx into dir and returns its path.
func SaveMenu(dir string, items []models.MenuItem, generatedAt time.Time) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := MenuWorkbook(items, generatedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(generatedAt))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

func FileName(generatedAt time.Time) string {
	return fmt.Sprintf("menu_%s.xlsx", generatedAt.Format("2006-01-02_150405"))
}
