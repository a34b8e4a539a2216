package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tablebook/internal/domain"
	"tablebook/internal/models"
	"tablebook/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservations"

// ExportService renders a date-range reservation grid to an Excel workbook:
// tables down the side, dates across the top, one cell per table-day.
type ExportService struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExportService(store domain.Store, path string, logger *zerolog.Logger) *ExportService {
	return &ExportService{
		store:  store,
		path:   path,
		logger: logger,
	}
}

// ExportSchedule writes the workbook and returns its file path.
func (e *ExportService) ExportSchedule(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	reservations, err := e.store.ListReservationsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting reservations: %w", err)
	}

	tables, err := e.store.ListTables(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting tables: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateCols := e.writeDateHeaders(f, startDate, endDate)
	e.writeTableHeaders(f, tables)
	e.writeReservationCells(f, reservations, tables, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 24)
	}

	lastCol := columnName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *ExportService) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	col := 2
	current := startDate
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !current.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02.01 Mon"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[current.Format("2006-01-02")] = col

		col++
		current = current.AddDate(0, 0, 1)
	}
	return dateCols
}

func (e *ExportService) writeTableHeaders(f *excelize.File, tables []*models.Table) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, table := range tables {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		label := fmt.Sprintf("Table %d (seats %d)", table.Number, table.Capacity)
		if table.Zone != "" {
			label += fmt.Sprintf(", %s", table.Zone)
		}
		_ = f.SetCellValue(sheetName, cell, label)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (e *ExportService) writeReservationCells(f *excelize.File, reservations []*models.Reservation, tables []*models.Table, dateCols map[string]int) {
	// group by date, then by table
	byDate := make(map[string]map[int64][]*models.Reservation)
	for _, r := range reservations {
		key := r.Date.Format("2006-01-02")
		if byDate[key] == nil {
			byDate[key] = make(map[int64][]*models.Reservation)
		}
		byDate[key][r.TableID] = append(byDate[key][r.TableID], r)
	}

	for dateKey, col := range dateCols {
		byTable := byDate[dateKey]
		row := 3
		for _, table := range tables {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			entries := byTable[table.ID]

			var cellValue string
			active := 0
			for _, r := range entries {
				if !r.IsActive() {
					continue
				}
				active++
				cellValue += fmt.Sprintf("%s %s-%s %s (%d)\n",
					statusIcon(r.Status),
					schedule.FormatMinutes(r.StartMin),
					schedule.FormatMinutes(r.EndMin()),
					r.GuestName,
					r.PartySize)
				if r.Comment != "" {
					cellValue += fmt.Sprintf("   %s\n", r.Comment)
				}
			}
			if active == 0 {
				cellValue = "Free"
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)

			styleID, err := e.cellStyle(f, entries)
			if err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusCancelled, models.StatusNoShow:
		return "❌"
	default:
		return "❓"
	}
}

func (e *ExportService) cellStyle(f *excelize.File, entries []*models.Reservation) (int, error) {
	base := excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true}

	hasPending := false
	active := 0
	for _, r := range entries {
		if !r.IsActive() {
			continue
		}
		active++
		if r.Status == models.StatusPending {
			hasPending = true
		}
	}

	switch {
	case active == 0:
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFFFFF"}, Pattern: 1},
			Alignment: &base,
		})
	case hasPending:
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
			Alignment: &base,
		})
	default:
		return f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
			Alignment: &base,
		})
	}
}

// columnName converts a 1-based column count to its Excel letter form.
func columnName(colCount int) string {
	if colCount <= 26 {
		return string(rune('A' + colCount - 1))
	}
	firstChar := string(rune('A' + (colCount-1)/26 - 1))
	secondChar := string(rune('A' + (colCount-1)%26))
	return firstChar + secondChar
}
