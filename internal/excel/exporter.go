package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/scanvocab/pkg/models"
)

var exportHeader = []string{"English", "Japanese", "Project", "Status", "Repetition", "Next review"}

// ExportWords writes a user's words to an xlsx file at the given path.
// Project names are resolved through the provided map.
func ExportWords(path string, words []models.Word, projectNames map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %v", err)
		}
	}

	for i, word := range words {
		nextReview := ""
		if word.NextReviewAt != nil {
			nextReview = word.NextReviewAt.Format(time.RFC3339)
		}

		values := []interface{}{
			word.English,
			word.Japanese,
			projectNames[word.ProjectID],
			string(word.Status),
			word.Repetition,
			nextReview,
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %v", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save export file: %v", err)
	}
	return nil
}
