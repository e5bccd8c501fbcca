// Package excel imports and exports vocabulary lists as spreadsheet files.
package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/scanvocab/internal/database"
	"github.com/example/scanvocab/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	UserID         int64  // Owner of the imported words
	DefaultProject string // Project used when a row has no project column
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(userID int64, filePath string) ImportConfig {
	return ImportConfig{
		FilePath:       filePath,
		UserID:         userID,
		DefaultProject: "Imported",
		SheetName:      "Sheet1",
		StartRow:       2, // skip the header row
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed  int
	ProjectsCreated int
	Created         int
	Updated         int
	Skipped         int
	Errors          []string
}

// importedRow is one parsed spreadsheet row: English, Japanese, optional project
type importedRow struct {
	English  string
	Japanese string
	Project  string
}

// ImportWords imports words from an Excel or CSV file. Expected columns:
// A = English, B = Japanese, C = project name (optional).
func ImportWords(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	projectRepo := database.NewProjectRepository()
	wordRepo := database.NewWordRepository()

	// Map project names to IDs so each project is resolved once
	projectIDs := make(map[string]int64)
	existing, err := projectRepo.GetByUser(config.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing projects: %v", err)
	}
	for _, p := range existing {
		projectIDs[strings.ToLower(p.Name)] = p.ID
	}

	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		parsed, err := parseRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if parsed.Project == "" {
			parsed.Project = config.DefaultProject
		}

		projectID, ok := projectIDs[strings.ToLower(parsed.Project)]
		if !ok {
			project, err := projectRepo.GetOrCreate(config.UserID, parsed.Project)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
				continue
			}
			projectID = project.ID
			projectIDs[strings.ToLower(parsed.Project)] = projectID
			result.ProjectsCreated++
		}

		word, err := wordRepo.GetByEnglish(config.UserID, projectID, parsed.English)
		if err == nil {
			// Word exists: refresh the translation, keep the review state
			word.Japanese = parsed.Japanese
			if err := wordRepo.Update(word); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
				continue
			}
			result.Updated++
			continue
		}

		newWord := models.NewWord(config.UserID, projectID, parsed.English, parsed.Japanese)
		if err := wordRepo.Create(&newWord); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}

	return result, nil
}

// parseRow validates one spreadsheet row
func parseRow(row []string) (importedRow, error) {
	var parsed importedRow

	if len(row) < 2 {
		return parsed, errors.New("expected at least English and Japanese columns")
	}

	parsed.English = strings.ToLower(strings.TrimSpace(row[0]))
	parsed.Japanese = strings.TrimSpace(row[1])
	if len(row) >= 3 {
		parsed.Project = strings.TrimSpace(row[2])
	}

	if parsed.English == "" {
		return parsed, errors.New("empty English column")
	}
	if parsed.Japanese == "" {
		return parsed, errors.New("empty Japanese column")
	}
	return parsed, nil
}

// readExcel loads all rows from an xlsx sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

// readCSV loads all rows from a CSV file
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may omit the project column

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
