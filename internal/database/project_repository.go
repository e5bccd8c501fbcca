package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/scanvocab/pkg/models"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct{}

// NewProjectRepository creates a new repository instance
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

// GetByID returns a project by ID
func (r *ProjectRepository) GetByID(id int64) (*models.Project, error) {
	var project models.Project
	err := DB.Get(&project, DB.Rebind("SELECT * FROM projects WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %v", err)
	}
	return &project, nil
}

// GetByUser returns all projects belonging to a user
func (r *ProjectRepository) GetByUser(userID int64) ([]models.Project, error) {
	var projects []models.Project
	err := DB.Select(&projects, DB.Rebind("SELECT * FROM projects WHERE user_id = ? ORDER BY name"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %v", err)
	}
	return projects, nil
}

// GetOrCreate returns the user's project with the given name, creating it if needed
func (r *ProjectRepository) GetOrCreate(userID int64, name string) (*models.Project, error) {
	var project models.Project
	err := DB.Get(&project, DB.Rebind("SELECT * FROM projects WHERE user_id = ? AND name = ?"), userID, name)
	if err == nil {
		return &project, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up project: %v", err)
	}

	project = models.Project{UserID: userID, Name: name}
	if err := r.Create(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create inserts a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	if isPostgres() {
		query := `
			INSERT INTO projects (user_id, name)
			VALUES ($1, $2)
			RETURNING id, created_at, updated_at
		`
		return DB.QueryRow(query, project.UserID, project.Name).
			Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	}

	// SQLite has no RETURNING
	result, err := DB.Exec("INSERT INTO projects (user_id, name) VALUES (?, ?)", project.UserID, project.Name)
	if err != nil {
		return fmt.Errorf("failed to create project: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	project.ID = id

	return DB.QueryRow("SELECT created_at, updated_at FROM projects WHERE id = ?", project.ID).
		Scan(&project.CreatedAt, &project.UpdatedAt)
}

// Delete removes a project and its words
func (r *ProjectRepository) Delete(id int64) error {
	if _, err := DB.Exec(DB.Rebind("DELETE FROM words WHERE project_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete project words: %v", err)
	}
	if _, err := DB.Exec(DB.Rebind("DELETE FROM projects WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	return nil
}
