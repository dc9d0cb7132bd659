package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"campus-admin/internal/models"
)

// Columns stored natively; everything else from the field catalog lands in
// the attributes JSON document.
var studentColumns = map[string]bool{
	"student_code":  true,
	"roll_number":   true,
	"first_name":    true,
	"last_name":     true,
	"department":    true,
	"year_of_study": true,
	"section":       true,
}

type StudentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts one student record built by the import pipeline. It
// satisfies the importer.RecordCreator contract.
func (r *StudentRepository) Create(ctx context.Context, record map[string]string) error {
	attrs := map[string]string{}
	for k, v := range record {
		if !studentColumns[k] {
			attrs[k] = v
		}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	student := models.Student{
		StudentCode:    record["student_code"],
		RollNumber:     record["roll_number"],
		FirstName:      record["first_name"],
		LastName:       record["last_name"],
		Department:     record["department"],
		YearOfStudy:    record["year_of_study"],
		Section:        record["section"],
		AttributesJSON: string(attrsJSON),
	}

	query := `INSERT INTO students (student_code, roll_number, first_name, last_name,
	          department, year_of_study, section, attributes_json)
	          VALUES (:student_code, :roll_number, :first_name, :last_name,
	          :department, :year_of_study, :section, :attributes_json)`
	_, err = r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return fmt.Errorf("student %s already exists in %s %s-%s",
				student.RollNumber, student.Department, student.YearOfStudy, student.Section)
		}
		return err
	}
	return nil
}

func (r *StudentRepository) GetByID(id int64) (*models.Student, error) {
	var student models.Student
	query := "SELECT * FROM students WHERE id = ? LIMIT 1"
	if err := r.db.Get(&student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) GetStudents(limit, offset int, search string) ([]models.Student, int, error) {
	var students []models.Student
	var total int

	whereClause := ""
	args := []interface{}{}
	if search != "" {
		whereClause = "WHERE roll_number LIKE ? OR first_name LIKE ? OR last_name LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}

	countQuery := "SELECT COUNT(*) FROM students " + whereClause
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM students " + whereClause +
		" ORDER BY year_of_study, section, roll_number LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	if err := r.db.Select(&students, query, args...); err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
