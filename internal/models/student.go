package models

import "time"

type Student struct {
	ID          int64  `db:"id" json:"id"`
	StudentCode string `db:"student_code" json:"student_code"`
	RollNumber  string `db:"roll_number" json:"roll_number"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Department  string `db:"department" json:"department"`
	YearOfStudy string `db:"year_of_study" json:"year_of_study"`
	Section     string `db:"section" json:"section"`

	// Remaining catalog fields (contact, guardian, fee, ...) as a JSON
	// document; the import schema is wider than what gets queried.
	AttributesJSON string `db:"attributes_json" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
