package models

import "time"

// User is a reference-catalog identity. Rows are written once per generation
// epoch and never mutated; events reference UserID without a foreign-key
// constraint.
type User struct {
	EpochID           string    `db:"epoch_id" json:"epoch_id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Username          string    `db:"username" json:"username"`
	Email             string    `db:"email" json:"email"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Department        string    `db:"department" json:"department"`
	Title             string    `db:"title" json:"title"`
	EmployeeType      string    `db:"employee_type" json:"employee_type"`
	SecurityClearance string    `db:"security_clearance" json:"security_clearance"`
	Location          string    `db:"location" json:"location"`
	Privileged        bool      `db:"privileged" json:"privileged"`
	RiskScore         float64   `db:"risk_score" json:"risk_score"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
