package models

import "time"

// StudentStatus is a free lifecycle tag mutated by registrar actions.
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
)

// Student is a pupil enrolled in a class. ClassID is nullable: deleting
// a class detaches its roster instead of cascading.
type Student struct {
	ID          int64      `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DOB         *time.Time `db:"dob" json:"dob,omitempty"`
	Gender      string     `db:"gender" json:"gender"`
	ClassID     *int64     `db:"class_id" json:"class_id,omitempty"`
	ParentName  string     `db:"parent_name" json:"parent_name"`
	ParentPhone string     `db:"parent_phone" json:"parent_phone"`
	Address     string     `db:"address" json:"address"`
	Status      string     `db:"status" json:"status"`
}

// FullName renders "LastName FirstName", the school-wide display order.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	if s.FirstName == "" {
		return s.LastName
	}
	return s.LastName + " " + s.FirstName
}

// StudentGuardian links a student to a guardian account, unique per pair.
type StudentGuardian struct {
	ID         int64 `db:"id" json:"id"`
	StudentID  int64 `db:"student_id" json:"student_id"`
	GuardianID int64 `db:"guardian_id" json:"guardian_id"`
}
