package models

// Teacher links a user account to a teaching profile.
type Teacher struct {
	ID             int64  `db:"id" json:"id"`
	UserID         int64  `db:"user_id" json:"user_id"`
	SpecialtyID    *int64 `db:"specialty_id" json:"specialty_id,omitempty"`
	IsClassTeacher bool   `db:"is_class_teacher" json:"is_class_teacher"`
	Notes          string `db:"notes" json:"notes"`
}

// TeacherDetail extends Teacher with account naming for rosters.
type TeacherDetail struct {
	Teacher
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`
}
