package model

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentCheckedIn EnrollmentStatus = "checked_in"
)

type Enrollment struct {
	ID       int64
	CourseID int64

	StudentName  string
	StudentPhone string

	Status EnrollmentStatus

	// Sent-flags are monotonic: false->true only, enforced by the
	// compare-and-set write in the repository.
	ReminderEarlySent bool
	ReminderFinalSent bool
}

// ReminderSent reports whether the flag for the given offset is already set.
func (e Enrollment) ReminderSent(o ReminderOffset) bool {
	switch o {
	case OffsetEarly:
		return e.ReminderEarlySent
	case OffsetFinal:
		return e.ReminderFinalSent
	}
	return false
}
