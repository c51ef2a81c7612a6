package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/dhbw-ka/leihschein/internal/form"
)

// Task is the return reminder registered with the user's calendar/task
// system. Subject and body are user-facing and summarize the loan.
type Task struct {
	Subject string
	Body    string
	DueDate time.Time
}

// NewTask builds the reminder for one issued slip. slipFileName is the
// generated PDF's file name, which ties the reminder to the document.
func NewTask(v *form.Values, slipFileName string) *Task {
	body := fmt.Sprintf(
		"Die Rückgabe von %s (%s) aus dem Kurs %s ist fällig. "+
			"Folgende Artikel wurden am %s für %s geliehen:\n%s",
		v.Name, v.Email, v.Course,
		v.LoanDate.Format(form.DateLayout), v.Purpose,
		strings.Join(v.ItemDescriptions(), ", "))

	return &Task{
		Subject: "Rückgabe des Leihscheins " + slipFileName,
		Body:    body,
		DueDate: v.ReturnDate,
	}
}

// ServiceUnavailableError means the reminder could not be handed to the
// calendar system. Non-fatal: the slip already exists on disk.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("reminder service unavailable: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }
