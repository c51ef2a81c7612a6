package reminder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const productID = "-//DHBW Karlsruhe//Leihschein//DE"

// dueHour is the local wall clock hour the reminder fires at on the due
// date.
const dueHour = 9

// Registrar creates reminder entries as iCalendar VTODO files and hands
// them to the OS default calendar handler.
type Registrar struct {
	open   func(path string) error
	newUID func() string
}

// NewRegistrar creates a registrar. open performs the hand-off to the
// calendar application; nil skips the hand-off and only writes the entry.
func NewRegistrar(open func(path string) error) *Registrar {
	return &Registrar{
		open:   open,
		newUID: func() string { return uuid.NewString() + "@leihschein" },
	}
}

// Register serializes the task as a VTODO next to the slip at slipPath and
// passes it to the calendar handler. Returns the entry path. Failures are
// reported as ServiceUnavailableError; the caller treats them as
// non-fatal.
func (r *Registrar) Register(t *Task, slipPath string) (string, error) {
	icsPath := strings.TrimSuffix(slipPath, filepath.Ext(slipPath)) + ".ics"

	if err := os.WriteFile(icsPath, []byte(r.serialize(t)), 0o644); err != nil {
		return "", &ServiceUnavailableError{Err: fmt.Errorf("failed to write calendar entry: %w", err)}
	}

	if r.open != nil {
		if err := r.open(icsPath); err != nil {
			return icsPath, &ServiceUnavailableError{Err: fmt.Errorf("failed to hand entry to calendar: %w", err)}
		}
	}
	return icsPath, nil
}

func (r *Registrar) serialize(t *Task) string {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)

	todo := cal.AddTodo(r.newUID())
	todo.SetSummary(t.Subject)
	todo.SetDescription(t.Body)
	todo.SetDueAt(dueAt(t.DueDate))
	todo.SetPriority(1)

	// The alarm fires exactly at the due timestamp, 09:00 on the due
	// date.
	alarm := todo.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetDescription(t.Subject)
	alarm.SetTrigger("PT0S")

	return cal.Serialize()
}

// dueAt places the due timestamp at a working-hours wall clock time so
// calendar applications surface it on the right day.
func dueAt(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), dueHour, 0, 0, 0, time.Local)
}
