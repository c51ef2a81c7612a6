package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
)

// PromptFunc obtains one value from the user. Collection goes through this
// indirection so tests can script answers without a terminal.
type PromptFunc func(label string, validate func(string) error) (string, error)

// Collector gathers all form values for one slip from interactive prompts.
type Collector struct {
	prompt   PromptFunc
	now      func() time.Time
	maxItems int
}

// NewCollector creates a collector that prompts on the terminal. maxItems
// is the template's item row capacity.
func NewCollector(maxItems int) *Collector {
	return &Collector{
		prompt:   runPrompt,
		now:      time.Now,
		maxItems: maxItems,
	}
}

// Collect prompts for every form field in slip order and returns the
// completed snapshot. Required fields re-prompt in place until non-empty.
// Returns ErrAborted if the user cancels; nothing has been written then.
func (c *Collector) Collect() (*Values, error) {
	loanDate := c.now()
	v := &Values{LoanDate: loanDate}

	var err error
	if v.Program, err = c.prompt("Studiengang", nil); err != nil {
		return nil, err
	}
	if v.Name, err = c.prompt("Name", notEmpty); err != nil {
		return nil, err
	}
	if v.Course, err = c.prompt("Kurs", nil); err != nil {
		return nil, err
	}
	if v.Email, err = c.prompt("Email", nil); err != nil {
		return nil, err
	}

	countStr, err := c.prompt("Anzahl ausgeliehene Artikel", itemCount(c.maxItems))
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return nil, fmt.Errorf("invalid item count %q: %w", countStr, err)
	}

	for i := 0; i < count; i++ {
		item, err := c.collectItem(i)
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
	}

	returnStr, err := c.prompt("Rückgabedatum (TT.MM.JJJJ)", returnDate(loanDate))
	if err != nil {
		return nil, err
	}
	if v.ReturnDate, err = time.Parse(DateLayout, returnStr); err != nil {
		return nil, fmt.Errorf("invalid return date %q: %w", returnStr, err)
	}

	if v.Purpose, err = c.prompt("Verwendungszweck", nil); err != nil {
		return nil, err
	}
	if v.IssuedBy, err = c.prompt("Ausgegeben durch", nil); err != nil {
		return nil, err
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Collector) collectItem(i int) (Item, error) {
	var item Item
	var err error

	if item.Pos, err = c.prompt(fmt.Sprintf("Artikel %d - Pos.", i+1), optionalInt); err != nil {
		return item, err
	}
	qtyStr, err := c.prompt(fmt.Sprintf("Artikel %d - Menge", i+1), positiveInt)
	if err != nil {
		return item, err
	}
	if item.Quantity, err = strconv.Atoi(qtyStr); err != nil {
		return item, fmt.Errorf("invalid quantity %q: %w", qtyStr, err)
	}
	if item.Description, err = c.prompt(fmt.Sprintf("Artikel %d - Bezeichnung", i+1), notEmpty); err != nil {
		return item, err
	}
	if item.SerialNumber, err = c.prompt(fmt.Sprintf("Artikel %d - Seriennummer", i+1), nil); err != nil {
		return item, err
	}
	if item.InventoryNumber, err = c.prompt(fmt.Sprintf("Artikel %d - Inventar-Nummer", i+1), nil); err != nil {
		return item, err
	}
	return item, nil
}

func runPrompt(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	s, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Prompt validators. Error texts are shown inline in the prompt, so they
// are user-facing.

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Eingabe darf nicht leer sein")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("Bitte eine positive Zahl eingeben")
	}
	return nil
}

func optionalInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("Bitte eine Zahl eingeben oder leer lassen")
	}
	return nil
}

func itemCount(max int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return errors.New("Bitte eine positive Zahl eingeben")
		}
		if max > 0 && n > max {
			return fmt.Errorf("Das Formular hat nur %d Artikelzeilen", max)
		}
		return nil
	}
}

func returnDate(loanDate time.Time) func(string) error {
	// time.Parse yields midnight UTC, so compare against the loan day on
	// the same footing.
	day := time.Date(loanDate.Year(), loanDate.Month(), loanDate.Day(), 0, 0, 0, 0, time.UTC)
	return func(s string) error {
		d, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return errors.New("Datum im Format TT.MM.JJJJ eingeben")
		}
		if d.Before(day) {
			return errors.New("Rückgabedatum liegt vor dem Leihdatum")
		}
		return nil
	}
}
