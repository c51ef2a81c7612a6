package form

import (
	"fmt"
	"time"
)

// Field names as they appear in the template's AcroForm. The template is
// fixed, so the schema is fixed too; drift between the two is detected
// against the real template at startup.
const (
	FieldStudiengang      = "Studiengang"
	FieldName             = "Name"
	FieldKurs             = "Kurs"
	FieldEmail            = "Email"
	FieldRueckgabedatum   = "Rückgabedatum"
	FieldVerwendungszweck = "Verwendungszweck"
	FieldAusgegebenDurch  = "Ausgegeben durch"
	FieldDatum            = "Datum"
)

// Per-item row fields. Row 0 uses the bare name, row N appends "_N".
const (
	ItemFieldPos          = "Pos"
	ItemFieldMenge        = "Menge"
	ItemFieldBezeichnung  = "Bezeichnung"
	ItemFieldSeriennummer = "Seriennummer"
	ItemFieldInventar     = "Inventar-Nummer"
)

const (
	// DateLayout is the layout for all dates entered and printed on the slip.
	DateLayout = "02.01.2006"
	// FileDateLayout is the layout used inside generated file names.
	FileDateLayout = "2006-01-02"
)

// Item is one loaned article on the slip.
type Item struct {
	Pos             string
	Quantity        int
	Description     string
	SerialNumber    string
	InventoryNumber string
}

// Values holds all collected form values for a single run. It is treated
// as immutable once collection has completed.
type Values struct {
	Program    string // Studiengang
	Name       string
	Course     string // Kurs
	Email      string
	Purpose    string // Verwendungszweck
	IssuedBy   string // Ausgegeben durch
	LoanDate   time.Time
	ReturnDate time.Time
	Items      []Item
}

// BaseFieldNames returns the non-item template field names.
func BaseFieldNames() []string {
	return []string{
		FieldStudiengang,
		FieldName,
		FieldKurs,
		FieldEmail,
		FieldRueckgabedatum,
		FieldVerwendungszweck,
		FieldAusgegebenDurch,
		FieldDatum,
	}
}

// ItemFieldNames returns the template field names for item row n.
func ItemFieldNames(n int) []string {
	return []string{
		RowFieldName(ItemFieldPos, n),
		RowFieldName(ItemFieldMenge, n),
		RowFieldName(ItemFieldBezeichnung, n),
		RowFieldName(ItemFieldSeriennummer, n),
		RowFieldName(ItemFieldInventar, n),
	}
}

// RowFieldName returns the template name of an item field in row n.
func RowFieldName(field string, n int) string {
	if n == 0 {
		return field
	}
	return fmt.Sprintf("%s_%d", field, n)
}

// TemplateFieldNames returns every field name the schema expects from a
// template with the given number of item rows.
func TemplateFieldNames(rows int) []string {
	names := BaseFieldNames()
	for n := 0; n < rows; n++ {
		names = append(names, ItemFieldNames(n)...)
	}
	return names
}

// Validate checks that all required fields are present. It mirrors what
// the interactive collector enforces, for values constructed in code.
func (v *Values) Validate() error {
	if v.Name == "" {
		return &MissingFieldError{Field: FieldName}
	}
	if v.ReturnDate.IsZero() {
		return &MissingFieldError{Field: FieldRueckgabedatum}
	}
	if v.LoanDate.IsZero() {
		return &MissingFieldError{Field: FieldDatum}
	}
	if len(v.Items) == 0 {
		return &MissingFieldError{Field: ItemFieldBezeichnung}
	}
	for _, it := range v.Items {
		if it.Description == "" {
			return &MissingFieldError{Field: ItemFieldBezeichnung}
		}
		if it.Quantity <= 0 {
			return &MissingFieldError{Field: ItemFieldMenge}
		}
	}
	return nil
}

// Fields maps the collected values onto template field names. The mapping
// covers every schema field; optional fields that were left empty map to
// the empty string so the slip renders with blank boxes, not stale
// defaults.
func (v *Values) Fields() map[string]string {
	fields := map[string]string{
		FieldStudiengang:      v.Program,
		FieldName:             v.Name,
		FieldKurs:             v.Course,
		FieldEmail:            v.Email,
		FieldRueckgabedatum:   v.ReturnDate.Format(DateLayout),
		FieldVerwendungszweck: v.Purpose,
		FieldAusgegebenDurch:  v.IssuedBy,
		FieldDatum:            v.LoanDate.Format(DateLayout),
	}
	for n, it := range v.Items {
		fields[RowFieldName(ItemFieldPos, n)] = it.Pos
		fields[RowFieldName(ItemFieldMenge, n)] = fmt.Sprintf("%d", it.Quantity)
		fields[RowFieldName(ItemFieldBezeichnung, n)] = it.Description
		fields[RowFieldName(ItemFieldSeriennummer, n)] = it.SerialNumber
		fields[RowFieldName(ItemFieldInventar, n)] = it.InventoryNumber
	}
	return fields
}

// ItemDescriptions returns the item names in slip order, for reminder
// bodies and registry records.
func (v *Values) ItemDescriptions() []string {
	names := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		names = append(names, it.Description)
	}
	return names
}
