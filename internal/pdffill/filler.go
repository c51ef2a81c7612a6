package pdffill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dhbw-ka/leihschein/internal/form"
)

// Filler stamps collected values into the fixed slip template. The
// template's field names are read once at construction so schema drift
// surfaces before any prompting.
type Filler struct {
	templatePath string
	fieldNames   map[string]struct{}
	itemRows     int
}

// NewFiller validates the template file and inspects its form fields.
// maxFileSize bounds the template size in bytes; 0 disables the check.
func NewFiller(templatePath string, maxFileSize int64) (*Filler, error) {
	fileInfo, err := os.Stat(templatePath)
	if os.IsNotExist(err) {
		return nil, &TemplateNotFoundError{Path: templatePath}
	}
	if err != nil {
		return nil, &TemplateNotFoundError{Path: templatePath, Err: err}
	}
	if fileInfo.IsDir() {
		return nil, &TemplateNotFoundError{Path: templatePath, Err: fmt.Errorf("path is a directory, not a file")}
	}
	if !strings.EqualFold(filepath.Ext(templatePath), ".pdf") {
		return nil, &TemplateNotFoundError{Path: templatePath, Err: fmt.Errorf("not a PDF file")}
	}
	if maxFileSize > 0 && fileInfo.Size() > maxFileSize {
		return nil, &TemplateNotFoundError{
			Path: templatePath,
			Err:  fmt.Errorf("template size %d exceeds limit %d", fileInfo.Size(), maxFileSize),
		}
	}

	names, err := readFieldNames(templatePath)
	if err != nil {
		return nil, &TemplateNotFoundError{Path: templatePath, Err: err}
	}

	return &Filler{
		templatePath: templatePath,
		fieldNames:   names,
		itemRows:     countItemRows(names),
	}, nil
}

// ItemCapacity returns how many item rows the template provides.
func (f *Filler) ItemCapacity() int {
	return f.itemRows
}

// CheckSchema verifies that every field the schema will write exists in
// the template, up to the template's item row capacity. A template
// without any item row is a mismatch: a slip always carries at least one
// item.
func (f *Filler) CheckSchema() error {
	rows := f.itemRows
	if rows < 1 {
		rows = 1
	}
	return f.checkNames(form.TemplateFieldNames(rows))
}

// Fill writes one new output PDF into outDir with all values stamped into
// the template's fields and returns its path. The file name is derived
// from the loan dates and the borrower; an existing file is never
// overwritten, a numeric suffix is appended instead.
func (f *Filler) Fill(v *form.Values, outDir string) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}

	fields := v.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	if err := f.checkNames(names); err != nil {
		return "", err
	}

	outPath, err := uniquePath(filepath.Join(outDir, OutputFileName(v)))
	if err != nil {
		return "", err
	}

	fillJSON, err := fillDataJSON(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fill data: %w", err)
	}
	tmp, err := os.CreateTemp("", "leihschein-fill-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create fill data file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(fillJSON); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write fill data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write fill data: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.FillFormFile(f.templatePath, tmp.Name(), outPath, conf); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to fill form: %w", err)
	}
	return outPath, nil
}

func (f *Filler) checkNames(names []string) error {
	var missing []string
	for _, name := range names {
		if _, ok := f.fieldNames[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &FieldMismatchError{Missing: missing}
	}
	return nil
}

// OutputFileName derives the deterministic slip file name:
// <loan date>-<return date>-Leihschein-<borrower>.pdf with ISO dates.
func OutputFileName(v *form.Values) string {
	return fmt.Sprintf("%s-%s-Leihschein-%s.pdf",
		v.LoanDate.Format(form.FileDateLayout),
		v.ReturnDate.Format(form.FileDateLayout),
		sanitizeFileName(v.Name))
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, s)
}

// uniquePath returns path if it is free, otherwise the first
// "name (N).ext" variant that is.
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("cannot access output path %s: %w", path, err)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("cannot access output path %s: %w", candidate, err)
		}
	}
}

// countItemRows derives the template's item row capacity from the highest
// numbered description field present.
func countItemRows(names map[string]struct{}) int {
	if _, ok := names[form.ItemFieldBezeichnung]; !ok {
		return 0
	}
	rows := 1
	for {
		if _, ok := names[form.RowFieldName(form.ItemFieldBezeichnung, rows)]; !ok {
			return rows
		}
		rows++
	}
}

// fillDataJSON builds pdfcpu's form fill JSON: text fields matched by
// name, one form group for the single-page template.
func fillDataJSON(fields map[string]string) ([]byte, error) {
	tf := make([]textField, 0, len(fields))
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tf = append(tf, textField{Name: name, Value: fields[name]})
	}
	return json.MarshalIndent(fillData{Forms: []fillForm{{TextFields: tf}}}, "", "  ")
}

type fillData struct {
	Forms []fillForm `json:"forms"`
}

type fillForm struct {
	TextFields []textField `json:"textfield,omitempty"`
}

type textField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}
