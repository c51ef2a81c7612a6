package pdffill

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhbw-ka/leihschein/internal/form"
)

func testValues() *form.Values {
	return &form.Values{
		Name:       "Jane Doe",
		Email:      "jane.doe@example.org",
		LoanDate:   time.Date(2024, 1, 10, 14, 0, 0, 0, time.Local),
		ReturnDate: time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC),
		Items: []form.Item{
			{Quantity: 1, Description: "Oszilloskop"},
		},
	}
}

func namesSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// createTemplate generates a slip template with the schema's field names
// using pdfcpu's create API, one text field per line.
func createTemplate(t *testing.T, path string, rows int) {
	t.Helper()

	type tmplField struct {
		ID     string     `json:"id"`
		Pos    [2]float64 `json:"pos"`
		Width  float64    `json:"width"`
		Height float64    `json:"height"`
	}
	var fields []tmplField
	for i, name := range form.TemplateFieldNames(rows) {
		y := 800 - float64(i)*22
		fields = append(fields, tmplField{ID: name, Pos: [2]float64{50, y}, Width: 300, Height: 16})
	}

	doc := map[string]any{
		"fonts": map[string]any{
			"input": map[string]any{"name": "Helvetica", "size": 12},
		},
		"pages": map[string]any{
			"1": map[string]any{
				"content": map[string]any{
					"textfield": fields,
				},
			},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	jsonPath := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, os.WriteFile(jsonPath, data, 0o644))
	require.NoError(t, api.CreateFile("", jsonPath, path, model.NewDefaultConfiguration()))
}

// exportFieldValues reads back the logical field contents of a filled
// slip. pdfcpu exports date-valued fields as datefield, the rest as
// textfield.
func exportFieldValues(t *testing.T, pdfPath string) map[string]string {
	t.Helper()

	exportPath := filepath.Join(t.TempDir(), "export.json")
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	require.NoError(t, api.ExportFormFile(pdfPath, exportPath, conf))

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)

	var exported struct {
		Forms []struct {
			TextFields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"textfield"`
			DateFields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"datefield"`
		} `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(data, &exported))

	values := make(map[string]string)
	for _, f := range exported.Forms {
		for _, tf := range f.TextFields {
			values[tf.Name] = tf.Value
		}
		for _, df := range f.DateFields {
			values[df.Name] = df.Value
		}
	}
	return values
}

func TestFiller_FillTemplate(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "Ausleihe_leer.pdf")
	createTemplate(t, tmplPath, 3)

	f, err := NewFiller(tmplPath, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, f.ItemCapacity())
	require.NoError(t, f.CheckSchema())

	v := testValues()
	v.Items = append(v.Items, form.Item{Pos: "2", Quantity: 2, Description: "Tastkopf"})

	outDir := t.TempDir()
	slipPath, err := f.Fill(v, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "2024-01-10-2024-01-24-Leihschein-Jane Doe.pdf"), slipPath)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "exactly one output file per run")

	got := exportFieldValues(t, slipPath)
	for name, want := range v.Fields() {
		assert.Equal(t, want, got[name], "field %s", name)
	}

	// Identical values produce identical logical field contents, written
	// to a fresh path instead of overwriting the first slip.
	secondPath, err := f.Fill(v, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "2024-01-10-2024-01-24-Leihschein-Jane Doe (2).pdf"), secondPath)
	assert.FileExists(t, slipPath)
	assert.Equal(t, got, exportFieldValues(t, secondPath))
}

func TestNewFiller_TemplateNotFound(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "Ausleihe_leer.pdf")
			},
		},
		{
			name: "directory instead of file",
			path: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "Ausleihe_leer.pdf")
				require.NoError(t, os.Mkdir(dir, 0o750))
				return dir
			},
		},
		{
			name: "wrong extension",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "Ausleihe_leer.txt")
				require.NoError(t, os.WriteFile(p, []byte("not a pdf"), 0o644))
				return p
			},
		},
		{
			name: "not a PDF inside",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "Ausleihe_leer.pdf")
				require.NoError(t, os.WriteFile(p, []byte("not a pdf"), 0o644))
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFiller(tt.path(t), 0)
			var notFound *TemplateNotFoundError
			require.ErrorAs(t, err, &notFound)
		})
	}
}

func TestNewFiller_SizeLimit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(p, make([]byte, 2048), 0o644))

	_, err := NewFiller(p, 1024)
	var notFound *TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestFiller_CheckSchema(t *testing.T) {
	complete := form.TemplateFieldNames(2)

	t.Run("all fields present", func(t *testing.T) {
		f := &Filler{fieldNames: namesSet(complete...), itemRows: 2}
		assert.NoError(t, f.CheckSchema())
	})

	t.Run("missing fields reported sorted", func(t *testing.T) {
		names := namesSet(complete...)
		delete(names, form.FieldRueckgabedatum)
		delete(names, "Menge_1")

		f := &Filler{fieldNames: names, itemRows: 2}
		err := f.CheckSchema()
		var mismatch *FieldMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, []string{"Menge_1", form.FieldRueckgabedatum}, mismatch.Missing)
	})
}

func TestFiller_FillRejectsUnknownFields(t *testing.T) {
	// Template with a single item row; two items exceed it.
	f := &Filler{fieldNames: namesSet(form.TemplateFieldNames(1)...), itemRows: 1}

	v := testValues()
	v.Items = append(v.Items, form.Item{Quantity: 1, Description: "Tastkopf"})

	dir := t.TempDir()
	_, err := f.Fill(v, dir)
	var mismatch *FieldMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, "Bezeichnung_1")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no output file may be written on mismatch")
}

func TestFiller_FillRejectsInvalidValues(t *testing.T) {
	f := &Filler{fieldNames: namesSet(form.TemplateFieldNames(1)...), itemRows: 1}

	v := testValues()
	v.Name = ""

	dir := t.TempDir()
	_, err := f.Fill(v, dir)
	var missing *form.MissingFieldError
	require.ErrorAs(t, err, &missing)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no output file may be written for invalid values")
}

func TestOutputFileName(t *testing.T) {
	v := testValues()
	assert.Equal(t, "2024-01-10-2024-01-24-Leihschein-Jane Doe.pdf", OutputFileName(v))

	v.Name = "A/B\\C:D"
	assert.Equal(t, "2024-01-10-2024-01-24-Leihschein-A-B-C-D.pdf", OutputFileName(v))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slip.pdf")

	got, err := uniquePath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	got, err = uniquePath(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "slip (2).pdf"), got)

	require.NoError(t, os.WriteFile(got, []byte("x"), 0o644))
	got, err = uniquePath(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "slip (3).pdf"), got)
}

func TestCountItemRows(t *testing.T) {
	tests := []struct {
		name  string
		names map[string]struct{}
		want  int
	}{
		{
			name:  "no item fields",
			names: namesSet("Name", "Datum"),
			want:  0,
		},
		{
			name:  "single row",
			names: namesSet("Bezeichnung"),
			want:  1,
		},
		{
			name:  "five rows",
			names: namesSet("Bezeichnung", "Bezeichnung_1", "Bezeichnung_2", "Bezeichnung_3", "Bezeichnung_4"),
			want:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countItemRows(tt.names))
		})
	}
}

func TestFillDataJSON(t *testing.T) {
	data, err := fillDataJSON(map[string]string{
		"Name":  "Jane Doe",
		"Datum": "10.01.2024",
	})
	require.NoError(t, err)

	var decoded fillData
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Forms, 1)
	require.Len(t, decoded.Forms[0].TextFields, 2)
	// Sorted by name for reproducible fill data.
	assert.Equal(t, "Datum", decoded.Forms[0].TextFields[0].Name)
	assert.Equal(t, "10.01.2024", decoded.Forms[0].TextFields[0].Value)
	assert.Equal(t, "Jane Doe", decoded.Forms[0].TextFields[1].Value)
	assert.False(t, decoded.Forms[0].TextFields[1].Locked)
}
