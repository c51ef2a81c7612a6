package pdffill

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// readFieldNames returns the fully qualified names of all AcroForm fields
// in the PDF at path.
func readFieldNames(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	names := make(map[string]struct{})

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return names, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return names, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return names, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for _, fieldRef := range fieldsArray {
		collectFieldNames(ctx, fieldRef, "", names)
	}
	return names, nil
}

// collectFieldNames walks a field dictionary and its kids, accumulating
// fully qualified field names (parent names joined with ".").
func collectFieldNames(ctx *model.Context, fieldObj types.Object, parent string, names map[string]struct{}) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return
	}

	name := parent
	if nameObj, found := fieldDict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if parent != "" {
				name = parent + "." + partial
			} else {
				name = partial
			}
		}
	}

	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil && len(kids) > 0 {
			for _, kid := range kids {
				collectFieldNames(ctx, kid, name, names)
			}
			return
		}
	}

	if name != "" {
		names[name] = struct{}{}
	}
}
