package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/facturx/internal/model"
)

// Attachment describes one embedded resource as seen through a container
// index.
type Attachment struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Report is the result of inspecting a container for Factur-X content.
// EmbeddedFiles reflects the /Names /EmbeddedFiles tree, AssociatedFiles the
// catalog /AF array; a conformant container lists the document twin in both.
type Report struct {
	EmbeddedFiles   []Attachment `json:"embedded_files"`
	AssociatedFiles []Attachment `json:"associated_files"`
	HasMetadata     bool         `json:"has_metadata"`
	HasDocumentTwin bool         `json:"has_document_twin"`
}

// Inspect reads a container and reports how (and whether) the document twin
// is registered in it.
func Inspect(path string) (*Report, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, model.NewIOError("inspect", fmt.Sprintf("cannot open container %s", path), err)
	}
	e := &Editor{ctx: ctx, state: StateOpened}

	rootDict, err := ctx.XRefTable.Catalog()
	if err != nil {
		return nil, model.NewIOError("inspect", "cannot resolve container catalog", err)
	}

	rpt := &Report{}
	if rpt.EmbeddedFiles, err = e.namedEmbeddedFiles(rootDict); err != nil {
		return nil, model.NewIOError("inspect", "cannot read embedded files name tree", err)
	}
	if rpt.AssociatedFiles, err = e.associatedFiles(rootDict); err != nil {
		return nil, model.NewIOError("inspect", "cannot read associated files index", err)
	}
	_, rpt.HasMetadata = rootDict.Find("Metadata")

	inNames := false
	for _, a := range rpt.EmbeddedFiles {
		if a.Name == AttachmentName {
			inNames = true
		}
	}
	inAF := false
	for _, a := range rpt.AssociatedFiles {
		if a.Name == AttachmentName {
			inAF = true
		}
	}
	rpt.HasDocumentTwin = inNames && inAF

	return rpt, nil
}

func (e *Editor) namedEmbeddedFiles(rootDict types.Dict) ([]Attachment, error) {
	xref := e.ctx.XRefTable

	obj, found := rootDict.Find("Names")
	if !found {
		return nil, nil
	}
	namesDict, err := xref.DereferenceDict(obj)
	if err != nil || namesDict == nil {
		return nil, err
	}
	obj, found = namesDict.Find("EmbeddedFiles")
	if !found {
		return nil, nil
	}
	efDict, err := xref.DereferenceDict(obj)
	if err != nil || efDict == nil {
		return nil, err
	}
	obj, found = efDict.Find("Names")
	if !found {
		return nil, nil
	}
	arr, err := xref.DereferenceArray(obj)
	if err != nil {
		return nil, err
	}

	var out []Attachment
	for i := 0; i+1 < len(arr); i += 2 {
		key, err := e.stringObject(arr[i])
		if err != nil {
			return nil, err
		}
		a := Attachment{Name: key}
		if d, err := xref.DereferenceDict(arr[i+1]); err == nil && d != nil {
			e.fillFromFileSpec(&a, d)
		}
		out = append(out, a)
	}
	return out, nil
}

func (e *Editor) associatedFiles(rootDict types.Dict) ([]Attachment, error) {
	xref := e.ctx.XRefTable

	obj, found := rootDict.Find("AF")
	if !found {
		return nil, nil
	}
	arr, err := xref.DereferenceArray(obj)
	if err != nil {
		return nil, err
	}

	var out []Attachment
	for _, o := range arr {
		d, err := xref.DereferenceDict(o)
		if err != nil || d == nil {
			continue
		}
		a := Attachment{}
		if name, err := e.stringEntry(d, "F"); err == nil {
			a.Name = name
		}
		e.fillFromFileSpec(&a, d)
		out = append(out, a)
	}
	return out, nil
}

func (e *Editor) fillFromFileSpec(a *Attachment, d types.Dict) {
	if desc, err := e.stringEntry(d, "Desc"); err == nil {
		a.Description = desc
	}
	if rel := d.NameEntry("AFRelationship"); rel != nil {
		a.Relationship = *rel
	}
}
