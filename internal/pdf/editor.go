// Package pdf edits the object graph of a PDF/A-3 container to attach the
// encoded invoice document as a discoverable embedded resource together with
// the compliance metadata stream.
//
// The embedded resource is registered in two independent indices: the
// catalog's /AF array and the /Names /EmbeddedFiles name tree. Both entries
// reference the same file-specification object. The filespec is made an
// indirect object once and referenced twice, which rules out the
// divergent-duplicate failure mode of building two separate objects.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/facturx/internal/model"
)

// AttachmentName is the canonical filename of the embedded document twin
const AttachmentName = "factur-x.xml"

const (
	attachmentDesc = "Factur-X invoice data"
	mimeTypeXML    = "application/xml"
	// relationshipData marks the attachment as the primary machine-readable
	// representation of the visible document, not merely an alternative.
	relationshipData = "Data"
)

// State tracks the editor lifecycle
type State int

// Editor states. Failed is terminal.
const (
	StateUnopened State = iota
	StateOpened
	StateResourceAttached
	StateMetadataAttached
	StatePersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpened:
		return "opened"
	case StateResourceAttached:
		return "resource-attached"
	case StateMetadataAttached:
		return "metadata-attached"
	case StatePersisted:
		return "persisted"
	default:
		return "failed"
	}
}

// Editor mutates a single container's object graph. It is not safe for
// concurrent use; each document gets its own Editor.
type Editor struct {
	ctx   *pdfmodel.Context
	state State
}

// Open reads the container's object graph. Fails with an IOError if the
// container cannot be parsed.
func Open(path string) (*Editor, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, model.NewIOError("open", fmt.Sprintf("cannot open container %s", path), err)
	}
	return &Editor{ctx: ctx, state: StateOpened}, nil
}

// State returns the editor lifecycle state
func (e *Editor) State() State {
	return e.state
}

func (e *Editor) fail(stage, msg string, cause error) error {
	e.state = StateFailed
	return model.NewIOError(stage, msg, cause)
}

// AttachXML wraps the encoded document bytes in an embedded-file stream,
// creates the file-specification object for it and registers that single
// object in both the /AF array and the /Names /EmbeddedFiles tree under the
// canonical name. Re-attaching replaces the previous registration instead of
// duplicating it.
func (e *Editor) AttachXML(data []byte, modTime time.Time) error {
	if e.state != StateOpened {
		return e.fail("attach", fmt.Sprintf("cannot attach in state %s", e.state), nil)
	}
	xref := e.ctx.XRefTable

	sd, err := xref.NewStreamDictForBuf(data)
	if err != nil {
		return e.fail("attach", "cannot create embedded file stream", err)
	}
	sd.InsertName("Type", "EmbeddedFile")
	sd.InsertName("Subtype", mimeTypeXML)
	sd.Insert("Params", types.Dict(map[string]types.Object{
		"Size":    types.Integer(len(data)),
		"ModDate": types.StringLiteral(types.DateString(modTime)),
	}))
	if err := sd.Encode(); err != nil {
		return e.fail("attach", "cannot encode embedded file stream", err)
	}
	efRef, err := xref.IndRefForNewObject(*sd)
	if err != nil {
		return e.fail("attach", "container cannot accept new objects", err)
	}

	fileSpec := types.Dict(map[string]types.Object{
		"Type":           types.Name("Filespec"),
		"F":              types.StringLiteral(AttachmentName),
		"UF":             types.StringLiteral(AttachmentName),
		"Desc":           types.StringLiteral(attachmentDesc),
		"AFRelationship": types.Name(relationshipData),
		"EF": types.Dict(map[string]types.Object{
			"F":  *efRef,
			"UF": *efRef,
		}),
	})

	// The filespec becomes independently addressable before anything
	// references it; both indices below point at this one object.
	fsRef, err := xref.IndRefForNewObject(fileSpec)
	if err != nil {
		return e.fail("attach", "container cannot accept new objects", err)
	}

	rootDict, err := xref.Catalog()
	if err != nil {
		return e.fail("attach", "cannot resolve container catalog", err)
	}
	if err := e.registerAssociatedFile(rootDict, *fsRef); err != nil {
		return e.fail("attach", "cannot register attachment in /AF index", err)
	}
	if err := e.registerEmbeddedFile(rootDict, *fsRef); err != nil {
		return e.fail("attach", "cannot register attachment in name tree", err)
	}

	e.state = StateResourceAttached
	return nil
}

// registerAssociatedFile puts ref into the catalog's flat /AF array,
// replacing any existing entry that resolves to the canonical name.
func (e *Editor) registerAssociatedFile(rootDict types.Dict, ref types.IndirectRef) error {
	xref := e.ctx.XRefTable

	var af types.Array
	if obj, found := rootDict.Find("AF"); found {
		arr, err := xref.DereferenceArray(obj)
		if err != nil {
			return err
		}
		af = arr
	}

	replaced := false
	for i, obj := range af {
		d, err := xref.DereferenceDict(obj)
		if err != nil || d == nil {
			continue
		}
		name, err := e.stringEntry(d, "F")
		if err == nil && name == AttachmentName {
			af[i] = ref
			replaced = true
			break
		}
	}
	if !replaced {
		af = append(af, ref)
	}

	rootDict.Update("AF", af)
	return nil
}

// registerEmbeddedFile puts ref into the /Names /EmbeddedFiles leaf under the
// canonical name, keeping the pair array sorted by key as the name-tree
// contract requires.
func (e *Editor) registerEmbeddedFile(rootDict types.Dict, ref types.IndirectRef) error {
	xref := e.ctx.XRefTable

	namesDict, err := e.ensureDict(rootDict, "Names")
	if err != nil {
		return err
	}
	efDict, err := e.ensureDict(namesDict, "EmbeddedFiles")
	if err != nil {
		return err
	}
	if _, found := efDict.Find("Kids"); found {
		return fmt.Errorf("multi-node embedded files name tree not supported")
	}

	type pair struct {
		key string
		val types.Object
	}
	var pairs []pair
	if obj, found := efDict.Find("Names"); found {
		arr, err := xref.DereferenceArray(obj)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(arr); i += 2 {
			key, err := e.stringObject(arr[i])
			if err != nil {
				return err
			}
			if key == AttachmentName {
				continue
			}
			pairs = append(pairs, pair{key: key, val: arr[i+1]})
		}
	}
	pairs = append(pairs, pair{key: AttachmentName, val: ref})
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	arr := make(types.Array, 0, 2*len(pairs))
	for _, p := range pairs {
		arr = append(arr, types.StringLiteral(p.key), p.val)
	}
	efDict.Update("Names", arr)
	// A root leaf node carries no Limits entry.
	efDict.Delete("Limits")
	return nil
}

// SetMetadata attaches the descriptive-metadata payload as the container's
// single metadata stream, replacing any prior one. Metadata streams stay
// unfiltered, as the archival profile requires.
func (e *Editor) SetMetadata(xmpPacket []byte) error {
	if e.state != StateResourceAttached {
		return e.fail("metadata", fmt.Sprintf("cannot set metadata in state %s", e.state), nil)
	}
	xref := e.ctx.XRefTable

	sd := types.StreamDict{
		Dict:    types.NewDict(),
		Content: xmpPacket,
	}
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	sd.InsertInt("Length", len(xmpPacket))
	if err := sd.Encode(); err != nil {
		return e.fail("metadata", "cannot encode metadata stream", err)
	}

	ref, err := xref.IndRefForNewObject(sd)
	if err != nil {
		return e.fail("metadata", "container cannot accept new objects", err)
	}
	rootDict, err := xref.Catalog()
	if err != nil {
		return e.fail("metadata", "cannot resolve container catalog", err)
	}
	rootDict.Update("Metadata", *ref)

	e.state = StateMetadataAttached
	return nil
}

// Persist writes the edited container. The write is atomic from the caller's
// perspective: content goes to a fresh file in the target directory and only
// replaces outPath on full success, so a mid-write failure never leaves a
// half-edited container at the target.
func (e *Editor) Persist(outPath string) error {
	if e.state != StateMetadataAttached {
		return e.fail("persist", fmt.Sprintf("cannot persist in state %s", e.state), nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".facturx-*.pdf")
	if err != nil {
		return e.fail("persist", "cannot create staging file", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := api.WriteContextFile(e.ctx, tmpPath); err != nil {
		os.Remove(tmpPath)
		return e.fail("persist", "cannot write container", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return e.fail("persist", "cannot replace target container", err)
	}

	e.state = StatePersisted
	return nil
}

// ensureDict returns the dict stored under key, creating and inserting an
// empty one when absent.
func (e *Editor) ensureDict(parent types.Dict, key string) (types.Dict, error) {
	if obj, found := parent.Find(key); found {
		d, err := e.ctx.XRefTable.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, fmt.Errorf("%s is not a dictionary", key)
		}
		return d, nil
	}
	d := types.NewDict()
	parent.Insert(key, d)
	return d, nil
}

func (e *Editor) stringEntry(d types.Dict, key string) (string, error) {
	obj, found := d.Find(key)
	if !found {
		return "", fmt.Errorf("missing %s entry", key)
	}
	return e.stringObject(obj)
}

func (e *Editor) stringObject(obj types.Object) (string, error) {
	obj, err := e.ctx.XRefTable.Dereference(obj)
	if err != nil {
		return "", err
	}
	switch s := obj.(type) {
	case types.StringLiteral:
		return types.StringLiteralToString(s)
	case types.HexLiteral:
		return types.HexLiteralToString(s)
	}
	return "", fmt.Errorf("unexpected string object %T", obj)
}
