package pdf_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/testutil"
)

var (
	testXML = []byte(`<?xml version="1.0" encoding="UTF-8"?><rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`)
	testXMP = []byte(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?><x:xmpmeta xmlns:x="adobe:ns:meta/"><pdfaid:part>3</pdfaid:part></x:xmpmeta><?xpacket end="w"?>`)
	modTime = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
)

func buildContainer(t *testing.T, inPath, outPath string) {
	t.Helper()
	editor, err := pdf.Open(inPath)
	require.NoError(t, err)
	require.Equal(t, pdf.StateOpened, editor.State())

	require.NoError(t, editor.AttachXML(testXML, modTime))
	require.Equal(t, pdf.StateResourceAttached, editor.State())

	require.NoError(t, editor.SetMetadata(testXMP))
	require.Equal(t, pdf.StateMetadataAttached, editor.State())

	require.NoError(t, editor.Persist(outPath))
	require.Equal(t, pdf.StatePersisted, editor.State())
}

func TestEditor_BuildFlow(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	outPath := filepath.Join(dir, "out.pdf")

	buildContainer(t, inPath, outPath)

	report, err := pdf.Inspect(outPath)
	require.NoError(t, err)

	require.Len(t, report.EmbeddedFiles, 1)
	assert.Equal(t, pdf.AttachmentName, report.EmbeddedFiles[0].Name)

	require.Len(t, report.AssociatedFiles, 1)
	assert.Equal(t, pdf.AttachmentName, report.AssociatedFiles[0].Name)
	assert.Equal(t, "Data", report.AssociatedFiles[0].Relationship)

	assert.True(t, report.HasMetadata)
	assert.True(t, report.HasDocumentTwin)
}

func TestEditor_SharedFilespecObject(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	outPath := filepath.Join(dir, "out.pdf")

	buildContainer(t, inPath, outPath)

	ctx, err := api.ReadContextFile(outPath)
	require.NoError(t, err)
	xref := ctx.XRefTable

	rootDict, err := xref.Catalog()
	require.NoError(t, err)

	afArr, err := xref.DereferenceArray(rootDict["AF"])
	require.NoError(t, err)
	require.Len(t, afArr, 1)
	afRef, ok := afArr[0].(types.IndirectRef)
	require.True(t, ok, "AF entry must be an indirect reference")

	namesDict, err := xref.DereferenceDict(rootDict["Names"])
	require.NoError(t, err)
	efDict, err := xref.DereferenceDict(namesDict["EmbeddedFiles"])
	require.NoError(t, err)
	pairs, err := xref.DereferenceArray(efDict["Names"])
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	treeRef, ok := pairs[1].(types.IndirectRef)
	require.True(t, ok, "name tree value must be an indirect reference")

	// Both indices must point at the one filespec object; two divergent
	// copies with the same name would pass a name-only check.
	assert.Equal(t, afRef.ObjectNumber, treeRef.ObjectNumber)

	fs, err := xref.DereferenceDict(afRef)
	require.NoError(t, err)
	name := fs.NameEntry("Type")
	require.NotNil(t, name)
	assert.Equal(t, "Filespec", *name)
}

func TestEditor_MetadataStaysUncompressed(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	outPath := filepath.Join(dir, "out.pdf")

	buildContainer(t, inPath, outPath)

	// The metadata stream is written unfiltered, so the packet appears
	// verbatim in the output bytes.
	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(raw, []byte("xpacket")))
	assert.True(t, bytes.Contains(raw, []byte("pdfaid:part")))
}

func TestEditor_RebuildReplacesRegistration(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	midPath := filepath.Join(dir, "mid.pdf")
	outPath := filepath.Join(dir, "out.pdf")

	buildContainer(t, inPath, midPath)
	// Running the flow again over its own output must replace, not
	// duplicate, the registrations.
	buildContainer(t, midPath, outPath)

	report, err := pdf.Inspect(outPath)
	require.NoError(t, err)
	assert.Len(t, report.EmbeddedFiles, 1)
	assert.Len(t, report.AssociatedFiles, 1)
	assert.True(t, report.HasDocumentTwin)
}

func TestEditor_PreservesUnrelatedAttachments(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	withAttachment := filepath.Join(dir, "with-attachment.pdf")
	outPath := filepath.Join(dir, "out.pdf")

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep me"), 0o600))
	require.NoError(t, api.AddAttachmentsFile(inPath, withAttachment, []string{notes}, false, nil))

	buildContainer(t, withAttachment, outPath)

	report, err := pdf.Inspect(outPath)
	require.NoError(t, err)

	names := make([]string, 0, len(report.EmbeddedFiles))
	for _, a := range report.EmbeddedFiles {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "notes.txt")
	assert.Contains(t, names, pdf.AttachmentName)
	assert.True(t, report.HasDocumentTwin)
}

func TestEditor_StateEnforcement(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)

	t.Run("metadata before attach", func(t *testing.T) {
		editor, err := pdf.Open(inPath)
		require.NoError(t, err)

		err = editor.SetMetadata(testXMP)
		var ioe *model.IOError
		require.True(t, errors.As(err, &ioe))
		assert.Equal(t, pdf.StateFailed, editor.State())
	})

	t.Run("persist before metadata", func(t *testing.T) {
		editor, err := pdf.Open(inPath)
		require.NoError(t, err)
		require.NoError(t, editor.AttachXML(testXML, modTime))

		err = editor.Persist(filepath.Join(dir, "never.pdf"))
		var ioe *model.IOError
		require.True(t, errors.As(err, &ioe))
	})

	t.Run("double attach in one session", func(t *testing.T) {
		editor, err := pdf.Open(inPath)
		require.NoError(t, err)
		require.NoError(t, editor.AttachXML(testXML, modTime))

		err = editor.AttachXML(testXML, modTime)
		var ioe *model.IOError
		require.True(t, errors.As(err, &ioe))
	})
}

func TestOpen_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := pdf.Open(path)
	var ioe *model.IOError
	require.True(t, errors.As(err, &ioe))
	assert.Equal(t, "open", ioe.Stage)
}

func TestPersist_DoesNotClobberOnFailure(t *testing.T) {
	dir := t.TempDir()
	inPath := testutil.WriteMinimalPDF(t, dir)
	outPath := filepath.Join(dir, "out.pdf")

	require.NoError(t, os.WriteFile(outPath, []byte("precious"), 0o600))

	editor, err := pdf.Open(inPath)
	require.NoError(t, err)
	require.NoError(t, editor.AttachXML(testXML, modTime))
	// Wrong state: persist must fail and leave the target untouched.
	require.Error(t, editor.Persist(outPath))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(raw))
}
