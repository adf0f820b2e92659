// Package xmp builds the descriptive-metadata payload that declares
// archival-profile conformance and document-twin identity for a Factur-X
// container.
package xmp

import (
	"bytes"
	"text/template"
	"time"

	"github.com/rezonia/facturx/internal/model"
)

// Factur-X PDF/A extension schema namespace
const NamespaceFX = "urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#"

// Version of the Factur-X document twin format
const TwinVersion = "1.0"

// Params are the inputs to the metadata payload. Timestamp is passed in
// rather than read from the clock so the builder stays deterministic.
type Params struct {
	Profile          model.Profile
	DocumentFileName string
	InvoiceID        string
	// ContentHash is the optional hex sha-256 of the encoded document bytes
	ContentHash string
	Timestamp   time.Time
	CreatorTool string
}

type templateData struct {
	Params
	Version string
	Date    string
}

var packetTemplate = template.Must(template.New("xmp").Parse(`<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description rdf:about=""
        xmlns:pdfaid="http://www.aiim.org/pdfa/ns/id/">
      <pdfaid:part>3</pdfaid:part>
      <pdfaid:conformance>B</pdfaid:conformance>
    </rdf:Description>
    <rdf:Description rdf:about=""
        xmlns:dc="http://purl.org/dc/elements/1.1/">
      <dc:title>
        <rdf:Alt>
          <rdf:li xml:lang="x-default">Factur-X invoice {{.InvoiceID}}</rdf:li>
        </rdf:Alt>
      </dc:title>
      <dc:description>
        <rdf:Alt>
          <rdf:li xml:lang="x-default">Invoice with embedded Factur-X {{.Profile}} document</rdf:li>
        </rdf:Alt>
      </dc:description>
    </rdf:Description>
    <rdf:Description rdf:about=""
        xmlns:xmp="http://ns.adobe.com/xap/1.0/">
      <xmp:CreatorTool>{{.CreatorTool}}</xmp:CreatorTool>
      <xmp:CreateDate>{{.Date}}</xmp:CreateDate>
      <xmp:ModifyDate>{{.Date}}</xmp:ModifyDate>
    </rdf:Description>
    <rdf:Description rdf:about=""
        xmlns:fx="urn:factur-x:pdfa:CrossIndustryDocument:invoice:1p0#">
      <fx:DocumentType>INVOICE</fx:DocumentType>
      <fx:DocumentFileName>{{.DocumentFileName}}</fx:DocumentFileName>
      <fx:Version>{{.Version}}</fx:Version>
      <fx:ConformanceLevel>{{.Profile}}</fx:ConformanceLevel>{{if .ContentHash}}
      <fx:DocumentHash>{{.ContentHash}}</fx:DocumentHash>{{end}}
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`))

// Build renders the XMP packet. Identical params, including the timestamp,
// produce identical bytes.
func Build(p Params) ([]byte, error) {
	if !p.Profile.Valid() {
		return nil, model.NewValidationError("profile", string(p.Profile), "enum", "unknown conformance profile")
	}
	if p.DocumentFileName == "" {
		return nil, model.NewValidationError("document_filename", nil, "required", "document twin filename must not be empty")
	}
	if p.CreatorTool == "" {
		p.CreatorTool = "facturx"
	}
	data := templateData{
		Params:  p,
		Version: TwinVersion,
		Date:    p.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	}
	var buf bytes.Buffer
	if err := packetTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
