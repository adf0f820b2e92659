package xmp_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/xmp"
)

func params() xmp.Params {
	return xmp.Params{
		Profile:          model.ProfileEN16931,
		DocumentFileName: "factur-x.xml",
		InvoiceID:        "INV-2026-042",
		ContentHash:      "deadbeef",
		Timestamp:        time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuild_Packet(t *testing.T) {
	data, err := xmp.Build(params())
	require.NoError(t, err)
	s := string(data)

	assert.Contains(t, s, "<?xpacket begin=")
	assert.Contains(t, s, "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, s, "<pdfaid:conformance>B</pdfaid:conformance>")
	assert.Contains(t, s, "<fx:DocumentType>INVOICE</fx:DocumentType>")
	assert.Contains(t, s, "<fx:DocumentFileName>factur-x.xml</fx:DocumentFileName>")
	assert.Contains(t, s, "<fx:ConformanceLevel>EN16931</fx:ConformanceLevel>")
	assert.Contains(t, s, "<fx:Version>1.0</fx:Version>")
	assert.Contains(t, s, "<fx:DocumentHash>deadbeef</fx:DocumentHash>")
	assert.Contains(t, s, "<xmp:CreateDate>2026-03-15T10:30:00Z</xmp:CreateDate>")
	assert.Contains(t, s, "INV-2026-042")
	assert.Contains(t, s, xmp.NamespaceFX)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := xmp.Build(params())
	require.NoError(t, err)
	b, err := xmp.Build(params())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_NoHash(t *testing.T) {
	p := params()
	p.ContentHash = ""
	data, err := xmp.Build(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "DocumentHash")
}

func TestBuild_DefaultCreatorTool(t *testing.T) {
	data, err := xmp.Build(params())
	require.NoError(t, err)
	assert.Contains(t, string(data), "<xmp:CreatorTool>facturx</xmp:CreatorTool>")

	p := params()
	p.CreatorTool = "billing-service"
	data, err = xmp.Build(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<xmp:CreatorTool>billing-service</xmp:CreatorTool>")
}

func TestBuild_Rejections(t *testing.T) {
	p := params()
	p.Profile = "EXTENDED"
	_, err := xmp.Build(p)
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))

	p = params()
	p.DocumentFileName = ""
	_, err = xmp.Build(p)
	require.True(t, errors.As(err, &ve))
}
