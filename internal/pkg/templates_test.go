package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEscapes(t *testing.T) {
	html, err := Render("inquiry.html", InquiryData{
		Name:    "<b>Jane</b>",
		Email:   "jane@x.com",
		Subject: "Hello",
		Message: "Need help",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.Contains(t, html, "Need help")
}

func TestRenderInventoryReport(t *testing.T) {
	html, err := Render("inventory_report.html", InventoryReportData{
		OrganizationName: "Acme",
		Rows: []InventoryRow{
			{Name: "Widget", PartNumber: "W-1", Current: 1, Threshold: 5, Low: true},
			{Name: "Gadget", PartNumber: "G-1", Current: 9, Threshold: 5},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "LOW")
	assert.Contains(t, html, "ENOUGH")

	empty, err := Render("inventory_report.html", InventoryReportData{OrganizationName: "Acme"})
	require.NoError(t, err)
	assert.Contains(t, empty, "No items are assigned")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing.html", nil)
	assert.Error(t, err)
}
