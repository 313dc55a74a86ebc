package pkg

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes one of the embedded templates, e.g. "activate.html".
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ActivateData struct {
	Username   string
	ConfirmURL string
	Minutes    int
}

type ResultPageData struct {
	Title   string
	Message string
	HomeURL string
}

type ResetLinkData struct {
	Username string
	ResetURL string
	Minutes  int
}

type ResetFormData struct {
	Email  string
	Token  string
	Action string
}

type InvitationData struct {
	OrganizationName string
	InvitationURL    string
	Minutes          int
}

type InquiryData struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ItemReportData struct {
	Reporter   string
	ItemID     uint64
	ItemName   string
	PartNumber string
	Text       string
}

type InventoryRow struct {
	Name       string
	PartNumber string
	Current    int
	Threshold  int
	Low        bool
}

type InventoryReportData struct {
	OrganizationName string
	GeneratedAt      string
	Rows             []InventoryRow
}

type AccountNoticeData struct {
	Username string
	Title    string
	Body     string
	Reason   string
}
