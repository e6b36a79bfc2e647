// Package regulation renders the internal rules document (事務処理規程) that
// the electronic bookkeeping act requires when electronic transaction
// records are kept without a timestamp service.
package regulation

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
)

// FileName is the name the rendered document is saved under.
const FileName = "電子取引データの訂正及び削除の防止に関する事務処理規程.html"

//go:embed templates/regulation.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/regulation.html"))

// documentExamples describes each document type in the scope table.
var documentExamples = map[invoice.DocumentType]string{
	invoice.DocumentTypeInvoice:      "メール添付PDF、クラウドサービス発行の請求書",
	invoice.DocumentTypeReceipt:      "ECサイト発行の電子領収書、キャッシュレス決済明細",
	invoice.DocumentTypeQuotation:    "メール添付の見積書PDF",
	invoice.DocumentTypeDeliverySlip: "電子納品書",
	invoice.DocumentTypeContract:     "電子契約サービスの契約書",
	invoice.DocumentTypeOther:        "注文書、注文請書等",
}

// Params are the values filled into the document.
type Params struct {
	// DriveFolderName is the folder retained documents are filed under.
	DriveFolderName string
	// EnactedOn is printed as the enactment date.
	EnactedOn time.Time
}

type documentRow struct {
	Label   string
	Example string
}

type templateData struct {
	Title           string
	EnactedOn       string
	DriveFolderName string
	DocumentTypes   []documentRow
}

// Render writes the document as HTML. The folder name is HTML-escaped.
func Render(w io.Writer, p Params) error {
	if strings.TrimSpace(p.DriveFolderName) == "" {
		return fmt.Errorf("drive folder name is required")
	}

	data := templateData{
		Title:           strings.TrimSuffix(FileName, ".html"),
		EnactedOn:       FormatJapaneseDate(p.EnactedOn),
		DriveFolderName: p.DriveFolderName,
	}
	for _, docType := range invoice.DocumentTypes {
		data.DocumentTypes = append(data.DocumentTypes, documentRow{
			Label:   docType.Label(),
			Example: documentExamples[docType],
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render regulation: %w", err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// FormatJapaneseDate formats t as e.g. "2025年4月1日".
func FormatJapaneseDate(t time.Time) string {
	return t.Format("2006年1月2日")
}
