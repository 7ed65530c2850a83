package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// DocumentData feeds the client-facing document templates
type DocumentData struct {
	ClientName  string
	Number      string
	Total       string
	CompanyName string
	Link        string // quotes only
	DueDate     string // invoices only
}

// ResponseData feeds the administrator notice for a quote response
type ResponseData struct {
	Number     string
	Decision   string
	ClientName string
	Total      string
}

var (
	quoteTemplate = template.Must(template.New("quote").Parse(`<p>Bonjour {{.ClientName}},</p>
<p>Veuillez trouver ci-joint votre devis {{.Number}}.</p>
<p>Vous pouvez consulter et accepter ce devis en ligne en cliquant sur le lien suivant :</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>Cordialement,<br>{{.CompanyName}}</p>
`))

	purchaseOrderTemplate = template.Must(template.New("purchase_order").Parse(`<p>Bonjour {{.ClientName}},</p>
<p>Veuillez trouver ci-joint votre bon de commande {{.Number}} d'un montant de {{.Total}} €.</p>
<p>Cordialement,<br>{{.CompanyName}}</p>
`))

	invoiceTemplate = template.Must(template.New("invoice").Parse(`<p>Bonjour {{.ClientName}},</p>
<p>Veuillez trouver ci-joint votre facture {{.Number}} d'un montant de {{.Total}} €.</p>
<p>Date d'échéance : {{.DueDate}}</p>
<p>Cordialement,<br>{{.CompanyName}}</p>
`))

	responseTemplate = template.Must(template.New("response").Parse(`<p>Le devis <strong>{{.Number}}</strong> a été <strong>{{.Decision}}</strong> par le client.</p>
<p>Client : {{.ClientName}}</p>
<p>Montant : {{.Total}} €</p>
`))
)

// RenderQuote renders the body of a quote email
func RenderQuote(data DocumentData) (string, error) {
	return render(quoteTemplate, data)
}

// RenderPurchaseOrder renders the body of a purchase order email
func RenderPurchaseOrder(data DocumentData) (string, error) {
	return render(purchaseOrderTemplate, data)
}

// RenderInvoice renders the body of an invoice email
func RenderInvoice(data DocumentData) (string, error) {
	return render(invoiceTemplate, data)
}

// RenderResponse renders the administrator notice for a quote response
func RenderResponse(data ResponseData) (string, error) {
	return render(responseTemplate, data)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
