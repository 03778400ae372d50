package email

// Template names an HTML file under templates/.
type Template string

const (
	TemplateInvoiceCreated Template = "invoice_created"
)
