package email

import "fmt"

// PreviewData holds sample data for every template, keyed by template name.
var PreviewData = map[Template]map[string]string{
	TemplateInvoiceCreated: {
		"CustomerName": "Delba de Oliveira",
		"InvoiceID":    "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa",
		"Amount":       "125.50",
		"Status":       "pending",
		"Date":         "2024-03-09",
	},
}

// Preview renders a template with its sample data.
func Preview(templateName Template) (string, error) {
	data, ok := PreviewData[templateName]
	if !ok {
		return "", fmt.Errorf("no preview data for template %q", templateName)
	}
	return Render(templateName, data)
}
