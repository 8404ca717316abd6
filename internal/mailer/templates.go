package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/fianka/shop-api/internal/models"
	"github.com/shopspring/decimal"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Bienvenue chez Fianka</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #f8f6f0; border: 2px solid #d4af37; border-radius: 15px; padding: 30px;">
    <h1 style="text-align: center;">Bienvenue chez <span style="color: #d4af37;">Fianka</span> !</h1>
    <p>Merci de votre inscription à notre newsletter.</p>
    <p>Voici votre code promo de bienvenue&nbsp;:</p>
    <p style="text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 2px;">{{.PromoCode}}</p>
    <p>Profitez de 10% de réduction sur votre première commande.</p>
  </div>
</body>
</html>`))

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Votre commande Fianka</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 10px; padding: 30px;">
    <h1>Merci pour votre commande, {{.FirstName}} !</h1>
    <p>Commande n°{{.OrderID}}</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><th align="left">Article</th><th>Qté</th><th align="right">Prix</th></tr>
      {{range .Items}}
      <tr>
        <td>{{.Name}}{{if .Size}} — {{.Size}}{{end}}{{if .Color}} / {{.Color}}{{end}}</td>
        <td align="center">{{.Quantity}}</td>
        <td align="right">{{.Price}}dt</td>
      </tr>
      {{end}}
    </table>
    <hr>
    <p align="right">Sous-total&nbsp;: {{.Subtotal}}dt</p>
    {{if .HasDiscount}}<p align="right">Réduction ({{.PromoCode}})&nbsp;: -{{.Discount}}dt</p>{{end}}
    <p align="right"><strong>Total&nbsp;: {{.Total}}dt</strong></p>
  </div>
</body>
</html>`))

// WelcomeEmail builds the newsletter welcome message carrying promoCode.
func WelcomeEmail(to, promoCode string) (Message, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct{ PromoCode string }{PromoCode: promoCode})
	if err != nil {
		return Message{}, fmt.Errorf("render welcome email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Bienvenue chez Fianka — votre code promo",
		HTML:    buf.String(),
	}, nil
}

type invoiceItem struct {
	Name     string
	Size     string
	Color    string
	Quantity int
	Price    string
}

// InvoiceEmail renders the order confirmation sent to the shipping email.
func InvoiceEmail(order *models.Order) (Message, error) {
	items := make([]invoiceItem, 0, len(order.Items))
	for _, item := range order.Items {
		extended := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, invoiceItem{
			Name:     item.Name,
			Size:     item.Size,
			Color:    item.Color,
			Quantity: item.Quantity,
			Price:    extended.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, struct {
		FirstName   string
		OrderID     int64
		Items       []invoiceItem
		Subtotal    string
		Discount    string
		Total       string
		PromoCode   string
		HasDiscount bool
	}{
		FirstName:   order.ShippingAddress.FirstName,
		OrderID:     order.ID,
		Items:       items,
		Subtotal:    order.Subtotal.StringFixed(2),
		Discount:    order.Discount.StringFixed(2),
		Total:       order.Total.StringFixed(2),
		PromoCode:   order.PromoCode,
		HasDiscount: order.Discount.IsPositive(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render invoice email: %w", err)
	}

	return Message{
		To:      order.ShippingAddress.Email,
		Subject: fmt.Sprintf("Votre commande Fianka n°%d", order.ID),
		HTML:    buf.String(),
	}, nil
}
