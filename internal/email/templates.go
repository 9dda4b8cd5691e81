package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type OrderSummary struct {
	OrderNumber    string
	CustomerName   string
	Items          []OrderItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	CouponCode     string
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  string
}

const cell = `style="padding: 12px; border-bottom: 1px solid #eee;`

func BuildOrderConfirmationBody(storeName string, o OrderSummary) string {
	var rows strings.Builder
	for _, item := range o.Items {
		fmt.Fprintf(&rows, `<tr>
				<td %s">%s</td>
				<td %s text-align: center;">%d</td>
				<td %s text-align: right;">%s</td>
				<td %s text-align: right;">%s</td>
			</tr>`,
			cell, html.EscapeString(item.Name),
			cell, item.Quantity,
			cell, FormatINR(item.UnitPrice),
			cell, FormatINR(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		)
	}

	var totals strings.Builder
	fmt.Fprintf(&totals, "<p>Subtotal: %s</p>", FormatINR(o.Subtotal))
	if o.DiscountAmount.IsPositive() {
		fmt.Fprintf(&totals, "<p>Discount (%s): -%s</p>", html.EscapeString(o.CouponCode), FormatINR(o.DiscountAmount))
	}
	if o.DeliveryFee.IsZero() {
		totals.WriteString("<p>Delivery: Free</p>")
	} else {
		fmt.Fprintf(&totals, "<p>Delivery: %s</p>", FormatINR(o.DeliveryFee))
	}

	payment := "Online payment"
	if o.PaymentMethod == "cod" {
		payment = "Cash on delivery"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 24px;">Thank you for your order, %s</h1>
	<p>Order number <strong style="font-family: monospace;">%s</strong></p>
	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Item</th>
				<th style="padding: 12px; text-align: center;">Qty</th>
				<th style="padding: 12px; text-align: right;">Price</th>
				<th style="padding: 12px; text-align: right;">Amount</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>
	<div style="text-align: right;">
		%s
		<p style="font-size: 20px; font-weight: bold;">Total: %s</p>
		<p>Payment: %s</p>
	</div>
	<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
	<p style="font-size: 12px; color: #999;">This is an automated message from %s.</p>
</body>
</html>`,
		html.EscapeString(o.CustomerName), html.EscapeString(o.OrderNumber), rows.String(),
		totals.String(), FormatINR(o.Total), payment, html.EscapeString(storeName))
}

func BuildStatusBody(storeName, orderNumber, headline, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">%s</h1>
	<p>Order number <strong style="font-family: monospace;">%s</strong></p>
	<p>%s</p>
	<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
	<p style="font-size: 12px; color: #999;">This is an automated message from %s.</p>
</body>
</html>`, html.EscapeString(headline), html.EscapeString(orderNumber), html.EscapeString(message), html.EscapeString(storeName))
}

// FormatINR renders amount as rupees with Indian digit grouping, e.g. ₹1,23,456.50.
func FormatINR(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// groupIndian groups the last three digits, then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
