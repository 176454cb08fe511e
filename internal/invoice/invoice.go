// Package invoice renders order invoices as PDF documents.
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront-admin/internal/domain"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"
)

var ErrNoOrder = errors.New("order is required")

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// Filename returns the download name of an order's invoice
func Filename(order *domain.Order) string {
	return "invoice-" + order.ID + ".pdf"
}

// Generate renders the invoice for order under the given brand name
func Generate(order *domain.Order, brand string) (*bytes.Buffer, error) {
	if order == nil {
		return nil, ErrNoOrder
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	fullRow(m, 15, "INVOICE", props.Text{Size: 24, Style: consts.Bold, Color: darkGray})
	fullRow(m, 10, strings.ToUpper(brand), props.Text{Size: 16, Style: consts.Bold, Color: darkGray})
	m.Row(8, func() {})

	// Billing
	pairRow(m, 5, "BILL TO", "INVOICE DETAILS", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
	pairRow(m, 5, order.CustomerName, "Invoice #"+order.ID, props.Text{Size: 10, Color: darkGray})
	pairRow(m, 5, order.Email, "Date: "+order.CreatedAt.Display(), props.Text{Size: 9, Color: mediumGray})
	if order.Phone != "" || order.Address != "" {
		pairRow(m, 5, order.Phone, "Status: "+string(order.Status), props.Text{Size: 9, Color: mediumGray})
		if order.Address != "" {
			fullRow(m, 5, order.Address, props.Text{Size: 9, Color: mediumGray})
		}
	}
	m.Row(8, func() {})

	// Items
	header := props.Text{Size: 8, Style: consts.Bold, Color: darkGray}
	itemRow(m, header, "Description", "Qty", "Price", "Total")
	line := props.Text{Size: 9, Color: darkGray}
	for _, item := range order.Items {
		itemRow(m, line, item.Name, strconv.Itoa(item.Quantity), money(item.Price), money(item.LineTotal()))
	}
	m.Row(8, func() {})

	subtotal := order.Subtotal
	if subtotal.IsZero() {
		subtotal = order.ItemsSubtotal()
	}
	total := order.TotalAmount
	if total.IsZero() {
		total = subtotal
	}

	totalRow(m, 5, "Subtotal", money(subtotal), 9)
	if order.PaymentMethod != "" || order.PaymentStatus != "" {
		totalRow(m, 5, "Payment", strings.TrimSpace(order.PaymentMethod+" "+order.PaymentStatus), 9)
	}
	totalRow(m, 8, "Total", money(total), 12)
	m.Row(12, func() {})

	fullRow(m, 5, "Thank you for your business!", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return &buf, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func fullRow(m pdf.Maroto, height float64, text string, style props.Text) {
	m.Row(height, func() {
		m.Col(12, func() {
			m.Text(text, style)
		})
	})
}

func pairRow(m pdf.Maroto, height float64, left, right string, style props.Text) {
	rightStyle := style
	rightStyle.Align = consts.Right
	m.Row(height, func() {
		m.Col(6, func() {
			m.Text(left, style)
		})
		m.Col(6, func() {
			m.Text(right, rightStyle)
		})
	})
}

func itemRow(m pdf.Maroto, style props.Text, name, qty, price, total string) {
	right := style
	right.Align = consts.Right
	m.Row(6, func() {
		m.Col(6, func() {
			m.Text(name, style)
		})
		m.Col(2, func() {
			m.Text(qty, right)
		})
		m.Col(2, func() {
			m.Text(price, right)
		})
		m.Col(2, func() {
			m.Text(total, right)
		})
	})
}

func totalRow(m pdf.Maroto, height float64, label, value string, size float64) {
	labelStyle := props.Text{Size: size, Color: mediumGray, Align: consts.Right}
	valueStyle := props.Text{Size: size, Color: darkGray, Align: consts.Right}
	if label == "Total" {
		labelStyle.Style = consts.Bold
		labelStyle.Color = darkGray
		valueStyle.Style = consts.Bold
	}
	m.Row(height, func() {
		m.Col(8, func() {})
		m.Col(2, func() {
			m.Text(label, labelStyle)
		})
		m.Col(2, func() {
			m.Text(value, valueStyle)
		})
	})
}
