package usecase

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders amount with two decimals and grouped thousands. AUD uses the "$"
// unit; any other currency code is printed literally as the unit.
func FormatPrice(amount decimal.Decimal, currency string) string {
	unit := currency
	if currency == "AUD" {
		unit = "$"
	}

	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = pricePrinter.Sprintf("%d", n)
	}

	return sign + unit + whole + "." + frac
}

var paymentMethodLabels = map[string]string{
	"CARD":         "Credit Card",
	"COMP":         "Complimentary",
	"OPALPAY":      "OpalPay",
	"CASH":         "Cash",
	"METROCARD":    "Metrocard",
	"OPAL_CONNECT": "OpalConnect",
}

// FormatPaymentMethod returns the display label of a payment method code.
// Unknown codes are rendered camel-cased.
func FormatPaymentMethod(code string) string {
	code = strings.TrimSpace(code)
	if label, ok := paymentMethodLabels[strings.ToUpper(code)]; ok {
		return label
	}

	return lo.PascalCase(code)
}
