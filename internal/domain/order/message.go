// internal/domain/order/message.go
package order

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const separator = "--------------------"

// unsafeChars matches anything outside letters (accented included), digits,
// whitespace and basic punctuation
var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()\-+/&%]`)

// Sanitize strips characters that could break the messaging transport
func Sanitize(s string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(s, ""))
}

// FormatBRL renders an amount as Brazilian reais, e.g. "1234,50"
func FormatBRL(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatMessage renders the order as the plain-text message sent to the
// restaurant. Timestamps are shown in loc.
func FormatMessage(o *Order, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*NOVO PEDIDO* - %s\n", o.ID)
	fmt.Fprintf(&b, "Mesa: %d\n", o.Table)
	fmt.Fprintf(&b, "Data: %s\n", o.CreatedAt.In(loc).Format("02/01/2006 15:04"))
	b.WriteString(separator + "\n")

	for _, it := range o.Items {
		name := Sanitize(it.Name)
		if v := Sanitize(it.VariantName); v != "" {
			name = fmt.Sprintf("%s (%s)", name, v)
		}
		fmt.Fprintf(&b, "%dx %s - R$ %s\n", it.Quantity, name, FormatBRL(it.Subtotal()))

		if it.IsCompound() && len(it.Flavors) > 0 {
			parts := make([]string, len(it.Flavors))
			for i, f := range it.Flavors {
				parts[i] = fmt.Sprintf("%dx %s", f.Quantity, Sanitize(f.Name))
			}
			fmt.Fprintf(&b, "   Sabores: %s\n", strings.Join(parts, ", "))
		}
		if it.Note != nil {
			if note := Sanitize(*it.Note); note != "" {
				fmt.Fprintf(&b, "   Obs: %s\n", note)
			}
		}
	}

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "*TOTAL: R$ %s*\n", FormatBRL(o.Total))
	b.WriteString("Obrigado pela preferencia!")
	return b.String()
}
