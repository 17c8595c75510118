// Package pricing turns catalog price labels into order totals.
package pricing

import (
	"fmt"
	"strings"
	"unicode"

	"storebot/internal/domain/entity"
	"storebot/internal/errors"

	"github.com/shopspring/decimal"
)

// ErrUnparseable is returned when a price label carries no leading number.
var ErrUnparseable = errors.New("price label has no numeric amount")

// Price is a parsed price label such as "150,000 UZS".
type Price struct {
	Amount   decimal.Decimal
	Currency string
}

// Quote is a computed total ready for display and persistence.
type Quote struct {
	Amount   decimal.Decimal
	Currency string
	Exact    bool   // False when a label could not be parsed and Display is symbolic.
	Display  string // "300000 UZS", or "2 x <label>" when inexact
}

// Parse extracts the amount and currency of a price label. Thousands
// separators (',' '_' and digit groups split by spaces) are accepted.
func Parse(label string) (Price, error) {
	cleaned := strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(label))
	fields := strings.Fields(cleaned)

	var digits strings.Builder
	i := 0
	for ; i < len(fields); i++ {
		if !isNumeric(fields[i]) {
			break
		}
		digits.WriteString(fields[i])
	}
	if digits.Len() == 0 {
		return Price{}, errors.Wrapf(ErrUnparseable, "label %q", label)
	}

	amount, err := decimal.NewFromString(digits.String())
	if err != nil {
		return Price{}, errors.Wrapf(ErrUnparseable, "label %q: %v", label, err)
	}

	return Price{
		Amount:   amount,
		Currency: strings.Join(fields[i:], " "),
	}, nil
}

func isNumeric(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case !unicode.IsDigit(r):
			return false
		}
	}

	return dots <= 1 && s != "."
}

// Format renders an amount with its currency.
func Format(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.String()
	}

	return amount.String() + " " + currency
}

// Total computes unitPrice x qty. An unparseable label yields a symbolic
// "qty x label" display instead of an error.
func Total(unitPrice string, qty int) Quote {
	p, err := Parse(unitPrice)
	if err != nil {
		return Quote{
			Display: fmt.Sprintf("%d x %s", qty, orNA(unitPrice)),
		}
	}

	amount := p.Amount.Mul(decimal.NewFromInt(int64(qty)))

	return Quote{
		Amount:   amount,
		Currency: p.Currency,
		Exact:    true,
		Display:  Format(amount, p.Currency),
	}
}

// Sum totals order lines. Lines with mixed currencies or unparseable
// labels produce a symbolic display.
func Sum(lines []entity.OrderLine) Quote {
	total := decimal.Zero
	currency := ""
	exact := true
	priced := false
	parts := make([]string, 0, len(lines))

	for _, line := range lines {
		q := Total(line.UnitPrice, line.Quantity)
		parts = append(parts, fmt.Sprintf("%d x %s", line.Quantity, orNA(line.UnitPrice)))
		if !q.Exact {
			exact = false
			continue
		}
		if !priced {
			currency = q.Currency
			priced = true
		} else if q.Currency != currency {
			exact = false
		}
		total = total.Add(q.Amount)
	}

	if !exact || len(lines) == 0 {
		return Quote{Display: strings.Join(parts, " + ")}
	}

	return Quote{
		Amount:   total,
		Currency: currency,
		Exact:    true,
		Display:  Format(total, currency),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}

	return s
}
