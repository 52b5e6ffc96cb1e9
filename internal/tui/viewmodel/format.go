package viewmodel

import (
	"fmt"

	"github.com/Veraticus/homestats/internal/model"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders card values for display in one locale and currency.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for a BCP 47 locale and an ISO 4217 currency code.
func NewFormatter(locale, currencyCode string) (Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return Formatter{}, fmt.Errorf("invalid currency %q: %w", currencyCode, err)
	}

	printer := message.NewPrinter(tag)
	return Formatter{
		printer: printer,
		symbol:  printer.Sprint(currency.Symbol(unit)),
	}, nil
}

// DefaultFormatter formats US dollars with Chinese digit grouping.
func DefaultFormatter() Formatter {
	f, err := NewFormatter("zh-CN", "USD")
	if err != nil {
		panic(err)
	}
	return f
}

// Symbol returns the currency symbol used for currency cards.
func (f Formatter) Symbol() string {
	return f.symbol
}

// Format returns the display text of a card's value.
func (f Formatter) Format(card model.StatCard) string {
	if f.printer == nil {
		f = DefaultFormatter()
	}

	switch card.Type {
	case model.CardTypeCurrency:
		return f.symbol + f.printer.Sprint(number.Decimal(card.Value, number.Scale(2)))
	default:
		return f.printer.Sprint(number.Decimal(card.Value, number.MaxFractionDigits(0)))
	}
}
