// Package card manages the virtual cards shown on the home screen.
package card

import (
	"fmt"
	"strings"
	"time"
)

// Type is the card network.
type Type string

const (
	TypeMastercard Type = "mastercard"
	TypeVisa       Type = "visa"
	TypeAmex       Type = "amex"
)

// Card is a virtual card issued to a user.
type Card struct {
	ID           string
	UserID       string
	Name         string
	LastFour     string
	BalanceCents int64
	Currency     string
	Type         Type
	Gradient     []string
	IsDefault    bool
	IsActive     bool
	CreatedAt    time.Time
}

// Gradients are assigned round-robin to new cards.
var Gradients = [][]string{
	{"#1A1A2E", "#16213E", "#0F3460"},
	{"#FF6B6B", "#FF8E53"},
	{"#4ECDC4", "#44A08D"},
	{"#667EEA", "#764BA2"},
}

// DisplayBalance formats cents as $2,097.00. Only USD carries a symbol.
func DisplayBalance(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	amount := fmt.Sprintf("%s.%02d", b.String(), cents%100)
	if currency == "" || strings.EqualFold(currency, "USD") {
		return sign + "$" + amount
	}
	return fmt.Sprintf("%s%s %s", sign, amount, strings.ToUpper(currency))
}
