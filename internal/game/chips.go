package game

import (
	"fmt"
	"strings"
)

// Denomination is a chip color and the whole-currency amount it is worth.
type Denomination struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Denominations are ordered largest first, which the greedy breakdown relies on.
var Denominations = []Denomination{
	{Name: "blacks", Value: 100},
	{Name: "greens", Value: 25},
	{Name: "reds", Value: 5},
	{Name: "blues", Value: 1},
}

// ChipStack is a count of chips of one denomination.
type ChipStack struct {
	Denomination
	Count int `json:"count"`
}

// Breakdown is the fewest-chips representation of a balance.
type Breakdown struct {
	Stacks []ChipStack `json:"stacks"`
	Total  int         `json:"total"`
}

// String renders "1 blacks, 1 greens, 4 reds, 4 blues - totaling $149".
func (b Breakdown) String() string {
	parts := make([]string, len(b.Stacks))
	for i, s := range b.Stacks {
		parts[i] = fmt.Sprintf("%d %s", s.Count, s.Name)
	}
	return fmt.Sprintf("%s - totaling $%d", strings.Join(parts, ", "), b.Total)
}

// ChipBank holds a player's balance in whole currency units.
type ChipBank struct {
	balance int
}

// NewChipBank creates a bank holding initialBalance, which must not be negative.
func NewChipBank(initialBalance int) (*ChipBank, error) {
	if initialBalance < 0 {
		return nil, fmt.Errorf("%w: negative balance %d", ErrInvalidArgument, initialBalance)
	}
	return &ChipBank{balance: initialBalance}, nil
}

func (b *ChipBank) Balance() int {
	return b.balance
}

// Deposit adds amount to the balance. Rather than adding unconditionally it
// ignores non-positive amounts, so a deposit can never lower the balance.
func (b *ChipBank) Deposit(amount int) {
	if amount <= 0 {
		return
	}
	b.balance += amount
}

// Withdraw subtracts amount if the balance covers it and reports whether it did.
// An uncovered withdrawal leaves the balance untouched and is not an error.
func (b *ChipBank) Withdraw(amount int) bool {
	if amount <= 0 || amount > b.balance {
		return false
	}
	b.balance -= amount
	return true
}

// Breakdown computes the chip counts for the current balance.
func (b *ChipBank) Breakdown() Breakdown {
	out := Breakdown{Stacks: make([]ChipStack, len(Denominations)), Total: b.balance}
	rest := b.balance
	for i, d := range Denominations {
		out.Stacks[i] = ChipStack{Denomination: d, Count: rest / d.Value}
		rest %= d.Value
	}
	return out
}

func (b *ChipBank) String() string {
	return b.Breakdown().String()
}
