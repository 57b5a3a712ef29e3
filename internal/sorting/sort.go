// Package sorting reorders a ticket sequence in place.
//
// Priority and price use an exchange (bubble) sort, received date and
// equipment type use a selection sort. Descending order negates the
// out-of-order test instead of reversing the result, so tie handling differs
// between directions.
package sorting

import (
	"strings"

	"github.com/spec-kit/repair-desk/internal/domain"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

// Criterion names a sort key.
type Criterion string

const (
	CriterionPriority      Criterion = "priority"
	CriterionReceivedDate  Criterion = "received_date"
	CriterionPrice         Criterion = "price"
	CriterionEquipmentType Criterion = "equipment_type"
)

// Func reorders tickets in place.
type Func func(tickets []domain.Ticket, descending bool)

var byCriterion = map[Criterion]Func{
	CriterionPriority:      ByPriority,
	CriterionReceivedDate:  ByReceivedDate,
	CriterionPrice:         ByPrice,
	CriterionEquipmentType: ByEquipmentType,
}

// ParseCriterion normalizes user input into a Criterion.
func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := byCriterion[c]; !ok {
		return "", apperrors.NewValidationError("unknown sort criterion", map[string]any{
			"criterion": s,
			"allowed":   []Criterion{CriterionPriority, CriterionReceivedDate, CriterionPrice, CriterionEquipmentType},
		})
	}
	return c, nil
}

// Lookup returns the sort function for c.
func Lookup(c Criterion) (Func, error) {
	fn, ok := byCriterion[c]
	if !ok {
		return nil, apperrors.NewValidationError("unknown sort criterion", map[string]any{"criterion": string(c)})
	}
	return fn, nil
}

// Apply sorts tickets in place by c.
func Apply(tickets []domain.Ticket, c Criterion, descending bool) error {
	fn, err := Lookup(c)
	if err != nil {
		return err
	}
	fn(tickets, descending)
	return nil
}

// ByPriority exchange-sorts by priority.
func ByPriority(tickets []domain.Ticket, descending bool) {
	exchangeSort(tickets, descending, func(a, b *domain.Ticket) bool {
		return a.Priority > b.Priority
	})
}

// ByPrice exchange-sorts by price.
func ByPrice(tickets []domain.Ticket, descending bool) {
	exchangeSort(tickets, descending, func(a, b *domain.Ticket) bool {
		return a.Price.GreaterThan(b.Price)
	})
}

// ByReceivedDate selection-sorts by received date.
func ByReceivedDate(tickets []domain.Ticket, descending bool) {
	selectionSort(tickets, descending, func(a, b *domain.Ticket) bool {
		return a.ReceivedDate.Before(b.ReceivedDate)
	})
}

// ByEquipmentType selection-sorts by the equipment type label.
func ByEquipmentType(tickets []domain.Ticket, descending bool) {
	selectionSort(tickets, descending, func(a, b *domain.Ticket) bool {
		return a.EquipmentType < b.EquipmentType
	})
}

// exchangeSort runs n-1 passes over adjacent pairs, each pass one shorter
// than the previous, swapping when greater(left, right) != descending.
func exchangeSort(tickets []domain.Ticket, descending bool, greater func(a, b *domain.Ticket) bool) {
	n := len(tickets)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1-i; j++ {
			if greater(&tickets[j], &tickets[j+1]) != descending {
				tickets[j], tickets[j+1] = tickets[j+1], tickets[j]
			}
		}
	}
}

// selectionSort moves the selected element of tickets[i:] into position i.
// A candidate replaces the current selection when less(candidate, selected)
// != descending, scanning left to right.
func selectionSort(tickets []domain.Ticket, descending bool, less func(a, b *domain.Ticket) bool) {
	n := len(tickets)
	for i := 0; i < n; i++ {
		sel := i
		for j := i + 1; j < n; j++ {
			if less(&tickets[j], &tickets[sel]) != descending {
				sel = j
			}
		}
		if sel != i {
			tickets[i], tickets[sel] = tickets[sel], tickets[i]
		}
	}
}
