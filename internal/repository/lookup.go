package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/repair-desk/internal/domain"
	apperrors "github.com/spec-kit/repair-desk/pkg/util/errorutil"
)

// FindByCode parses numericInput as a ticket number and returns the position
// of the first ticket carrying the matching code.
func FindByCode(tickets []domain.Ticket, numericInput string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(numericInput))
	if err != nil {
		return -1, apperrors.NewInvalidInput("ticket number must be an integer", map[string]any{"input": numericInput})
	}
	code := domain.FormatCode(n)
	idx := IndexOfCode(tickets, code)
	if idx < 0 {
		return -1, apperrors.NewNotFound("ticket", map[string]any{"code": code})
	}
	return idx, nil
}

// IndexOfCode linearly scans for code and returns its position or -1.
func IndexOfCode(tickets []domain.Ticket, code string) int {
	for i := range tickets {
		if tickets[i].Code == code {
			return i
		}
	}
	return -1
}

// MarkCompleted sets the ticket at index to completed, delivered on the
// calendar date of at.
func MarkCompleted(tickets []domain.Ticket, index int, at time.Time) error {
	if err := checkIndex(tickets, index); err != nil {
		return err
	}
	delivered := domain.DateOf(at)
	tickets[index].Status = domain.TicketStatusCompleted
	tickets[index].DeliveredDate = &delivered
	return nil
}

// Delete removes the ticket at index; later positions shift down by one.
func Delete(tickets []domain.Ticket, index int) ([]domain.Ticket, error) {
	if err := checkIndex(tickets, index); err != nil {
		return tickets, err
	}
	copy(tickets[index:], tickets[index+1:])
	tickets[len(tickets)-1] = domain.Ticket{}
	return tickets[:len(tickets)-1], nil
}

func checkIndex(tickets []domain.Ticket, index int) error {
	if index < 0 || index >= len(tickets) {
		return apperrors.NewNotFound("ticket position", map[string]any{"index": index, "size": len(tickets)})
	}
	return nil
}
