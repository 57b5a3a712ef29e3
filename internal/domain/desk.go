package domain

// DeskSnapshot captures the whole desk session: the ordered ticket sequence
// and the last issued sequence number.
type DeskSnapshot struct {
	LastSeq int
	Tickets []Ticket
}
