package repository

// Mode is the connection state of a Repository
type Mode int

const (
	ModeClosed Mode = iota
	ModeOpened
)

func (m Mode) String() string {
	switch m {
	case ModeOpened:
		return "opened"
	default:
		return "closed"
	}
}
