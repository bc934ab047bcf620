package oxidb

import "fmt"

// Error is returned when the OxiDB server returns an error response.
type Error struct {
	Cmd string
	Msg string
}

func (e *Error) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("oxidb: %s", e.Msg)
	}
	return fmt.Sprintf("oxidb: %s: %s", e.Cmd, e.Msg)
}
