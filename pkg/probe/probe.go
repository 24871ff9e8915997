// Package probe defines the three-valued result of a cross-service existence
// check. Unknown means the sibling service could not confirm or deny, so
// callers can distinguish a confirmed-absent reference from a transient
// failure instead of collapsing both into "false".
package probe

type Presence int

const (
	Unknown Presence = iota
	Present
	Absent
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}
