package models

// Operation represents the kind of change required to reconcile an entity
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Verb returns the past-tense verb used in reports
func (o Operation) Verb() string {
	switch o {
	case OperationCreate:
		return "created"
	case OperationUpdate:
		return "updated"
	case OperationDelete:
		return "deleted"
	default:
		return string(o)
	}
}

// Symbol returns the single-character marker used in diff output
func (o Operation) Symbol() string {
	switch o {
	case OperationCreate:
		return "+"
	case OperationUpdate:
		return "~"
	case OperationDelete:
		return "-"
	default:
		return "?"
	}
}
