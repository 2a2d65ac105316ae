package constants

import "strings"

type TargetType int

const (
	TargetTypeUnknown TargetType = iota
	TargetTypeUser
	TargetTypeService
	TargetTypeComplaint
	TargetTypeEvent
	TargetTypeSystem
)

func (t TargetType) String() string {
	switch t {
	case TargetTypeUser:
		return "user"
	case TargetTypeService:
		return "service"
	case TargetTypeComplaint:
		return "complaint"
	case TargetTypeEvent:
		return "event"
	case TargetTypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

var targetTypeMap = map[string]TargetType{
	"user":      TargetTypeUser,
	"service":   TargetTypeService,
	"complaint": TargetTypeComplaint,
	"event":     TargetTypeEvent,
	"system":    TargetTypeSystem,
}

// ParseTargetType maps a wire value to a TargetType. Unknown values return TargetTypeUnknown.
func ParseTargetType(s string) TargetType {
	if t, ok := targetTypeMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return TargetTypeUnknown
}

// IsValid reports whether t belongs to the closed set of audit targets.
func (t TargetType) IsValid() bool {
	return t >= TargetTypeUser && t <= TargetTypeSystem
}

// InferableTargetTypes lists the resource keywords recognised in request paths.
var InferableTargetTypes = []TargetType{
	TargetTypeUser,
	TargetTypeService,
	TargetTypeComplaint,
	TargetTypeEvent,
}
