package catalog

// Mode distinguishes read-only reports from reports that mutate platform state
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// ParamType is the declared type of a report parameter
type ParamType string

const (
	ParamInt    ParamType = "int"
	ParamFloat  ParamType = "float"
	ParamString ParamType = "string"
	ParamBool   ParamType = "bool"
	ParamTime   ParamType = "time"
)

// ParamName constants shared by several built-in reports
const (
	// ParamAsOf is accepted by every report: it anchors time-window filters
	// to a fixed instant so results are reproducible. Defaults to now.
	ParamAsOf = "as_of"

	// ParamConfirm gates write-class reports. Required, must be true.
	ParamConfirm = "confirm"
)

// ParamSpec declares one parameter a report accepts
type ParamSpec struct {
	Name     string
	Type     ParamType
	Required bool
	Default  any      // used when the parameter is optional and absent
	Min      *float64 // lower bound for numeric parameters, inclusive
	Max      *float64 // upper bound for numeric parameters, inclusive
}

// Column declares one output column of a report
type Column struct {
	Name string
	Type string // "int64", "float64", "string", "bool", "time"
}

// Definition is an immutable, registered report. Read reports carry a Query;
// write reports carry a Write statement and always require confirm=true.
type Definition struct {
	Name        string
	Description string
	Mode        Mode
	Params      []ParamSpec
	Columns     []Column

	Query Query
	Write *WriteQuery

	// TieBreak is appended to ORDER BY so metric-sorted reports are
	// reproducible across runs. Usually the user id column.
	TieBreak string
}

// Param returns the spec for a named parameter, if declared
func (d Definition) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// IsWrite reports whether executing this definition mutates external state
func (d Definition) IsWrite() bool {
	return d.Mode == ModeWrite
}

func minBound(v float64) *float64 { return &v }
func maxBound(v float64) *float64 { return &v }
