package catalog

// The query structures below are the "declarative query as data" core of the
// catalog. A Definition holds a Query (or WriteQuery) built from these tagged
// nodes; sqlgen walks them to produce a parameterized statement. Column and
// table references are authored in this package against the known schema,
// never taken from callers; caller input only ever becomes bound arguments.

// Arg is a value position in a query: either a reference to a declared
// parameter or a literal fixed by the definition. Exactly one field is set.
type Arg struct {
	ParamName string
	Value     any
}

// Param references a declared parameter by name
func Param(name string) Arg { return Arg{ParamName: name} }

// Lit embeds a literal value fixed by the definition
func Lit(v any) Arg { return Arg{Value: v} }

// ParamRef returns a pointer to a parameter Arg, for LIMIT clauses
func ParamRef(name string) *Arg {
	a := Param(name)
	return &a
}

// Op enumerates condition operators
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!="
	OpLt      Op = "<"
	OpLe      Op = "<="
	OpGt      Op = ">"
	OpGe      Op = ">="
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"

	// OpSinceDays bounds a timestamp column to [as_of - N days, as_of].
	// N comes from the condition's Arg; as_of from the execution binding.
	OpSinceDays Op = "since_days"

	// OpSinceMonths bounds a timestamp column to [as_of - N months, as_of]
	OpSinceMonths Op = "since_months"

	// OpStaleDays matches timestamps older than as_of - N days, or NULL.
	// Used for "never logged in or not recently" filters.
	OpStaleDays Op = "stale_days"

	// OpWithinDaysOfCol matches when the column falls within [Col2, Col2 + N
	// days]. Used for cohort windows anchored on another row's timestamp.
	OpWithinDaysOfCol Op = "within_days_of_col"

	// OpEqCol compares two columns (correlation predicate)
	OpEqCol Op = "eq_col"

	// OpExists / OpNotExists wrap a correlated subquery
	OpExists    Op = "exists"
	OpNotExists Op = "not_exists"
)

// Cond is a single filter predicate
type Cond struct {
	Col  string
	Op   Op
	Arg  Arg    // bound value for comparison and window operators
	Col2 string // second column for OpEqCol / OpWithinDaysOfCol
	Sub  *Query // subquery for OpExists / OpNotExists
}

// AggFunc enumerates aggregate functions
type AggFunc string

const (
	AggSum   AggFunc = "SUM"
	AggCount AggFunc = "COUNT"
	AggAvg   AggFunc = "AVG"
	AggMax   AggFunc = "MAX"
	AggMin   AggFunc = "MIN"
)

// Expr is one select-list expression. Exactly one of the expression kinds is
// set: a plain or truncated column, an aggregate, a correlated scalar
// subquery, a CASE expression, a guarded ratio, or a difference.
type Expr struct {
	Col      string  // column reference (or "*" under COUNT)
	Trunc    string  // DATE_TRUNC field applied to Col ("month", "day")
	Agg      AggFunc // aggregate applied to Col or Case
	Distinct bool    // aggregate DISTINCT
	Coalesce bool    // wrap aggregate in COALESCE(..., 0)

	Sub   *Query     // correlated scalar subquery, coalesced to 0
	Case  *CaseExpr  // CASE expression, possibly under Agg
	Ratio *RatioExpr // zero-denominator-guarded division
	Diff  *DiffExpr  // left minus right

	Alias string
}

// CaseExpr is a searched CASE with literal or column results
type CaseExpr struct {
	Branches []CaseBranch
	Else     *CaseValue // nil emits no ELSE (NULL)
}

// CaseBranch is one WHEN clause
type CaseBranch struct {
	When Cond
	Then CaseValue
}

// CaseValue is a CASE result: a column reference or a string literal
type CaseValue struct {
	Col string
	Lit string
}

// RatioExpr divides Num by Den with the documented zero guard: when the
// denominator is 0 the result is exactly 0, never an error or NULL. Percent
// scales the result by 100.
type RatioExpr struct {
	Num     Expr
	Den     Expr
	Percent bool
}

// DiffExpr subtracts Right from Left
type DiffExpr struct {
	Left  Expr
	Right Expr
}

// Join is one join clause; On conditions are ANDed
type Join struct {
	Kind  string // "LEFT" or "INNER"
	Table string // table with alias, e.g. "savings_savingsentry s"
	On    []Cond
}

// Order is one ORDER BY term referencing a select alias or column
type Order struct {
	Expr string
	Desc bool
}

// Query is a declarative read query
type Query struct {
	Select  []Expr
	From    string // table with alias, e.g. "users_customuser u"
	Joins   []Join
	Where   []Cond // ANDed
	GroupBy []string
	Having  []Cond
	OrderBy []Order
	Limit   *Arg // nil for no limit
}

// Assign is one SET clause of a write statement
type Assign struct {
	Col string
	Arg Arg
}

// WriteQuery is a declarative UPDATE used by write-class reports
type WriteQuery struct {
	Table string
	Set   []Assign
	Where []Cond
}
