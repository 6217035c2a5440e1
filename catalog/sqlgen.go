package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Binding supplies resolved parameter values for SQL generation. Values must
// already be validated and coerced to their declared Go types. AsOf anchors
// every time-window operator so a report can be replayed against a fixed
// instant.
type Binding struct {
	Values map[string]any
	AsOf   time.Time
}

// BuildSQL generates the SELECT statement and positional arguments for a
// read definition.
func BuildSQL(def Definition, bind Binding) (string, []any, error) {
	if def.Mode != ModeRead {
		return "", nil, fmt.Errorf("definition %q is not a read report", def.Name)
	}

	g := &gen{bind: bind}
	q := def.Query

	// Metric-sorted reports get the tie-break key appended so equal metric
	// values always come back in the same order.
	if def.TieBreak != "" && len(q.OrderBy) > 0 && !hasOrder(q.OrderBy, def.TieBreak) {
		orderBy := make([]Order, len(q.OrderBy), len(q.OrderBy)+1)
		copy(orderBy, q.OrderBy)
		q.OrderBy = append(orderBy, Order{Expr: def.TieBreak})
	}

	sqlText, err := g.query(q)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate SQL for report %q: %w", def.Name, err)
	}
	return sqlText, g.args, nil
}

// BuildWriteSQL generates the UPDATE statement and positional arguments for a
// write definition.
func BuildWriteSQL(def Definition, bind Binding) (string, []any, error) {
	if def.Mode != ModeWrite || def.Write == nil {
		return "", nil, fmt.Errorf("definition %q is not a write report", def.Name)
	}

	g := &gen{bind: bind}
	w := def.Write

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(w.Table)
	b.WriteString(" SET ")
	for i, assign := range w.Set {
		if i > 0 {
			b.WriteString(", ")
		}
		ph, err := g.bindArg(assign.Arg)
		if err != nil {
			return "", nil, fmt.Errorf("failed to generate SQL for report %q: %w", def.Name, err)
		}
		b.WriteString(assign.Col)
		b.WriteString(" = ")
		b.WriteString(ph)
	}
	if len(w.Where) > 0 {
		where, err := g.conds(w.Where)
		if err != nil {
			return "", nil, fmt.Errorf("failed to generate SQL for report %q: %w", def.Name, err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	return b.String(), g.args, nil
}

func hasOrder(orders []Order, expr string) bool {
	for _, o := range orders {
		if o.Expr == expr {
			return true
		}
	}
	return false
}

// gen accumulates positional arguments while walking the query structure.
// Placeholder numbering follows generation order: select list, joins, where,
// having, limit.
type gen struct {
	bind Binding
	args []any
}

func (g *gen) resolve(a Arg) (any, error) {
	if a.ParamName != "" {
		v, ok := g.bind.Values[a.ParamName]
		if !ok {
			return nil, fmt.Errorf("no value bound for parameter %q", a.ParamName)
		}
		return v, nil
	}
	return a.Value, nil
}

func (g *gen) bindArg(a Arg) (string, error) {
	v, err := g.resolve(a)
	if err != nil {
		return "", err
	}
	g.args = append(g.args, v)
	return fmt.Sprintf("$%d", len(g.args)), nil
}

func (g *gen) bindValue(v any) string {
	g.args = append(g.args, v)
	return fmt.Sprintf("$%d", len(g.args))
}

func (g *gen) intArg(a Arg) (int, error) {
	v, err := g.resolve(a)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer value, got %T", v)
	}
}

func (g *gen) asOf() (time.Time, error) {
	if g.bind.AsOf.IsZero() {
		return time.Time{}, fmt.Errorf("time-window operator used without an as-of anchor")
	}
	return g.bind.AsOf, nil
}

func (g *gen) query(q Query) (string, error) {
	var b strings.Builder

	b.WriteString("SELECT ")
	for i, e := range q.Select {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := g.expr(e)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		if e.Alias != "" {
			b.WriteString(" AS ")
			b.WriteString(e.Alias)
		}
	}

	b.WriteString(" FROM ")
	b.WriteString(q.From)

	for _, j := range q.Joins {
		kind := j.Kind
		if kind == "" {
			kind = "INNER"
		}
		on, err := g.conds(j.On)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(kind)
		b.WriteString(" JOIN ")
		b.WriteString(j.Table)
		b.WriteString(" ON ")
		b.WriteString(on)
	}

	if len(q.Where) > 0 {
		where, err := g.conds(q.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
	}

	if len(q.Having) > 0 {
		having, err := g.conds(q.Having)
		if err != nil {
			return "", err
		}
		b.WriteString(" HAVING ")
		b.WriteString(having)
	}

	if len(q.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.Expr)
			if o.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	if q.Limit != nil {
		n, err := g.intArg(*q.Limit)
		if err != nil {
			return "", err
		}
		b.WriteString(" LIMIT ")
		b.WriteString(g.bindValue(n))
	}

	return b.String(), nil
}

func (g *gen) expr(e Expr) (string, error) {
	switch {
	case e.Ratio != nil:
		return g.ratio(*e.Ratio)

	case e.Diff != nil:
		left, err := g.expr(e.Diff.Left)
		if err != nil {
			return "", err
		}
		right, err := g.expr(e.Diff.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s - %s)", left, right), nil

	case e.Sub != nil:
		inner, err := g.query(*e.Sub)
		if err != nil {
			return "", err
		}
		s := fmt.Sprintf("COALESCE((%s), 0)", inner)
		if len(e.Sub.Select) == 1 && isFractionalAgg(e.Sub.Select[0].Agg) {
			s += "::float8"
		}
		return s, nil

	case e.Agg != "":
		var inner string
		var err error
		if e.Case != nil {
			inner, err = g.caseExpr(*e.Case)
			if err != nil {
				return "", err
			}
		} else {
			inner = e.Col
		}
		if e.Distinct {
			inner = "DISTINCT " + inner
		}
		s := fmt.Sprintf("%s(%s)", e.Agg, inner)
		if e.Coalesce {
			s = fmt.Sprintf("COALESCE(%s, 0)", s)
		}
		if isFractionalAgg(e.Agg) {
			s += "::float8"
		}
		return s, nil

	case e.Case != nil:
		return g.caseExpr(*e.Case)

	case e.Trunc != "":
		return fmt.Sprintf("DATE_TRUNC('%s', %s)", e.Trunc, e.Col), nil

	case e.Col != "":
		return e.Col, nil
	}
	return "", fmt.Errorf("empty select expression")
}

// isFractionalAgg reports whether the aggregate produces a numeric that
// should surface as float8 instead of the driver's arbitrary-precision type
func isFractionalAgg(agg AggFunc) bool {
	return agg == AggSum || agg == AggAvg
}

// ratio emits the CASE-guarded division: 0/0 is defined as 0, matching the
// documented semantics for percentage reports.
func (g *gen) ratio(r RatioExpr) (string, error) {
	den, err := g.expr(r.Den)
	if err != nil {
		return "", err
	}
	num, err := g.expr(r.Num)
	if err != nil {
		return "", err
	}
	// The denominator appears twice; any bound arguments repeat with it.
	denAgain, err := g.expr(r.Den)
	if err != nil {
		return "", err
	}
	scale := ""
	if r.Percent {
		scale = " * 100.0"
	}
	return fmt.Sprintf(
		"CASE WHEN (%s) = 0 THEN 0 ELSE ROUND((%s)::numeric%s / (%s)::numeric, 2) END::float8",
		den, num, scale, denAgain,
	), nil
}

func (g *gen) caseExpr(c CaseExpr) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	for _, branch := range c.Branches {
		cond, err := g.cond(branch.When)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN ")
		b.WriteString(cond)
		b.WriteString(" THEN ")
		b.WriteString(caseValue(branch.Then))
	}
	if c.Else != nil {
		b.WriteString(" ELSE ")
		b.WriteString(caseValue(*c.Else))
	}
	b.WriteString(" END")
	return b.String(), nil
}

func caseValue(v CaseValue) string {
	if v.Col != "" {
		return v.Col
	}
	return "'" + strings.ReplaceAll(v.Lit, "'", "''") + "'"
}

func (g *gen) conds(cs []Cond) (string, error) {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		s, err := g.cond(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND "), nil
}

func (g *gen) cond(c Cond) (string, error) {
	switch c.Op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		ph, err := g.bindArg(c.Arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", c.Col, c.Op, ph), nil

	case OpIsNull:
		return c.Col + " IS NULL", nil

	case OpNotNull:
		return c.Col + " IS NOT NULL", nil

	case OpEqCol:
		return fmt.Sprintf("%s = %s", c.Col, c.Col2), nil

	case OpSinceDays:
		days, err := g.intArg(c.Arg)
		if err != nil {
			return "", err
		}
		asOf, err := g.asOf()
		if err != nil {
			return "", err
		}
		from := g.bindValue(asOf.AddDate(0, 0, -days))
		to := g.bindValue(asOf)
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", c.Col, from, c.Col, to), nil

	case OpSinceMonths:
		months, err := g.intArg(c.Arg)
		if err != nil {
			return "", err
		}
		asOf, err := g.asOf()
		if err != nil {
			return "", err
		}
		from := g.bindValue(asOf.AddDate(0, -months, 0))
		to := g.bindValue(asOf)
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", c.Col, from, c.Col, to), nil

	case OpStaleDays:
		days, err := g.intArg(c.Arg)
		if err != nil {
			return "", err
		}
		asOf, err := g.asOf()
		if err != nil {
			return "", err
		}
		cutoff := g.bindValue(asOf.AddDate(0, 0, -days))
		return fmt.Sprintf("(%s < %s OR %s IS NULL)", c.Col, cutoff, c.Col), nil

	case OpWithinDaysOfCol:
		days, err := g.intArg(c.Arg)
		if err != nil {
			return "", err
		}
		ph := g.bindValue(days)
		return fmt.Sprintf("(%s >= %s AND %s <= %s + make_interval(days => %s))",
			c.Col, c.Col2, c.Col, c.Col2, ph), nil

	case OpExists, OpNotExists:
		if c.Sub == nil {
			return "", fmt.Errorf("%s condition has no subquery", c.Op)
		}
		inner, err := g.query(*c.Sub)
		if err != nil {
			return "", err
		}
		prefix := "EXISTS"
		if c.Op == OpNotExists {
			prefix = "NOT EXISTS"
		}
		return fmt.Sprintf("%s (%s)", prefix, inner), nil
	}

	return "", fmt.Errorf("unsupported condition operator %q", c.Op)
}
