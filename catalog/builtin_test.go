package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins_RegisterCleanly(t *testing.T) {
	c, err := NewWithBuiltins()
	require.NoError(t, err)

	assert.Len(t, c.Names(), 21)
}

func TestBuiltins_SingleWriteReport(t *testing.T) {
	var writes []string
	for _, def := range Builtins() {
		if def.IsWrite() {
			writes = append(writes, def.Name)
		}
	}

	assert.Equal(t, []string{ReportDeactivateStaleUsers}, writes)
}

func TestBuiltins_WellFormed(t *testing.T) {
	for _, def := range Builtins() {
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.Description)
			assert.NotEmpty(t, def.Columns)

			if def.IsWrite() {
				require.NotNil(t, def.Write)
				assert.NotEmpty(t, def.Write.Table)
				assert.NotEmpty(t, def.Write.Set)

				// Every write report must gate on explicit confirmation
				confirm, ok := def.Param(ParamConfirm)
				require.True(t, ok)
				assert.Equal(t, ParamBool, confirm.Type)
				assert.True(t, confirm.Required)
				return
			}

			assert.Nil(t, def.Write)
			assert.NotEmpty(t, def.Query.From)
		})
	}
}

// Every parameter a query references must be declared, and every declared
// parameter other than the confirmation gate must be referenced.
func TestBuiltins_ParamReferencesDeclared(t *testing.T) {
	for _, def := range Builtins() {
		t.Run(def.Name, func(t *testing.T) {
			declared := make(map[string]bool)
			for _, p := range def.Params {
				declared[p.Name] = true
			}

			referenced := make(map[string]bool)
			if def.IsWrite() {
				collectWriteParams(*def.Write, referenced)
			} else {
				collectQueryParams(def.Query, referenced)
			}

			for name := range referenced {
				assert.True(t, declared[name], "query references undeclared parameter %q", name)
			}
			for name := range declared {
				if name == ParamConfirm {
					continue
				}
				assert.True(t, referenced[name], "declared parameter %q is never used", name)
			}
		})
	}
}

func TestBuiltins_MetricSortsCarryTieBreak(t *testing.T) {
	for _, def := range Builtins() {
		if def.IsWrite() || def.Query.Limit == nil {
			continue
		}
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.TieBreak, "limited report needs a deterministic tie-break")
		})
	}
}

func collectQueryParams(q Query, out map[string]bool) {
	for _, e := range q.Select {
		collectExprParams(e, out)
	}
	for _, j := range q.Joins {
		collectCondParams(j.On, out)
	}
	collectCondParams(q.Where, out)
	collectCondParams(q.Having, out)
	if q.Limit != nil && q.Limit.ParamName != "" {
		out[q.Limit.ParamName] = true
	}
}

func collectExprParams(e Expr, out map[string]bool) {
	if e.Sub != nil {
		collectQueryParams(*e.Sub, out)
	}
	if e.Case != nil {
		collectCaseParams(*e.Case, out)
	}
	if e.Ratio != nil {
		collectExprParams(e.Ratio.Num, out)
		collectExprParams(e.Ratio.Den, out)
	}
	if e.Diff != nil {
		collectExprParams(e.Diff.Left, out)
		collectExprParams(e.Diff.Right, out)
	}
}

func collectCaseParams(c CaseExpr, out map[string]bool) {
	for _, b := range c.Branches {
		collectCondParams([]Cond{b.When}, out)
	}
}

func collectCondParams(cs []Cond, out map[string]bool) {
	for _, c := range cs {
		if c.Arg.ParamName != "" {
			out[c.Arg.ParamName] = true
		}
		if c.Sub != nil {
			collectQueryParams(*c.Sub, out)
		}
	}
}

func collectWriteParams(w WriteQuery, out map[string]bool) {
	for _, a := range w.Set {
		if a.Arg.ParamName != "" {
			out[a.Arg.ParamName] = true
		}
	}
	collectCondParams(w.Where, out)
}
