package catalog

// Builtins returns the full built-in report set for the fintech schema.
// Twenty read reports plus the one write-class administrative sweep.
func Builtins() []Definition {
	return []Definition{
		newSignups(),
		signupTrendMonthly(),
		totalSavingsPerUser(),
		totalWithdrawalsPerUser(),
		netSavingsPerUser(),
		usersWithoutWithdrawals(),
		usersWithoutSavings(),
		topSavers(),
		topWithdrawers(),
		withdrawalSavingsRatio(),
		highRiskUsers(),
		lowRiskSavers(),
		riskSegments(),
		avgSavingsByGender(),
		avgSavingsByLocation(),
		salaryVsSavings(),
		plansPerUser(),
		planAdoption(),
		dormantUsers(),
		retentionByCohort(),
		deactivateStaleUsers(),
	}
}

// Report name constants for callers that trigger specific reports
const (
	ReportNewSignups           = "new-signups"
	ReportSignupTrendMonthly   = "signup-trend-monthly"
	ReportTotalSavingsPerUser  = "total-savings-per-user"
	ReportDeactivateStaleUsers = "deactivate-stale-users"
)

// Shared parameter specs
func lookbackDaysParam() ParamSpec {
	return ParamSpec{Name: "lookback_days", Type: ParamInt, Required: true, Min: minBound(1), Max: maxBound(3650)}
}

func limitParam() ParamSpec {
	return ParamSpec{Name: "limit", Type: ParamInt, Required: true, Min: minBound(1), Max: maxBound(1000)}
}

// Correlated scalar subqueries against the per-user money tables. These
// follow the COALESCE((SELECT SUM ...), 0) shape so users with no rows
// surface as 0 instead of dropping out or going NULL.
func savingsTotalSub() *Query {
	return &Query{
		Select: []Expr{{Agg: AggSum, Col: "s.amount"}},
		From:   "savings_savingsentry s",
		Where:  []Cond{{Col: "s.owner_id", Op: OpEqCol, Col2: "u.id"}},
	}
}

func withdrawalsTotalSub() *Query {
	return &Query{
		Select: []Expr{{Agg: AggSum, Col: "w.amount"}},
		From:   "savings_withdrawal w",
		Where:  []Cond{{Col: "w.owner_id", Op: OpEqCol, Col2: "u.id"}},
	}
}

func newSignups() Definition {
	return Definition{
		Name:        ReportNewSignups,
		Description: "Active users who joined within the lookback window",
		Mode:        ModeRead,
		Params:      []ParamSpec{lookbackDaysParam()},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
			{Name: "date_joined", Type: "time"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.email", Alias: "email"},
				{Col: "u.date_joined", Alias: "date_joined"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Col: "u.date_joined", Op: OpSinceDays, Arg: Param("lookback_days")},
				{Col: "u.is_active", Op: OpEq, Arg: Lit(true)},
			},
			OrderBy: []Order{{Expr: "date_joined", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func signupTrendMonthly() Definition {
	return Definition{
		Name:        ReportSignupTrendMonthly,
		Description: "Signup counts per calendar month over the trailing window",
		Mode:        ModeRead,
		Params: []ParamSpec{
			{Name: "months", Type: ParamInt, Required: true, Min: minBound(1), Max: maxBound(120)},
		},
		Columns: []Column{
			{Name: "month", Type: "time"},
			{Name: "signups", Type: "int64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.date_joined", Trunc: "month", Alias: "month"},
				{Agg: AggCount, Col: "*", Alias: "signups"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Col: "u.date_joined", Op: OpSinceMonths, Arg: Param("months")},
			},
			GroupBy: []string{"month"},
			OrderBy: []Order{{Expr: "month"}},
		},
	}
}

func totalSavingsPerUser() Definition {
	return Definition{
		Name:        ReportTotalSavingsPerUser,
		Description: "Lifetime savings total per user; users with no entries report 0",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "total_savings", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Sub: savingsTotalSub(), Alias: "total_savings"},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "total_savings", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func totalWithdrawalsPerUser() Definition {
	return Definition{
		Name:        "total-withdrawals-per-user",
		Description: "Lifetime withdrawal total per user; users with no withdrawals report 0",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "total_withdrawals", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Sub: withdrawalsTotalSub(), Alias: "total_withdrawals"},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "total_withdrawals", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func netSavingsPerUser() Definition {
	return Definition{
		Name:        "net-savings-per-user",
		Description: "Savings minus withdrawals per user",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "net_savings", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{
					Diff: &DiffExpr{
						Left:  Expr{Sub: savingsTotalSub()},
						Right: Expr{Sub: withdrawalsTotalSub()},
					},
					Alias: "net_savings",
				},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "net_savings", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func usersWithoutWithdrawals() Definition {
	return Definition{
		Name:        "users-without-withdrawals",
		Description: "Users with no withdrawal records at all, each listed once",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.email", Alias: "email"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Op: OpNotExists, Sub: &Query{
					Select: []Expr{{Col: "1"}},
					From:   "savings_withdrawal w",
					Where:  []Cond{{Col: "w.owner_id", Op: OpEqCol, Col2: "u.id"}},
				}},
			},
			OrderBy: []Order{{Expr: "user_id"}},
		},
	}
}

func usersWithoutSavings() Definition {
	return Definition{
		Name:        "users-without-savings",
		Description: "Users with no savings entries at all, each listed once",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "email", Type: "string"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.email", Alias: "email"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Op: OpNotExists, Sub: &Query{
					Select: []Expr{{Col: "1"}},
					From:   "savings_savingsentry s",
					Where:  []Cond{{Col: "s.owner_id", Op: OpEqCol, Col2: "u.id"}},
				}},
			},
			OrderBy: []Order{{Expr: "user_id"}},
		},
	}
}

func topSavers() Definition {
	return Definition{
		Name:        "top-savers",
		Description: "Top N users by savings total; ties resolve by user id ascending",
		Mode:        ModeRead,
		Params:      []ParamSpec{limitParam()},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "total_savings", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Sub: savingsTotalSub(), Alias: "total_savings"},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "total_savings", Desc: true}},
			Limit:   ParamRef("limit"),
		},
		TieBreak: "user_id",
	}
}

func topWithdrawers() Definition {
	return Definition{
		Name:        "top-withdrawers",
		Description: "Top N users by withdrawal total; ties resolve by user id ascending",
		Mode:        ModeRead,
		Params:      []ParamSpec{limitParam()},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "total_withdrawals", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Sub: withdrawalsTotalSub(), Alias: "total_withdrawals"},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "total_withdrawals", Desc: true}},
			Limit:   ParamRef("limit"),
		},
		TieBreak: "user_id",
	}
}

func withdrawalSavingsRatio() Definition {
	return Definition{
		Name:        "withdrawal-savings-ratio",
		Description: "Withdrawals as a percentage of savings per user; 0/0 reports 0",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "total_savings", Type: "float64"},
			{Name: "total_withdrawals", Type: "float64"},
			{Name: "withdrawal_pct", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Sub: savingsTotalSub(), Alias: "total_savings"},
				{Sub: withdrawalsTotalSub(), Alias: "total_withdrawals"},
				{
					Ratio: &RatioExpr{
						Num:     Expr{Sub: withdrawalsTotalSub()},
						Den:     Expr{Sub: savingsTotalSub()},
						Percent: true,
					},
					Alias: "withdrawal_pct",
				},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "withdrawal_pct", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func highRiskUsers() Definition {
	return Definition{
		Name:        "high-risk-users",
		Description: "Active users at or above the risk appetite threshold",
		Mode:        ModeRead,
		Params: []ParamSpec{
			{Name: "risk_threshold", Type: ParamInt, Required: true, Min: minBound(0), Max: maxBound(10)},
		},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "risk_appetite", Type: "int64"},
			{Name: "salary", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.risk_appetite", Alias: "risk_appetite"},
				{Col: "u.salary::float8", Alias: "salary"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Col: "u.risk_appetite", Op: OpGe, Arg: Param("risk_threshold")},
				{Col: "u.is_active", Op: OpEq, Arg: Lit(true)},
			},
			OrderBy: []Order{{Expr: "risk_appetite", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func lowRiskSavers() Definition {
	return Definition{
		Name:        "low-risk-savers",
		Description: "Users at or below the risk threshold with savings activity in the window",
		Mode:        ModeRead,
		Params: []ParamSpec{
			{Name: "risk_threshold", Type: ParamInt, Required: true, Min: minBound(0), Max: maxBound(10)},
			lookbackDaysParam(),
		},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "risk_appetite", Type: "int64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.risk_appetite", Alias: "risk_appetite"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Col: "u.risk_appetite", Op: OpLe, Arg: Param("risk_threshold")},
				{Op: OpExists, Sub: &Query{
					Select: []Expr{{Col: "1"}},
					From:   "savings_savingsentry s",
					Where: []Cond{
						{Col: "s.owner_id", Op: OpEqCol, Col2: "u.id"},
						{Col: "s.transaction_date", Op: OpSinceDays, Arg: Param("lookback_days")},
					},
				}},
			},
			OrderBy: []Order{{Expr: "risk_appetite"}},
		},
		TieBreak: "user_id",
	}
}

func riskSegments() Definition {
	return Definition{
		Name:        "risk-segments",
		Description: "User counts banded into low, medium and high risk segments",
		Mode:        ModeRead,
		Params: []ParamSpec{
			{Name: "low_max", Type: ParamInt, Required: true, Min: minBound(0), Max: maxBound(10)},
			{Name: "medium_max", Type: ParamInt, Required: true, Min: minBound(0), Max: maxBound(10)},
		},
		Columns: []Column{
			{Name: "segment", Type: "string"},
			{Name: "users", Type: "int64"},
		},
		Query: Query{
			Select: []Expr{
				{
					Case: &CaseExpr{
						Branches: []CaseBranch{
							{When: Cond{Col: "u.risk_appetite", Op: OpLe, Arg: Param("low_max")}, Then: CaseValue{Lit: "low"}},
							{When: Cond{Col: "u.risk_appetite", Op: OpLe, Arg: Param("medium_max")}, Then: CaseValue{Lit: "medium"}},
						},
						Else: &CaseValue{Lit: "high"},
					},
					Alias: "segment",
				},
				{Agg: AggCount, Col: "*", Alias: "users"},
			},
			From:    "users_customuser u",
			GroupBy: []string{"segment"},
			OrderBy: []Order{{Expr: "segment"}},
		},
	}
}

func avgSavingsByGender() Definition {
	return savingsBreakdown("avg-savings-by-gender", "u.gender", "gender",
		"Savings totals and per-user average broken down by gender")
}

func avgSavingsByLocation() Definition {
	return savingsBreakdown("avg-savings-by-location", "u.location", "location",
		"Savings totals and per-user average broken down by location")
}

// savingsBreakdown groups users on a dimension column and aggregates their
// savings with the zero-guarded per-user average.
func savingsBreakdown(name, dimCol, dimAlias, description string) Definition {
	return Definition{
		Name:        name,
		Description: description,
		Mode:        ModeRead,
		Columns: []Column{
			{Name: dimAlias, Type: "string"},
			{Name: "users", Type: "int64"},
			{Name: "total_savings", Type: "float64"},
			{Name: "avg_per_user", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: dimCol, Alias: dimAlias},
				{Agg: AggCount, Distinct: true, Col: "u.id", Alias: "users"},
				{Agg: AggSum, Col: "s.amount", Coalesce: true, Alias: "total_savings"},
				{
					Ratio: &RatioExpr{
						Num: Expr{Agg: AggSum, Col: "s.amount", Coalesce: true},
						Den: Expr{Agg: AggCount, Distinct: true, Col: "u.id"},
					},
					Alias: "avg_per_user",
				},
			},
			From: "users_customuser u",
			Joins: []Join{
				{Kind: "LEFT", Table: "savings_savingsentry s", On: []Cond{
					{Col: "s.owner_id", Op: OpEqCol, Col2: "u.id"},
				}},
			},
			GroupBy: []string{dimAlias},
			OrderBy: []Order{{Expr: dimAlias}},
		},
	}
}

func salaryVsSavings() Definition {
	return Definition{
		Name:        "salary-vs-savings",
		Description: "Per-user salary against savings total and savings rate",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "salary", Type: "float64"},
			{Name: "total_savings", Type: "float64"},
			{Name: "savings_rate_pct", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.salary::float8", Alias: "salary"},
				{Sub: savingsTotalSub(), Alias: "total_savings"},
				{
					Ratio: &RatioExpr{
						Num:     Expr{Sub: savingsTotalSub()},
						Den:     Expr{Col: "u.salary"},
						Percent: true,
					},
					Alias: "savings_rate_pct",
				},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "savings_rate_pct", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func plansPerUser() Definition {
	return Definition{
		Name:        "plans-per-user",
		Description: "Plan counts per user via the explicit owner key",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "plan_count", Type: "int64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{
					Sub: &Query{
						Select: []Expr{{Agg: AggCount, Col: "*"}},
						From:   "plans_plan p",
						Where:  []Cond{{Col: "p.owner_id", Op: OpEqCol, Col2: "u.id"}},
					},
					Alias: "plan_count",
				},
			},
			From:    "users_customuser u",
			OrderBy: []Order{{Expr: "plan_count", Desc: true}},
		},
		TieBreak: "user_id",
	}
}

func planAdoption() Definition {
	return Definition{
		Name:        "plan-adoption",
		Description: "Share of users holding at least one plan, split by plan kind",
		Mode:        ModeRead,
		Columns: []Column{
			{Name: "total_users", Type: "int64"},
			{Name: "users_with_plans", Type: "int64"},
			{Name: "adoption_pct", Type: "float64"},
			{Name: "savings_plan_users", Type: "int64"},
			{Name: "investment_plan_users", Type: "int64"},
		},
		Query: Query{
			Select: []Expr{
				{Agg: AggCount, Distinct: true, Col: "u.id", Alias: "total_users"},
				{Agg: AggCount, Distinct: true, Col: "p.owner_id", Alias: "users_with_plans"},
				{
					Ratio: &RatioExpr{
						Num:     Expr{Agg: AggCount, Distinct: true, Col: "p.owner_id"},
						Den:     Expr{Agg: AggCount, Distinct: true, Col: "u.id"},
						Percent: true,
					},
					Alias: "adoption_pct",
				},
				{
					Agg: AggCount, Distinct: true,
					Case: &CaseExpr{
						Branches: []CaseBranch{
							{When: Cond{Col: "p.is_savings", Op: OpEq, Arg: Lit(true)}, Then: CaseValue{Col: "p.owner_id"}},
						},
					},
					Alias: "savings_plan_users",
				},
				{
					Agg: AggCount, Distinct: true,
					Case: &CaseExpr{
						Branches: []CaseBranch{
							{When: Cond{Col: "p.is_fixed_investment", Op: OpEq, Arg: Lit(true)}, Then: CaseValue{Col: "p.owner_id"}},
						},
					},
					Alias: "investment_plan_users",
				},
			},
			From: "users_customuser u",
			Joins: []Join{
				{Kind: "LEFT", Table: "plans_plan p", On: []Cond{
					{Col: "p.owner_id", Op: OpEqCol, Col2: "u.id"},
				}},
			},
		},
	}
}

func dormantUsers() Definition {
	return Definition{
		Name:        "dormant-users",
		Description: "Users still flagged active whose last login predates the lookback window",
		Mode:        ModeRead,
		Params:      []ParamSpec{lookbackDaysParam()},
		Columns: []Column{
			{Name: "user_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "last_login", Type: "time"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.id", Alias: "user_id"},
				{Col: "u.name", Alias: "name"},
				{Col: "u.last_login", Alias: "last_login"},
			},
			From: "users_customuser u",
			Where: []Cond{
				{Col: "u.is_active", Op: OpEq, Arg: Lit(true)},
				{Col: "u.last_login", Op: OpStaleDays, Arg: Param("lookback_days")},
			},
			OrderBy: []Order{{Expr: "user_id"}},
		},
	}
}

func retentionByCohort() Definition {
	return Definition{
		Name:        "retention-by-cohort",
		Description: "Monthly signup cohorts and the share saving within the window after joining",
		Mode:        ModeRead,
		Params: []ParamSpec{
			{Name: "window_days", Type: ParamInt, Required: true, Min: minBound(1), Max: maxBound(365)},
		},
		Columns: []Column{
			{Name: "cohort_month", Type: "time"},
			{Name: "cohort_size", Type: "int64"},
			{Name: "retained_users", Type: "int64"},
			{Name: "retention_pct", Type: "float64"},
		},
		Query: Query{
			Select: []Expr{
				{Col: "u.date_joined", Trunc: "month", Alias: "cohort_month"},
				{Agg: AggCount, Distinct: true, Col: "u.id", Alias: "cohort_size"},
				{Agg: AggCount, Distinct: true, Col: "s.owner_id", Alias: "retained_users"},
				{
					Ratio: &RatioExpr{
						Num:     Expr{Agg: AggCount, Distinct: true, Col: "s.owner_id"},
						Den:     Expr{Agg: AggCount, Distinct: true, Col: "u.id"},
						Percent: true,
					},
					Alias: "retention_pct",
				},
			},
			From: "users_customuser u",
			Joins: []Join{
				{Kind: "LEFT", Table: "savings_savingsentry s", On: []Cond{
					{Col: "s.owner_id", Op: OpEqCol, Col2: "u.id"},
					{Col: "s.transaction_date", Op: OpWithinDaysOfCol, Col2: "u.date_joined", Arg: Param("window_days")},
				}},
			},
			GroupBy: []string{"cohort_month"},
			OrderBy: []Order{{Expr: "cohort_month"}},
		},
	}
}

func deactivateStaleUsers() Definition {
	return Definition{
		Name:        ReportDeactivateStaleUsers,
		Description: "Deactivates users whose last login predates the inactivity window; requires confirm=true",
		Mode:        ModeWrite,
		Params: []ParamSpec{
			{Name: "inactive_days", Type: ParamInt, Required: true, Min: minBound(1), Max: maxBound(3650)},
			{Name: ParamConfirm, Type: ParamBool, Required: true},
		},
		Columns: []Column{
			{Name: "rows_affected", Type: "int64"},
		},
		Write: &WriteQuery{
			Table: "users_customuser",
			Set:   []Assign{{Col: "is_active", Arg: Lit(false)}},
			// Already-inactive rows are excluded, so a second sweep over the
			// same dataset touches nothing.
			Where: []Cond{
				{Col: "is_active", Op: OpEq, Arg: Lit(true)},
				{Col: "last_login", Op: OpStaleDays, Arg: Param("inactive_days")},
			},
		},
	}
}
