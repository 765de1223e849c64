package jql

import "strings"

// Query keywords and field names.
const (
	FieldProject   = "project"
	FieldIssueType = "issuetype"
	FieldPriority  = "priority"
	FieldAssignee  = "assignee"
	FieldReporter  = "reporter"
	FieldCreated   = "created"
	FieldUpdated   = "updated"

	keywordAnd     = " AND "
	keywordOr      = " OR "
	keywordOrderBy = " ORDER BY "

	Ascending  = "ASC"
	Descending = "DESC"
)

// clause is one "field=value" term, or a parenthesised disjunction when grouped.
type clause struct {
	field   string
	values  []string
	grouped bool
}

func (c clause) render() string {
	if !c.grouped {
		return c.field + "=" + c.values[0]
	}

	terms := make([]string, len(c.values))
	for i, v := range c.values {
		terms[i] = c.field + "=" + v
	}
	return "(" + strings.Join(terms, keywordOr) + ")"
}

type ordering struct {
	field      string
	descending bool
}

// Builder accumulates filter clauses and an ordering. Methods return a new Builder and never mutate the receiver.
type Builder struct {
	clauses []clause
	order   *ordering
}

// New returns an empty [Builder].
func New() Builder {
	return Builder{}
}

func (b Builder) with(c clause) Builder {
	next := make([]clause, len(b.clauses), len(b.clauses)+1)
	copy(next, b.clauses)
	b.clauses = append(next, c)
	return b
}

// disjunction adds (field=v1 OR field=v2 ...); an empty list adds nothing.
func (b Builder) disjunction(field string, values []string) Builder {
	if len(values) == 0 {
		return b
	}
	return b.with(clause{field: field, values: append([]string(nil), values...), grouped: true})
}

// Project restricts the query to a single project key.
func (b Builder) Project(key string) Builder {
	return b.with(clause{field: FieldProject, values: []string{key}})
}

// IssueTypes restricts the query to any of the named issue types.
func (b Builder) IssueTypes(names ...string) Builder {
	return b.disjunction(FieldIssueType, names)
}

func (b Builder) Priorities(names ...string) Builder {
	return b.disjunction(FieldPriority, names)
}

func (b Builder) Assignees(ids ...string) Builder {
	return b.disjunction(FieldAssignee, ids)
}

func (b Builder) Reporters(ids ...string) Builder {
	return b.disjunction(FieldReporter, ids)
}

// OrderBy sets the ordering field. A later call replaces an earlier one.
func (b Builder) OrderBy(field string, descending bool) Builder {
	b.order = &ordering{field: field, descending: descending}
	return b
}

func (b Builder) CreatedOrder(descending bool) Builder {
	return b.OrderBy(FieldCreated, descending)
}

func (b Builder) UpdatedOrder(descending bool) Builder {
	return b.OrderBy(FieldUpdated, descending)
}

// String renders the clauses joined with AND, followed by the ORDER BY suffix when set.
func (b Builder) String() string {
	var sb strings.Builder
	for i, c := range b.clauses {
		if i > 0 {
			sb.WriteString(keywordAnd)
		}
		sb.WriteString(c.render())
	}

	if b.order != nil {
		sb.WriteString(keywordOrderBy)
		sb.WriteString(b.order.field)
		sb.WriteByte(' ')
		if b.order.descending {
			sb.WriteString(Descending)
		} else {
			sb.WriteString(Ascending)
		}
	}
	return sb.String()
}

// Build returns "project=KEY", an optional issue-type disjunction, and an ORDER BY suffix.
func Build(projectKey string, issueTypeNames []string, orderField string, descending bool) string {
	return New().
		Project(projectKey).
		IssueTypes(issueTypeNames...).
		OrderBy(orderField, descending).
		String()
}
