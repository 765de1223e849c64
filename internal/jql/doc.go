// package jql composes Jira Query Language filter strings.
//
// A [Builder] collects clauses as values and renders them once with [Builder.String]:
//
//	jql.New().Project("SRC").IssueTypes("Bug", "Task").CreatedOrder(true).String()
//	// project=SRC AND (issuetype=Bug OR issuetype=Task) ORDER BY created DESC
//
// Values are inserted verbatim; no quoting or escaping is applied.
package jql
