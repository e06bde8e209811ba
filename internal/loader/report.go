package loader

import (
	"sort"
	"strings"
)

// NetworkIssueReport collects the problems found while normalizing one
// network, grouped under the description of the step that raised them.
type NetworkIssueReport struct {
	name      string
	order     []string
	issues    map[string][]string
	nodeTypes map[string]struct{}
}

func NewNetworkIssueReport(name string) *NetworkIssueReport {
	return &NetworkIssueReport{
		name:      name,
		issues:    make(map[string][]string),
		nodeTypes: make(map[string]struct{}),
	}
}

// AddIssues records the issues one normalization step produced. Steps with no
// issues leave no trace in the report.
func (r *NetworkIssueReport) AddIssues(description string, issues []string) {
	if len(issues) == 0 {
		return
	}
	if _, seen := r.issues[description]; !seen {
		r.order = append(r.order, description)
	}
	r.issues[description] = append(r.issues[description], issues...)
}

// AddNodeType records a node type value seen in the network.
func (r *NetworkIssueReport) AddNodeType(nodeType string) {
	r.nodeTypes[nodeType] = struct{}{}
}

// NodeTypes returns the distinct node types seen, sorted.
func (r *NetworkIssueReport) NodeTypes() []string {
	types := make([]string, 0, len(r.nodeTypes))
	for t := range r.nodeTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// String renders the report for the run summary. A network with no issues
// renders as an empty string.
func (r *NetworkIssueReport) String() string {
	if len(r.order) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(r.name + "\n")
	for _, description := range r.order {
		sb.WriteString("\t" + description + "\n")
		for _, issue := range r.issues[description] {
			sb.WriteString("\t\t" + issue + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
