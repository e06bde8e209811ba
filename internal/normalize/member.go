package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

const (
	// TypeAttr is the node attribute classifying the entity.
	TypeAttr = "type"

	// MemberAttr is the node attribute listing resolved group members.
	MemberAttr = "member"

	// ProteinFamily and Complex are the group node types whose members get
	// resolved.
	ProteinFamily = "proteinfamily"
	Complex       = "complex"

	familyGroupPrefix  = "SIGNOR-PF"
	complexGroupPrefix = "SIGNOR-C"

	hgncSymbolPrefix = "hgnc.symbol:"
)

// GeneSymbolSearcher resolves an external protein or gene identifier to a
// canonical gene symbol. An empty result means no symbol was found.
type GeneSymbolSearcher interface {
	Symbol(id string) string
}

// NodeMemberUpdator populates the member attribute of protein family and
// complex nodes. The node display name is looked up in the matching table,
// group references inside the entry are expanded one level, and the resulting
// identifiers are resolved to gene symbols.
type NodeMemberUpdator struct {
	families  map[string][]string
	complexes map[string][]string
	searcher  GeneSymbolSearcher
}

func NewNodeMemberUpdator(families, complexes map[string][]string, searcher GeneSymbolSearcher) *NodeMemberUpdator {
	return &NodeMemberUpdator{families: families, complexes: complexes, searcher: searcher}
}

func (u *NodeMemberUpdator) Description() string {
	return "Add genes to member node attribute for complexes and protein families"
}

func (u *NodeMemberUpdator) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}
	var issues []string
	for _, node := range net.Nodes() {
		attr := net.NodeAttribute(node.ID, TypeAttr)
		if attr == nil {
			continue
		}

		var table map[string][]string
		var tableName string
		switch attr.StringValue() {
		case ProteinFamily:
			table, tableName = u.families, "proteinfamily"
		case Complex:
			table, tableName = u.complexes, "complexes"
		default:
			continue
		}

		ids, ok := table[node.Name]
		if !ok {
			issues = append(issues, fmt.Sprintf("No entry in %s map for node: %s", tableName, node.Name))
			continue
		}
		expanded, expandIssues := u.expandGroupReferences(ids)
		issues = append(issues, expandIssues...)
		issues = append(issues, u.setMemberGenes(net, node, expanded)...)
	}
	return issues
}

// expandGroupReferences substitutes one level of indirection: identifiers
// starting with a group prefix are replaced by that group's own member list.
// Spliced-in identifiers are never expanded again. The result is deduplicated
// and sorted.
func (u *NodeMemberUpdator) expandGroupReferences(ids []string) ([]string, []string) {
	var issues []string
	seen := make(map[string]struct{})
	for _, entry := range ids {
		var members []string
		switch {
		case strings.HasPrefix(entry, familyGroupPrefix):
			group, ok := u.families[entry]
			if !ok {
				issues = append(issues, groupLookupIssue(entry, familyGroupPrefix))
				continue
			}
			members = group
		case strings.HasPrefix(entry, complexGroupPrefix):
			group, ok := u.complexes[entry]
			if !ok {
				issues = append(issues, groupLookupIssue(entry, complexGroupPrefix))
				continue
			}
			members = group
		default:
			members = []string{entry}
		}
		for _, m := range members {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, issues
}

func groupLookupIssue(entry, prefix string) string {
	return fmt.Sprintf("Protein id: %s matched prefix %s which is assumed to be a "+
		"reference to another entry, but none found. Skipping.", entry, prefix)
}

func (u *NodeMemberUpdator) setMemberGenes(net *cx.Network, node *cx.Node, ids []string) []string {
	if len(ids) == 0 {
		return []string{"No proteins obtained for node: " + node.Name}
	}
	var issues []string
	var members []string
	for _, entry := range ids {
		symbol := u.searcher.Symbol(entry)
		if symbol == "" {
			issues = append(issues, fmt.Sprintf("For node %s No gene symbol found for %s. Skipping.",
				node.Name, entry))
			continue
		}
		members = append(members, hgncSymbolPrefix+symbol)
	}
	if len(members) == 0 {
		issues = append(issues, "Not a single gene symbol found. Skipping insertion "+
			"of member attribute for node "+node.Name)
		return issues
	}
	net.SetNodeAttribute(node.ID, MemberAttr, members, cx.ListOfStringType, true)
	return issues
}
