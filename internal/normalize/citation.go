package normalize

import (
	"fmt"
	"strings"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

// CitationAttr is the edge attribute holding pubmed evidence references.
const CitationAttr = "citation"

// pmcMap maps the one PMC identifier seen in the full networks to its pubmed
// identifier. If more show up this should become a lookup against the NCBI id
// converter service.
var pmcMap = map[string]string{
	"PMC3619734": "15109499",
}

// InvalidCitationRemover drops citation entries that are not positive numeric
// pubmed ids after the "pubmed:" prefix is stripped. Known PMC ids are
// replaced with their pubmed equivalent instead of removed.
type InvalidCitationRemover struct{}

func (u *InvalidCitationRemover) Description() string {
	return "Removes any negative and non-numeric edge citations"
}

func (u *InvalidCitationRemover) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}
	var issues []string
	for _, edge := range net.Edges() {
		attr := net.EdgeAttribute(edge.ID, CitationAttr)
		if attr == nil {
			continue
		}
		changed := false
		updated := []string{}
		for _, entry := range attr.ListValue() {
			idOnly := strings.TrimPrefix(entry, "pubmed:")
			switch {
			case isAllDigits(idOnly):
				updated = append(updated, entry)
			case pmcMap[idOnly] != "":
				changed = true
				updated = append(updated, "pubmed:"+pmcMap[idOnly])
				issues = append(issues, fmt.Sprintf("Replacing %s with pubmed id: %s on edge id: %d",
					idOnly, pmcMap[idOnly], edge.ID))
			default:
				changed = true
				issues = append(issues, fmt.Sprintf("Removing invalid citation id: %s on edge id: %d",
					entry, edge.ID))
			}
		}
		if changed {
			net.RemoveEdgeAttribute(edge.ID, CitationAttr)
			net.SetEdgeAttribute(edge.ID, CitationAttr, updated, cx.ListOfStringType, true)
		}
	}
	return issues
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
