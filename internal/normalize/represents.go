package normalize

import (
	"strings"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

// DatabaseAttr names the node attribute identifying which database the node
// represents identifier came from.
const DatabaseAttr = "DATABASE"

// RepresentsPrefixUpdator prefixes node represents values with "uniprot:" or
// "signor:" based on the DATABASE node attribute, then drops that attribute.
// Identifiers from any other database are assumed to be prefixed already.
type RepresentsPrefixUpdator struct{}

func (u *RepresentsPrefixUpdator) Description() string {
	return "Updates value of represents with prefix from DATABASE attribute"
}

func (u *RepresentsPrefixUpdator) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}
	for _, node := range net.Nodes() {
		attr := net.NodeAttribute(node.ID, DatabaseAttr)
		if attr != nil {
			switch attr.StringValue() {
			case "UNIPROT":
				if !strings.Contains(node.Represents, "uniprot:") {
					node.Represents = "uniprot:" + node.Represents
				}
			case "SIGNOR":
				if !strings.Contains(node.Represents, "signor:") {
					node.Represents = "signor:" + node.Represents
				}
			}
		}
		net.RemoveNodeAttribute(node.ID, DatabaseAttr)
	}
	return nil
}
