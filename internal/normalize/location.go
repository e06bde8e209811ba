package normalize

import "github.com/rpillich/ndexsignorloader/internal/cx"

const (
	// LocationAttr is the node attribute holding the cellular compartment.
	LocationAttr = "location"

	// Cytoplasm is the default compartment for nodes lacking one.
	Cytoplasm = "cytoplasm"

	// phenotype entities carry this placeholder location in the source data;
	// it maps to the unlabeled layout band (the empty string).
	phenotypesList = "phenotypesList"
)

// NodeLocationUpdator guarantees every node has a location attribute:
// missing or empty values become "cytoplasm" and the "phenotypesList"
// placeholder becomes the empty string.
type NodeLocationUpdator struct{}

func (u *NodeLocationUpdator) Description() string {
	return "Replace any empty node location attribute values with cytoplasm"
}

func (u *NodeLocationUpdator) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}
	for _, node := range net.Nodes() {
		attr := net.NodeAttribute(node.ID, LocationAttr)
		if attr == nil {
			net.SetNodeAttribute(node.ID, LocationAttr, Cytoplasm, cx.StringType, true)
			continue
		}
		switch attr.StringValue() {
		case "":
			attr.Value = Cytoplasm
		case phenotypesList:
			attr.Value = ""
		}
	}
	return nil
}
