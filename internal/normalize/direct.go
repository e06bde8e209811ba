package normalize

import "github.com/rpillich/ndexsignorloader/internal/cx"

// DirectAttr is the edge attribute flagging a direct interaction.
const DirectAttr = "direct"

// DirectEdgeAttributeUpdator rewrites the raw "direct" edge attribute into a
// boolean: the source data uses "t" for direct, anything else is indirect.
type DirectEdgeAttributeUpdator struct{}

func (u *DirectEdgeAttributeUpdator) Description() string {
	return "Updates value of directed edge attribute to true and false"
}

func (u *DirectEdgeAttributeUpdator) Update(net *cx.Network) []string {
	if net == nil {
		return []string{networkIsNil}
	}
	for _, edge := range net.Edges() {
		attr := net.EdgeAttribute(edge.ID, DirectAttr)
		if attr == nil {
			continue
		}
		isDirect := attr.StringValue() == "t"
		net.RemoveEdgeAttribute(edge.ID, DirectAttr)
		net.SetEdgeAttribute(edge.ID, DirectAttr, isDirect, cx.BooleanType, true)
	}
	return nil
}
