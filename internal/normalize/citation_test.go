package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

func TestCitationRemoverNilNetwork(t *testing.T) {
	u := &InvalidCitationRemover{}
	assert.Equal(t, []string{"network is None"}, u.Update(nil))
}

func TestCitationRemoverValidCitationsUntouched(t *testing.T) {
	net := cx.NewNetwork()
	eid := net.CreateEdge(0, 1, "activates")
	net.SetEdgeAttribute(eid, CitationAttr,
		[]string{"pubmed:123", "456"}, cx.ListOfStringType, true)

	u := &InvalidCitationRemover{}
	assert.Empty(t, u.Update(net))
	assert.Equal(t, []string{"pubmed:123", "456"},
		net.EdgeAttribute(eid, CitationAttr).ListValue())
}

func TestCitationRemoverNegativeID(t *testing.T) {
	net := cx.NewNetwork()
	eid := net.CreateEdge(0, 1, "activates")
	net.SetEdgeAttribute(eid, CitationAttr,
		[]string{"pubmed:-100", "pubmed:5"}, cx.ListOfStringType, true)

	u := &InvalidCitationRemover{}
	issues := u.Update(net)
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "pubmed:-100")

	attr := net.EdgeAttribute(eid, CitationAttr)
	assert.Equal(t, cx.ListOfStringType, attr.Type)
	assert.Equal(t, []string{"pubmed:5"}, attr.ListValue())
}

func TestCitationRemoverPMCReplacement(t *testing.T) {
	net := cx.NewNetwork()
	eid := net.CreateEdge(0, 1, "activates")
	net.SetEdgeAttribute(eid, CitationAttr,
		[]string{"pubmed:PMC3619734"}, cx.ListOfStringType, true)

	u := &InvalidCitationRemover{}
	issues := u.Update(net)
	assert.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Replacing PMC3619734")

	assert.Equal(t, []string{"pubmed:15109499"},
		net.EdgeAttribute(eid, CitationAttr).ListValue())
}
