package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpillich/ndexsignorloader/internal/ndex"
	"github.com/rpillich/ndexsignorloader/internal/normalize"
)

type fakeNDEx struct {
	summaries []ndex.NetworkSummary
	styleCX   []byte

	saved   [][]byte
	savedAs []string
	updated map[uuid.UUID][]byte
}

func (f *fakeNDEx) NetworkSummariesForUser(_ context.Context, _ string) ([]ndex.NetworkSummary, error) {
	return f.summaries, nil
}

func (f *fakeNDEx) NetworkAsCX(_ context.Context, _ uuid.UUID) ([]byte, error) {
	return f.styleCX, nil
}

func (f *fakeNDEx) SaveNewNetwork(_ context.Context, rawCX []byte, visibility string) error {
	f.saved = append(f.saved, rawCX)
	f.savedAs = append(f.savedAs, visibility)
	return nil
}

func (f *fakeNDEx) UpdateNetwork(_ context.Context, id uuid.UUID, rawCX []byte) error {
	if f.updated == nil {
		f.updated = make(map[uuid.UUID][]byte)
	}
	f.updated[id] = rawCX
	return nil
}

const testPlanJSON = `{
  "context": {
    "pubmed": "http://www.ncbi.nlm.nih.gov/pubmed/",
    "uniprot": "http://identifiers.org/uniprot/"
  },
  "source_plan": {
    "id_column": "IDA",
    "node_name": "ENTITYA",
    "property_columns": [
      {"column_name": "TYPEA", "attribute_name": "type"},
      {"column_name": "DATABASEA", "attribute_name": "DATABASE"},
      {"column_name": "REGULATOR_LOCATION", "attribute_name": "location"}
    ]
  },
  "target_plan": {
    "id_column": "IDB",
    "node_name": "ENTITYB",
    "property_columns": [
      {"column_name": "TYPEB", "attribute_name": "type"},
      {"column_name": "DATABASEB", "attribute_name": "DATABASE"},
      {"column_name": "TARGET_LOCATION", "attribute_name": "location"}
    ]
  },
  "edge_plan": {
    "predicate_id_column": "EFFECT",
    "property_columns": [
      {"column_name": "MECHANISM", "attribute_name": "mechanism", "data_type": "list_of_string"},
      {"column_name": "PMID", "attribute_name": "citation", "data_type": "list_of_string", "value_prefix": "pubmed"},
      {"column_name": "SENTENCE", "attribute_name": "sentence"},
      {"column_name": "DIRECT", "attribute_name": "direct"}
    ]
  }
}`

func writeTestPlan(t *testing.T) *LoadPlan {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loadplan.json")
	require.NoError(t, os.WriteFile(path, []byte(testPlanJSON), 0o644))
	plan, err := LoadLoadPlan(path)
	require.NoError(t, err)
	return plan
}

func TestLoadLoadPlanMissingFile(t *testing.T) {
	_, err := LoadLoadPlan(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestWithoutLocationColumns(t *testing.T) {
	plan := writeTestPlan(t)
	trimmed := plan.WithoutLocationColumns()

	for _, col := range trimmed.SourcePlan.PropertyColumns {
		assert.NotEqual(t, "REGULATOR_LOCATION", col.ColumnName)
	}
	for _, col := range trimmed.TargetPlan.PropertyColumns {
		assert.NotEqual(t, "TARGET_LOCATION", col.ColumnName)
	}
	// original plan keeps its columns
	assert.Len(t, plan.SourcePlan.PropertyColumns, 3)
	assert.Len(t, trimmed.SourcePlan.PropertyColumns, 2)
}

func writePathwayFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertPathwayFile(t *testing.T) {
	dir := t.TempDir()
	content := "entitya\ttypea\tida\tdatabasea\tentityb\ttypeb\tidb\tdatabaseb\teffect\tmechanism\tregulator_location\ttarget_location\tpmid\tsentence\tdirect\n" +
		"RAF1\tprotein\tP04049\tUNIPROT\tMAP2K1\tprotein\tQ02750\tUNIPROT\tup-regulates\tphosphorylation;binding\tcytoplasm\tcytoplasm\t123\tRAF1 activates MAP2K1\tt\n" +
		"\t\t\t\tMAP2K1\tprotein\tQ02750\tUNIPROT\tup-regulates\t\t\t\t\t\tt\n"
	path := writePathwayFile(t, dir, "pw.txt", content)

	plan := writeTestPlan(t)
	net, err := ConvertPathwayFile(path, plan)
	require.NoError(t, err)

	// the incomplete second row is dropped
	require.Equal(t, 2, net.NodeCount())
	require.Equal(t, 1, net.EdgeCount())

	nodes := net.Nodes()
	assert.Equal(t, "RAF1", nodes[0].Name)
	assert.Equal(t, "P04049", nodes[0].Represents)
	assert.Equal(t, "protein", net.NodeAttribute(nodes[0].ID, "type").StringValue())
	assert.Equal(t, "cytoplasm", net.NodeAttribute(nodes[0].ID, "location").StringValue())

	edge := net.Edges()[0]
	assert.Equal(t, "up-regulates", edge.Interaction)
	assert.Equal(t, []string{"phosphorylation", "binding"},
		net.EdgeAttribute(edge.ID, "mechanism").ListValue())
	assert.Equal(t, []string{"pubmed:123"},
		net.EdgeAttribute(edge.ID, "citation").ListValue())
	assert.Equal(t, "t", net.EdgeAttribute(edge.ID, "direct").StringValue())
}

func TestConvertPublishesPlanContext(t *testing.T) {
	dir := t.TempDir()
	path := writePathwayFile(t, dir, "pw.txt", pathwayRows)

	net, err := ConvertPathwayFile(path, writeTestPlan(t))
	require.NoError(t, err)

	attr := net.NetworkAttribute(normalize.ContextAttr)
	require.NotNil(t, attr)

	var context map[string]string
	require.NoError(t, json.Unmarshal([]byte(attr.StringValue()), &context))
	assert.Equal(t, "http://www.ncbi.nlm.nih.gov/pubmed/", context["pubmed"])
	assert.Equal(t, "http://identifiers.org/uniprot/", context["uniprot"])
}

func TestConvertThenCollapseLinksCitations(t *testing.T) {
	dir := t.TempDir()
	content := "entitya\ttypea\tida\tdatabasea\tentityb\ttypeb\tidb\tdatabaseb\teffect\tmechanism\tregulator_location\ttarget_location\tpmid\tsentence\tdirect\n" +
		"RAF1\tprotein\tP04049\tUNIPROT\tMAP2K1\tprotein\tQ02750\tUNIPROT\tup-regulates\tphosphorylation\tcytoplasm\tcytoplasm\t111\ts1\tt\n" +
		"RAF1\tprotein\tP04049\tUNIPROT\tMAP2K1\tprotein\tQ02750\tUNIPROT\tup-regulates\tbinding\tcytoplasm\tcytoplasm\t222\ts2\tt\n"
	path := writePathwayFile(t, dir, "pw.txt", content)

	net, err := ConvertPathwayFile(path, writeTestPlan(t))
	require.NoError(t, err)
	require.Equal(t, 2, net.EdgeCount())

	collapser := normalize.NewRedundantEdgeCollapser()
	assert.Empty(t, collapser.Update(net))
	require.Equal(t, 1, net.EdgeCount())

	base := "http://www.ncbi.nlm.nih.gov/pubmed/"
	frag111 := `<a target="_blank" href="` + base + `111">pubmed:111</a> `
	frag222 := `<a target="_blank" href="` + base + `222">pubmed:222</a> `
	edge := net.Edges()[0]
	assert.Equal(t, []string{frag111 + "s1", frag222 + " s2"},
		net.EdgeAttribute(edge.ID, "sentence").ListValue())
}

func TestConvertFullFileHasNoHeaderRow(t *testing.T) {
	dir := t.TempDir()
	fields := make([]string, len(fullFileColumns))
	fields[0] = "RAF1"
	fields[1] = "protein"
	fields[2] = "P04049"
	fields[3] = "UNIPROT"
	fields[4] = "MAP2K1"
	fields[5] = "protein"
	fields[6] = "Q02750"
	fields[7] = "UNIPROT"
	fields[8] = "up-regulates"
	path := writePathwayFile(t, dir, "full_Human.txt", strings.Join(fields, "\t")+"\n")

	plan := writeTestPlan(t)
	net, err := ConvertFullFile(path, plan.WithoutLocationColumns())
	require.NoError(t, err)
	require.Equal(t, 2, net.NodeCount())
	require.Equal(t, 1, net.EdgeCount())
	assert.Nil(t, net.NodeAttribute(net.Nodes()[0].ID, "location"))
}

func TestConvertRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writePathwayFile(t, dir, "empty.txt", "x\n")

	_, err := ConvertPathwayFile(path, writeTestPlan(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looks to be empty")
}

func TestNetworkIssueReport(t *testing.T) {
	report := NewNetworkIssueReport("Glioblastoma")
	report.AddIssues("step one", []string{"bad citation"})
	report.AddIssues("quiet step", nil)
	report.AddIssues("step two", []string{"a", "b"})
	report.AddNodeType("protein")
	report.AddNodeType("complex")
	report.AddNodeType("protein")

	assert.Equal(t, []string{"complex", "protein"}, report.NodeTypes())

	text := report.String()
	assert.True(t, strings.HasPrefix(text, "Glioblastoma\n"))
	assert.Contains(t, text, "\tstep one\n\t\tbad citation\n")
	assert.Contains(t, text, "\tstep two\n\t\ta\n\t\tb\n")
	assert.NotContains(t, text, "quiet step")
	assert.True(t, strings.Index(text, "step one") < strings.Index(text, "step two"))
}

func TestReportWithNoIssuesRendersEmpty(t *testing.T) {
	assert.Equal(t, "", NewNetworkIssueReport("clean").String())
}

func testStyleCX(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal([]map[string]any{
		{"metaData": []any{}},
		{"cyVisualProperties": []map[string]any{{"properties_of": "network"}}},
		{"status": []any{}},
	})
	require.NoError(t, err)
	return raw
}

func newTestLoader(t *testing.T, dir string, client *fakeNDEx) *Loader {
	t.Helper()
	plan := writeTestPlan(t)
	stylePath := filepath.Join(dir, "style.cx")
	require.NoError(t, os.WriteFile(stylePath, testStyleCX(t), 0o644))
	return &Loader{
		DataDir:    dir,
		Client:     client,
		Username:   "alice",
		Visibility: "PUBLIC",
		Style:      stylePath,
		IconURL:    "https://signor.uniroma2.it/img/signor_logo.png",
		Version:    "1.0.0",
		Plan:       plan,
		FullPlan:   plan.WithoutLocationColumns(),
		Pipeline:   normalize.NewPipeline(&normalize.DirectEdgeAttributeUpdator{}),
		Out:        &bytes.Buffer{},
		now:        func() time.Time { return time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC) },
	}
}

const pathwayRows = "entitya\ttypea\tida\tdatabasea\tentityb\ttypeb\tidb\tdatabaseb\teffect\tmechanism\tregulator_location\ttarget_location\tpmid\tsentence\tdirect\n" +
	"RAF1\tprotein\tP04049\tUNIPROT\tMAP2K1\tprotein\tQ02750\tUNIPROT\tup-regulates\tphosphorylation\tcytoplasm\tcytoplasm\t123\tRAF1 activates MAP2K1\tt\n"

func TestProcessPathwaySavesNewNetwork(t *testing.T) {
	dir := t.TempDir()
	writePathwayFile(t, dir, "pw1.txt", pathwayRows)
	writePathwayFile(t, dir, "pw1_desc.txt",
		"labels\tname\tdescription\tauthor\nSIGNOR-G\tGlioblastoma Multiforme\tA test pathway\tJ. Doe\n")

	client := &fakeNDEx{}
	ldr := newTestLoader(t, dir, client)
	require.NoError(t, ldr.loadNetworkSummaries(context.Background()))
	require.NoError(t, ldr.loadStyleTemplate(context.Background()))

	report, err := ldr.ProcessPathway(context.Background(), "pw1", "Glioblastoma Multiforme", false)
	require.NoError(t, err)
	require.Len(t, client.saved, 1)
	assert.Equal(t, "PUBLIC", client.savedAs[0])
	assert.Equal(t, []string{"protein"}, report.NodeTypes())

	raw := string(client.saved[0])
	assert.Contains(t, raw, `"v":"Glioblastoma Multiforme"`)
	assert.Contains(t, raw, "A test pathway")
	assert.Contains(t, raw, "J. Doe")
	assert.Contains(t, raw, "Homo Sapiens (human)")
	assert.Contains(t, raw, "Prof. Gianni Cesareni ")
	assert.Contains(t, raw, "02-Jan-2026")
	assert.Contains(t, raw, "Cancer Pathway")
	assert.Contains(t, raw, "pathway_browser.php?organism=\\u0026pathway_list=pw1")
	assert.Contains(t, raw, "cyVisualProperties")
	// direct updator ran: raw "t" became a boolean
	assert.Contains(t, raw, `"v":true`)
	assert.NotContains(t, raw, "__iconurl")
}

func TestProcessPathwayUpdatesExistingNetwork(t *testing.T) {
	dir := t.TempDir()
	writePathwayFile(t, dir, "pw2.txt", pathwayRows)
	writePathwayFile(t, dir, "pw2_desc.txt",
		"labels\tname\tdescription\tauthor\nSIGNOR-M\tMTOR Signaling\t\t\n")

	existing := uuid.New()
	client := &fakeNDEx{summaries: []ndex.NetworkSummary{
		{Name: "mTOR Signaling", ExternalID: existing},
	}}
	ldr := newTestLoader(t, dir, client)
	require.NoError(t, ldr.loadNetworkSummaries(context.Background()))
	require.NoError(t, ldr.loadStyleTemplate(context.Background()))

	_, err := ldr.ProcessPathway(context.Background(), "pw2", "MTOR Signaling", false)
	require.NoError(t, err)
	assert.Empty(t, client.saved)
	require.Contains(t, client.updated, existing)
	assert.Contains(t, string(client.updated[existing]), "Signalling Pathway")
}

func TestProcessFullPathway(t *testing.T) {
	dir := t.TempDir()
	fields := make([]string, len(fullFileColumns))
	fields[0], fields[2], fields[4], fields[6] = "RAF1", "P04049", "MAP2K1", "Q02750"
	fields[1], fields[5] = "protein", "protein"
	fields[8] = "up-regulates"
	writePathwayFile(t, dir, "full_Human.txt", strings.Join(fields, "\t")+"\n")

	client := &fakeNDEx{}
	ldr := newTestLoader(t, dir, client)
	require.NoError(t, ldr.loadNetworkSummaries(context.Background()))
	require.NoError(t, ldr.loadStyleTemplate(context.Background()))

	_, err := ldr.ProcessPathway(context.Background(), "full_Human", "Signor Complete - Human", true)
	require.NoError(t, err)
	require.Len(t, client.saved, 1)

	raw := string(client.saved[0])
	assert.Contains(t, raw, "Signor Complete - Human")
	assert.Contains(t, raw, "Homo sapiens (human)")
	assert.Contains(t, raw, "interactome")
	assert.Contains(t, raw, "__iconurl")
	assert.Contains(t, raw, "all the Human interactions currently available in SIGNOR")
	assert.NotContains(t, raw, "pathway_browser.php")
}

func TestRunProcessesEveryPathwayAndReports(t *testing.T) {
	dir := t.TempDir()
	writePathwayFile(t, dir, "pw1.txt", pathwayRows)
	writePathwayFile(t, dir, "pw1_desc.txt",
		"labels\tname\tdescription\tauthor\nSIGNOR-G\tGlioblastoma Multiforme\tdesc\tauthor\n")
	fields := make([]string, len(fullFileColumns))
	fields[0], fields[2], fields[4], fields[6] = "A", "1", "B", "2"
	fields[1], fields[5] = "protein", "smallmolecule"
	fields[8] = "down-regulates"
	for _, organism := range []string{"Human", "Mouse", "Rat"} {
		writePathwayFile(t, dir, "full_"+organism+".txt", strings.Join(fields, "\t")+"\n")
	}

	client := &fakeNDEx{}
	ldr := newTestLoader(t, dir, client)
	ldr.Pathways = map[string]string{"pw1": "Glioblastoma Multiforme"}
	out := &bytes.Buffer{}
	ldr.Out = out

	require.NoError(t, ldr.Run(context.Background()))
	assert.Len(t, client.saved, 4)
	text := out.String()
	assert.Contains(t, text, "Node Types Found in all networks:")
	assert.Contains(t, text, "\tprotein\n")
	assert.Contains(t, text, "\tsmallmolecule\n")
}

func TestRunSkipsFailingPathway(t *testing.T) {
	dir := t.TempDir()
	// no files for the broken pathway, but the full networks exist
	fields := make([]string, len(fullFileColumns))
	fields[0], fields[2], fields[4], fields[6] = "A", "1", "B", "2"
	fields[8] = "up-regulates"
	for _, organism := range []string{"Human", "Mouse", "Rat"} {
		writePathwayFile(t, dir, "full_"+organism+".txt", strings.Join(fields, "\t")+"\n")
	}

	client := &fakeNDEx{}
	ldr := newTestLoader(t, dir, client)
	ldr.Pathways = map[string]string{"missing": "Missing Pathway"}
	ldr.Out = &bytes.Buffer{}

	require.NoError(t, ldr.Run(context.Background()))
	assert.Len(t, client.saved, 3)
}

func TestLoadStyleTemplateFromRawDocument(t *testing.T) {
	ldr := &Loader{Client: &fakeNDEx{}, StyleCX: testStyleCX(t)}

	require.NoError(t, ldr.loadStyleTemplate(context.Background()))
	assert.NotNil(t, ldr.style)
}

func TestLoadStyleTemplateFromServerUUID(t *testing.T) {
	client := &fakeNDEx{styleCX: testStyleCX(t)}
	ldr := &Loader{Client: client, Style: uuid.NewString()}

	require.NoError(t, ldr.loadStyleTemplate(context.Background()))
	assert.NotNil(t, ldr.style)
}

func TestLoadStyleTemplateRejectsBogusValue(t *testing.T) {
	ldr := &Loader{Client: &fakeNDEx{}, Style: "not-a-file-or-uuid"}
	require.Error(t, ldr.loadStyleTemplate(context.Background()))
}
