package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rpillich/ndexsignorloader/internal/cx"
	"github.com/rpillich/ndexsignorloader/internal/ndex"
	"github.com/rpillich/ndexsignorloader/internal/normalize"
)

const (
	iconURLAttr              = "__iconurl"
	notesAttr                = "notes"
	generatedByAttr          = "prov:wasGeneratedBy"
	derivedFromAttr          = "prov:wasDerivedFrom"
	normalizationVersionAttr = "__normalizationversion"
	visualPropertiesAspect   = "cyVisualProperties"

	signorSiteURL = "https://signor.uniroma2.it"
)

// diseasePathways and cancerPathways are the networks whose networkType gets
// a disease or cancer label instead of the plain signalling one.
var diseasePathways = []string{
	"ALZHEIMER DISEASE", "FSGS", "NOONAN SYNDROME", "PARKINSON DISEASE",
}

var cancerPathways = []string{
	"ACUTE MYELOID LEUKEMIA", "COLORECTAL CARCINOMA",
	"GLIOBLASTOMA MULTIFORME", "LUMINAL BREAST CANCER",
	"MALIGNANT MELANOMA", "PROSTATE CANCER",
	"RHABDOMYOSARCOMA", "THYROID CANCER",
}

// NDExClient is the slice of the NDEx API the loader needs.
type NDExClient interface {
	NetworkSummariesForUser(ctx context.Context, user string) ([]ndex.NetworkSummary, error)
	NetworkAsCX(ctx context.Context, id uuid.UUID) ([]byte, error)
	SaveNewNetwork(ctx context.Context, rawCX []byte, visibility string) error
	UpdateNetwork(ctx context.Context, id uuid.UUID, rawCX []byte) error
}

// Loader converts every downloaded SIGNOR pathway into a network, runs the
// normalization pipeline over it, and saves it to NDEx. Networks whose name
// already exists under the account are updated in place.
type Loader struct {
	DataDir      string
	Client       NDExClient
	Username     string
	Visibility   string
	Style        string // CX file path, or NDEx UUID of a style network
	StyleCX      []byte // raw CX style document; takes precedence over Style
	IconURL      string
	Version      string
	EdgeCollapse bool

	Plan     *LoadPlan
	FullPlan *LoadPlan
	Pipeline *normalize.Pipeline

	// Pathways maps SIGNOR pathway ids to pathway names.
	Pathways map[string]string

	Out io.Writer

	summaries map[string]uuid.UUID
	style     json.RawMessage
	now       func() time.Time
}

// Run processes every pathway plus the three full species networks and writes
// the issue report for the whole run to Out. A pathway that fails is logged
// and skipped; Run only fails outright when the account listing or style
// template cannot be loaded.
func (l *Loader) Run(ctx context.Context) error {
	if l.Out == nil {
		l.Out = os.Stdout
	}
	if l.now == nil {
		l.now = time.Now
	}
	if err := l.loadNetworkSummaries(ctx); err != nil {
		return err
	}
	if err := l.loadStyleTemplate(ctx); err != nil {
		return err
	}

	ids := make([]string, 0, len(l.Pathways))
	for id := range l.Pathways {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var reports []*NetworkIssueReport
	for _, id := range ids {
		name := l.Pathways[id]
		log.Info("Processing " + id + " => " + name)
		report, err := l.ProcessPathway(ctx, id, name, false)
		if err != nil {
			log.Error("Unable to load pathway: "+id+" => "+name, "err", err)
			continue
		}
		reports = append(reports, report)
	}

	for _, organism := range []string{"Human", "Mouse", "Rat"} {
		name := "Signor Complete - " + organism
		log.Info("Processing full " + name)
		report, err := l.ProcessPathway(ctx, "full_"+organism, name, true)
		if err != nil {
			log.Error("Unable to load pathway: full_"+organism+".txt", "err", err)
			continue
		}
		reports = append(reports, report)
	}

	nodeTypes := make(map[string]struct{})
	for _, report := range reports {
		for _, nodeType := range report.NodeTypes() {
			nodeTypes[nodeType] = struct{}{}
		}
		io.WriteString(l.Out, report.String())
	}
	io.WriteString(l.Out, "Node Types Found in all networks:\n")
	types := make([]string, 0, len(nodeTypes))
	for t := range nodeTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		io.WriteString(l.Out, "\t"+t+"\n")
	}
	return nil
}

// ProcessPathway loads one pathway file, normalizes it and stores it on the
// server. The returned report holds every issue the pipeline raised.
func (l *Loader) ProcessPathway(ctx context.Context, pathwayID, pathwayName string, isFull bool) (*NetworkIssueReport, error) {
	path := filepath.Join(l.DataDir, pathwayID+".txt")
	var net *cx.Network
	var err error
	if isFull {
		net, err = ConvertFullFile(path, l.FullPlan)
	} else {
		net, err = ConvertPathwayFile(path, l.Plan)
	}
	if err != nil {
		return nil, err
	}

	report := NewNetworkIssueReport(pathwayName)
	if err := l.addPathwayInfo(net, pathwayID, pathwayName, isFull); err != nil {
		return nil, err
	}

	if l.Pipeline != nil {
		for _, result := range l.Pipeline.Run(net) {
			report.AddIssues(result.Description, result.Issues)
		}
	}

	if l.style != nil {
		net.SetOpaqueAspect(visualPropertiesAspect, l.style)
	}

	for _, node := range net.Nodes() {
		if attr := net.NodeAttribute(node.ID, "type"); attr != nil {
			report.AddNodeType(attr.StringValue())
		}
	}

	rawCX, err := ndex.MarshalCX(net)
	if err != nil {
		return nil, err
	}
	if existing, ok := l.summaries[strings.ToUpper(net.Name())]; ok {
		if err := l.Client.UpdateNetwork(ctx, existing, rawCX); err != nil {
			return nil, err
		}
	} else {
		if err := l.Client.SaveNewNetwork(ctx, rawCX, l.Visibility); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// loadNetworkSummaries indexes the account's networks by upper-cased name so
// reruns update networks in place instead of duplicating them.
func (l *Loader) loadNetworkSummaries(ctx context.Context) error {
	summaries, err := l.Client.NetworkSummariesForUser(ctx, l.Username)
	if err != nil {
		return err
	}
	l.summaries = make(map[string]uuid.UUID, len(summaries))
	for _, summary := range summaries {
		if summary.Name == "" {
			continue
		}
		l.summaries[strings.ToUpper(summary.Name)] = summary.ExternalID
	}
	return nil
}

// loadStyleTemplate reads the visual style aspect from the StyleCX document
// when one is given, otherwise from the CX file named by Style, or, when no
// such file exists, from the NDEx network with that UUID.
func (l *Loader) loadStyleTemplate(ctx context.Context) error {
	if l.StyleCX == nil && l.Style == "" {
		return nil
	}
	rawCX := l.StyleCX
	if rawCX == nil {
		var err error
		rawCX, err = l.readStyleDocument(ctx)
		if err != nil {
			return err
		}
	}
	aspect, err := ndex.ExtractAspect(rawCX, visualPropertiesAspect)
	if err != nil {
		return err
	}
	if aspect == nil {
		return fmt.Errorf("style template %s has no %s aspect", l.Style, visualPropertiesAspect)
	}
	l.style = aspect
	return nil
}

func (l *Loader) readStyleDocument(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(l.Style); err == nil {
		rawCX, err := os.ReadFile(l.Style)
		if err != nil {
			return nil, fmt.Errorf("reading style template: %w", err)
		}
		return rawCX, nil
	}
	id, err := uuid.Parse(l.Style)
	if err != nil {
		return nil, fmt.Errorf("%s was not found on the filesystem so it was assumed to be a NDEx UUID, but it is not one either", l.Style)
	}
	rawCX, err := l.Client.NetworkAsCX(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("downloading style template: %w", err)
	}
	return rawCX, nil
}

// addPathwayInfo sets the name, description and provenance attributes every
// uploaded network carries.
func (l *Loader) addPathwayInfo(net *cx.Network, pathwayID, pathwayName string, isFull bool) error {
	isHumanFull := false
	if isFull {
		net.SetName(pathwayName)
		organism := "Unknown"
		switch {
		case strings.Contains(pathwayID, "Human"):
			organism = "Human"
			isHumanFull = true
			net.SetNetworkAttribute("organism", "Homo sapiens (human)", cx.StringType)
		case strings.Contains(pathwayID, "Rat"):
			organism = "Rat"
			net.SetNetworkAttribute("organism", "Rattus norvegicus (rat)", cx.StringType)
		case strings.Contains(pathwayID, "Mouse"):
			organism = "Mouse"
			net.SetNetworkAttribute("organism", "Mus musculus (mouse)", cx.StringType)
		default:
			log.Error("No matching organism found for: " + pathwayID)
		}
		net.SetNetworkAttribute("description",
			"This network contains all the "+organism+
				" interactions currently available in SIGNOR", cx.StringType)
	} else {
		row, err := readDescriptionRow(filepath.Join(l.DataDir, pathwayID+"_desc.txt"))
		if err != nil {
			return err
		}
		if len(row) > 1 && row[1] != "" {
			net.SetName(row[1])
		}
		if len(row) > 0 && row[0] != "" {
			net.SetNetworkAttribute("labels", []string{row[0]}, cx.ListOfStringType)
		}
		if len(row) > 3 && row[3] != "" {
			net.SetNetworkAttribute("author", row[3], cx.StringType)
		}
		if len(row) > 2 && row[2] != "" {
			net.SetNetworkAttribute("description", row[2], cx.StringType)
		}
		net.SetNetworkAttribute("organism", "Homo Sapiens (human)", cx.StringType)
	}

	net.SetNetworkAttribute("rightsHolder", "Prof. Gianni Cesareni ", cx.StringType)
	net.SetNetworkAttribute("rights",
		"Attribution-ShareAlike 4.0 International (CC BY-SA 4.0)", cx.StringType)
	net.SetNetworkAttribute("reference",
		`<div>Perfetto L., <i>et al.</i></div>`+
			`<div><b>SIGNOR: a database of causal relationships between biological `+
			`entities</b><i>.</i></div><div>Nucleic Acids Res. 2016 Jan 4;44(D1):D548-54`+
			`</div><div><span><a href="\&#34;https://doi.org/10.1093/nar/gkv1048\&#34;" `+
			`target="\&#34;\&#34;">doi: 10.1093/nar/gkv1048</a></span></div>`, cx.StringType)
	net.SetNetworkAttribute("version", l.now().Format("02-Jan-2006"), cx.StringType)

	setNetworkType(net, isHumanFull)

	if isFull {
		net.SetNetworkAttribute(iconURLAttr, l.IconURL, cx.StringType)
	}
	net.SetNetworkAttribute(generatedByAttr,
		`<a href="https://github.com/ndexcontent/ndexsignorloader">ndexsignorloader `+
			l.Version+`</a>`, cx.StringType)
	net.SetNetworkAttribute(normalizationVersionAttr, "0.1", cx.StringType)

	derivedFrom := signorSiteURL
	if !isFull {
		derivedFrom += "/pathway_browser.php?organism=&pathway_list=" + pathwayID
	}
	net.SetNetworkAttribute(derivedFromAttr, derivedFrom, cx.StringType)

	if l.EdgeCollapse {
		net.SetNetworkAttribute(notesAttr,
			"Edges have been collapsed with attributes converted to lists with"+
				" exception of direct attribute", cx.StringType)
	}
	return nil
}

// setNetworkType labels the network as a disease, cancer or signalling
// pathway based on its name. The full human network is also an interactome.
func setNetworkType(net *cx.Network, isHumanFull bool) {
	var typedata []string
	if isHumanFull {
		typedata = append(typedata, "interactome")
	}
	typedata = append(typedata, "pathway")

	name := strings.ToUpper(net.Name())
	switch {
	case slices.Contains(diseasePathways, name):
		typedata = append(typedata, "Disease Pathway")
	case slices.Contains(cancerPathways, name):
		typedata = append(typedata, "Cancer Pathway")
	default:
		typedata = append(typedata, "Signalling Pathway")
	}
	net.SetNetworkAttribute("networkType", typedata, cx.ListOfStringType)
}

// readDescriptionRow returns the first data row of a pathway description
// file: labels, name, description and author columns in that order.
func readDescriptionRow(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s file missing: %w", path, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	return nil, fmt.Errorf("%s has no pathway description row", path)
}
