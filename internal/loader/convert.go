package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rpillich/ndexsignorloader/internal/cx"
	"github.com/rpillich/ndexsignorloader/internal/normalize"
)

// fullFileColumns is the fixed header of the whole-species data dump, which
// SIGNOR serves without a header row.
var fullFileColumns = []string{
	"entitya", "typea", "ida", "databasea",
	"entityb", "typeb", "idb", "databaseb",
	"effect", "mechanism", "residue", "sequence",
	"tax_id", "cell_data", "tissue_data",
	"modulator_complex", "target_complex",
	"modificationa", "modaseq", "modificationb", "modbseq",
	"pmid", "direct", "notes", "annotator", "sentence", "signor_id",
}

// ConvertPathwayFile reads a single-pathway relations file, which carries a
// header row, and builds a network from it using the load plan.
func ConvertPathwayFile(path string, plan *LoadPlan) (*cx.Network, error) {
	rows, err := readRows(path, nil)
	if err != nil {
		return nil, err
	}
	return convertRows(rows, plan)
}

// ConvertFullFile reads a whole-species dump, which has no header row, and
// builds a network from it.
func ConvertFullFile(path string, plan *LoadPlan) (*cx.Network, error) {
	rows, err := readRows(path, fullFileColumns)
	if err != nil {
		return nil, err
	}
	return convertRows(rows, plan)
}

// readRows parses a tab-separated file into maps keyed by upper-cased column
// name. When columns is nil the first line is taken as the header.
func readRows(path string, columns []string) ([]map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() < 10 {
		return nil, fmt.Errorf("file %s looks to be empty", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header []string
	if columns != nil {
		header = upperAll(columns)
	} else {
		if !scanner.Scan() {
			return nil, fmt.Errorf("file %s looks to be empty", path)
		}
		header = upperAll(strings.Split(scanner.Text(), "\t"))
	}

	var rows []map[string]string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

func upperAll(names []string) []string {
	upper := make([]string, len(names))
	for i, name := range names {
		upper[i] = strings.ToUpper(strings.TrimSpace(name))
	}
	return upper
}

// convertRows builds a network from parsed rows, creating one node per
// distinct participant name and one edge per row. Rows missing either
// participant name or id are skipped, matching how SIGNOR pads complex
// membership rows.
func convertRows(rows []map[string]string, plan *LoadPlan) (*cx.Network, error) {
	net := cx.NewNetwork()
	if len(plan.Context) > 0 {
		context, err := json.Marshal(plan.Context)
		if err != nil {
			return nil, fmt.Errorf("encoding load plan context: %w", err)
		}
		net.SetNetworkAttribute(normalize.ContextAttr, string(context), cx.StringType)
	}
	nodesByName := make(map[string]int64)

	makeNode := func(row map[string]string, nodePlan *NodePlan) int64 {
		name := row[strings.ToUpper(nodePlan.NodeName)]
		if id, ok := nodesByName[name]; ok {
			applyNodeColumns(net, id, row, nodePlan, false)
			return id
		}
		represents := nodePlan.IDPrefix + row[strings.ToUpper(nodePlan.IDColumn)]
		id := net.CreateNode(name, represents)
		nodesByName[name] = id
		applyNodeColumns(net, id, row, nodePlan, true)
		return id
	}

	for _, row := range rows {
		if row[strings.ToUpper(plan.SourcePlan.NodeName)] == "" ||
			row[strings.ToUpper(plan.TargetPlan.NodeName)] == "" ||
			row[strings.ToUpper(plan.SourcePlan.IDColumn)] == "" ||
			row[strings.ToUpper(plan.TargetPlan.IDColumn)] == "" {
			continue
		}
		source := makeNode(row, &plan.SourcePlan)
		target := makeNode(row, &plan.TargetPlan)

		interaction := plan.EdgePlan.DefaultPredicate
		if plan.EdgePlan.PredicateIDColumn != "" {
			if value := row[strings.ToUpper(plan.EdgePlan.PredicateIDColumn)]; value != "" {
				interaction = value
			}
		}
		edge := net.CreateEdge(source, target, interaction)
		for _, col := range plan.EdgePlan.PropertyColumns {
			if name, value, atype, ok := columnAttribute(row, col); ok {
				net.SetEdgeAttribute(edge, name, value, atype, true)
			}
		}
	}
	return net, nil
}

func applyNodeColumns(net *cx.Network, node int64, row map[string]string, nodePlan *NodePlan, overwrite bool) {
	for _, col := range nodePlan.PropertyColumns {
		if name, value, atype, ok := columnAttribute(row, col); ok {
			net.SetNodeAttribute(node, name, value, atype, overwrite)
		}
	}
}

// columnAttribute builds an attribute from one mapped column. Empty cells
// yield no attribute.
func columnAttribute(row map[string]string, col PropertyColumn) (string, any, string, bool) {
	cell := row[strings.ToUpper(col.ColumnName)]
	if cell == "" {
		return "", nil, "", false
	}
	name := col.AttributeName
	if name == "" {
		name = strings.ToLower(col.ColumnName)
	}
	if col.DataType == cx.ListOfStringType {
		parts := strings.Split(cell, ";")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if col.ValuePrefix != "" {
				parts[i] = col.ValuePrefix + ":" + parts[i]
			}
		}
		return name, parts, cx.ListOfStringType, true
	}
	if col.ValuePrefix != "" {
		cell = col.ValuePrefix + ":" + cell
	}
	return name, cell, cx.StringType, true
}
