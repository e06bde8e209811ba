// Package normalize contains the graph normalization pipeline: a set of
// updators that each mutate a network in place and report data-quality
// problems as issue strings rather than errors.
package normalize

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/rpillich/ndexsignorloader/internal/cx"
)

// networkIsNil is the issue every updator reports for a nil network.
const networkIsNil = "network is None"

// Updator mutates a network in place. Data-quality anomalies are returned as
// issue strings; an updator never fails outright for bad data. A nil network
// yields a single descriptive issue and no mutation.
type Updator interface {
	// Description is a human readable label used to key issues in reports.
	Description() string
	Update(net *cx.Network) []string
}

// Result holds the issues one updator produced, keyed by its description.
type Result struct {
	Description string
	Issues      []string
}

// Pipeline runs updators in order over a single network. Each updator call is
// isolated: a panicking updator is reported as an issue and the remaining
// updators still run.
type Pipeline struct {
	updators []Updator
}

func NewPipeline(updators ...Updator) *Pipeline {
	return &Pipeline{updators: updators}
}

func (p *Pipeline) Run(net *cx.Network) []Result {
	results := make([]Result, 0, len(p.updators))
	for _, u := range p.updators {
		results = append(results, Result{
			Description: u.Description(),
			Issues:      runIsolated(u, net),
		})
	}
	return results
}

func runIsolated(u Updator, net *cx.Network) (issues []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("updator failed", "updator", u.Description(), "panic", r)
			issues = append(issues, fmt.Sprintf("updator failed: %v", r))
		}
	}()
	return u.Update(net)
}
