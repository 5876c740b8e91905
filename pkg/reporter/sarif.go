package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/runner"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

const (
	toolName = "mdlinks"
	toolURI  = "https://github.com/yaklabco/mdlinks"
)

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes one validator.
type SARIFRule struct {
	ID               string               `json:"id"`
	Name             string               `json:"name,omitempty"`
	ShortDescription SARIFMultiformatText `json:"shortDescription"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID     string          `json:"ruleId"`
	RuleIndex  int             `json:"ruleIndex"`
	Level      string          `json:"level"`
	Message    SARIFMessage    `json:"message"`
	Locations  []SARIFLocation `json:"locations"`
	Properties map[string]any  `json:"properties,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
	ByteOffset  int `json:"byteOffset,omitempty"`
	ByteLength  int `json:"byteLength,omitempty"`
}

// SARIFReporter formats results as SARIF.
type SARIFReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	return len(output.Runs[0].Results), nil
}

func (r *SARIFReporter) buildOutput(result *runner.Result) *SARIFOutput {
	version := r.opts.ToolVersion
	if version == "" {
		version = "dev"
	}

	rules, index := r.rules()
	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:           toolName,
				Version:        version,
				InformationURI: toolURI,
				Rules:          rules,
			},
		},
		Results: make([]SARIFResult, 0),
	}

	if result != nil {
		for _, file := range result.Files {
			for _, diag := range file.Diagnostics() {
				idx, ok := index[diag.Validator]
				if !ok {
					// Validators outside the registry still get a rule.
					idx = len(run.Tool.Driver.Rules)
					index[diag.Validator] = idx
					run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SARIFRule{
						ID:               diag.Validator,
						Name:             diag.Validator,
						ShortDescription: SARIFMultiformatText{Text: diag.Validator},
					})
				}
				run.Results = append(run.Results, r.toResult(diag, idx))
			}
		}
	}

	return &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs:    []SARIFRun{run},
	}
}

// rules lists every registered validator in registration order.
func (r *SARIFReporter) rules() ([]SARIFRule, map[string]int) {
	registry := r.opts.Registry
	if registry == nil {
		registry = lint.DefaultRegistry
	}

	validators := registry.Validators()
	rules := make([]SARIFRule, 0, len(validators))
	index := make(map[string]int, len(validators))
	for _, v := range validators {
		index[v.Name()] = len(rules)
		rules = append(rules, SARIFRule{
			ID:               v.Name(),
			Name:             v.Name(),
			ShortDescription: SARIFMultiformatText{Text: v.Description()},
			DefaultConfig:    &SARIFRuleConfig{Level: severityToSARIFLevel(v.DefaultSeverity())},
		})
	}
	return rules, index
}

func (r *SARIFReporter) toResult(diag lint.Diagnostic, ruleIndex int) SARIFResult {
	location := SARIFPhysicalLocation{
		ArtifactLocation: SARIFArtifactLocation{
			URI: filepath.ToSlash(displayPath(diag.File, r.opts.WorkingDir)),
		},
	}
	if diag.HasPosition() {
		region := &SARIFRegion{
			StartLine:   diag.Line,
			StartColumn: diag.Column,
			EndLine:     diag.EndLine,
			EndColumn:   diag.EndColumn,
		}
		if diag.Offsets != nil {
			region.ByteOffset = diag.Offsets.Start
			region.ByteLength = diag.Offsets.Len()
		}
		location.Region = region
	}

	res := SARIFResult{
		RuleID:    diag.Validator,
		RuleIndex: ruleIndex,
		Level:     severityToSARIFLevel(diag.Severity),
		Message:   SARIFMessage{Text: diag.Message},
		Locations: []SARIFLocation{{PhysicalLocation: location}},
		Properties: map[string]any{
			"kind": string(diag.Kind),
		},
	}
	if diag.Suggestion != "" {
		res.Properties["suggestion"] = diag.Suggestion
	}
	return res
}

// severityToSARIFLevel converts a severity to a SARIF level.
func severityToSARIFLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	case config.SeverityWarning:
		return "warning"
	case config.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
