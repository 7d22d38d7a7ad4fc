package analysis

// Report contains aggregated views of a lint run.
type Report struct {
	// ByFile lists files with at least one diagnostic.
	ByFile []FileAnalysis `json:"byFile,omitempty"`

	// ByRule lists every rule that reported something.
	ByRule []RuleAnalysis `json:"byRule,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`
}

// Counts tallies diagnostics by severity.
type Counts struct {
	Issues   int `json:"issues"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Counts

	Files             int `json:"filesChecked"`
	FilesWithIssues   int `json:"filesWithIssues"`
	FilesFailed       int `json:"filesFailed"`
	Fixable           int `json:"fixable"`
	SyntaxErrors      int `json:"syntaxErrors"`
	VirtualFilesTotal int `json:"virtualFiles"`
}

// HasIssues returns true if there are any issues.
func (t Totals) HasIssues() bool {
	return t.Issues > 0
}

// HasErrors returns true if there are any errors.
func (t Totals) HasErrors() bool {
	return t.Errors > 0
}

// FileAnalysis contains aggregated data for a single grammar file.
type FileAnalysis struct {
	Counts

	Path  string   `json:"path"`
	Rules []string `json:"rules,omitempty"`
}

// RuleAnalysis contains aggregated data for a single host rule.
type RuleAnalysis struct {
	Counts

	RuleID  string   `json:"ruleId"`
	Source  string   `json:"source"`
	Fixable int      `json:"fixable"`
	Files   []string `json:"files,omitempty"`
}
