package types

// Match identifies the condition that claimed a file.
type Match struct {
	RuleIndex      int
	RuleName       string
	ConditionIndex int
	Condition      Condition
}

// ActionKind tags a ResolvedAction.
type ActionKind int

const (
	ActionMove      ActionKind = iota // destination is free
	ActionOverwrite                   // destination exists and will be replaced
	ActionRename                      // destination exists, a timestamped sibling is used
	ActionSkip                        // destination exists and the file stays put
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionOverwrite:
		return "overwrite"
	case ActionRename:
		return "rename"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ResolvedAction is the conflict resolver's decision for one file.
type ResolvedAction struct {
	Kind        ActionKind
	Destination string // empty for ActionSkip
	Reason      string // set for ActionSkip
}

// ExecStatus is the outcome of the move executor.
type ExecStatus int

const (
	StatusMoved ExecStatus = iota
	StatusSimulated
	StatusFailed
)

func (s ExecStatus) String() string {
	switch s {
	case StatusMoved:
		return "moved"
	case StatusSimulated:
		return "simulated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecutionResult reports what the move executor did.
type ExecutionResult struct {
	Status ExecStatus
	Err    error // set when Status is StatusFailed
}

// Outcome classifies what happened to a file during a pass.
type Outcome int

const (
	OutcomeMoved     Outcome = iota // moved (live run)
	OutcomeSimulated                // would have been moved (dry run)
	OutcomeExcluded                 // directory, hidden, lock marker or ignored name
	OutcomeLocked                   // could not be opened for append
	OutcomeUnmatched                // no condition matched
	OutcomeConflict                 // destination existed and policy is skip
	OutcomeFailed                   // the move itself failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeSimulated:
		return "simulated"
	case OutcomeExcluded:
		return "excluded"
	case OutcomeLocked:
		return "locked"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OrganizeResult holds the outcome of an organization attempt for a single file
type OrganizeResult struct {
	SourcePath      string     `json:"source_path"`
	DestinationPath string     `json:"destination_path,omitempty"`
	Outcome         Outcome    `json:"outcome"`
	Action          ActionKind `json:"action"`
	RuleName        string     `json:"rule,omitempty"`
	Size            int64      `json:"size,omitempty"`
	Error           error      `json:"error,omitempty"`
}

// Processed reports whether the file counts as processed in the run summary.
func (r OrganizeResult) Processed() bool {
	return r.Outcome == OutcomeMoved || r.Outcome == OutcomeSimulated
}

// Summary aggregates the results of one organization pass.
type Summary struct {
	PassID    string `json:"pass_id"`
	DryRun    bool   `json:"dry_run"`
	Processed int    `json:"files_processed"`
	Skipped   int    `json:"files_skipped"`

	Moved       int   `json:"moved"`
	Simulated   int   `json:"simulated"`
	Renamed     int   `json:"renamed"`
	Overwritten int   `json:"overwritten"`
	Excluded    int   `json:"excluded"`
	Locked      int   `json:"locked"`
	Unmatched   int   `json:"unmatched"`
	Conflicts   int   `json:"conflicts"`
	Failed      int   `json:"failed"`
	BytesMoved  int64 `json:"bytes_moved"`
}

// Add folds one file result into the summary.
func (s *Summary) Add(r OrganizeResult) {
	if r.Processed() {
		s.Processed++
		switch r.Action {
		case ActionRename:
			s.Renamed++
		case ActionOverwrite:
			s.Overwritten++
		}
	} else {
		s.Skipped++
	}

	switch r.Outcome {
	case OutcomeMoved:
		s.Moved++
		s.BytesMoved += r.Size
	case OutcomeSimulated:
		s.Simulated++
	case OutcomeExcluded:
		s.Excluded++
	case OutcomeLocked:
		s.Locked++
	case OutcomeUnmatched:
		s.Unmatched++
	case OutcomeConflict:
		s.Conflicts++
	case OutcomeFailed:
		s.Failed++
	}
}
