package logger

// LogEntry is one line of the event log. Exactly one event field is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	StageFailure   *StageFailure   `json:"stage_failure,omitempty"`
	PipelineExit   *PipelineExit   `json:"pipeline_exit,omitempty"`
	SyntaxError    *SyntaxError    `json:"syntax_error,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	setOn(le *LogEntry)
}

// RunCommand is logged for every builtin or external stage that is started.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path,omitempty"`
	Builtin             bool     `json:"builtin,omitempty"`
}

// UnknownCommand is logged for stages whose name could not be resolved.
type UnknownCommand struct {
	Command []string `json:"command"`
}

// StageFailure is logged when a stage could not be spawned or its output
// could not be forwarded.
type StageFailure struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// PipelineExit is logged once a pipeline's last stage finished.
type PipelineExit struct {
	Stages int `json:"stages"`
	Status int `json:"status"`
}

// SyntaxError is logged for lines that could not be parsed or built.
type SyntaxError struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

func (e *RunCommand) setOn(le *LogEntry)     { le.RunCommand = e }
func (e *UnknownCommand) setOn(le *LogEntry) { le.UnknownCommand = e }
func (e *StageFailure) setOn(le *LogEntry)   { le.StageFailure = e }
func (e *PipelineExit) setOn(le *LogEntry)   { le.PipelineExit = e }
func (e *SyntaxError) setOn(le *LogEntry)    { le.SyntaxError = e }
