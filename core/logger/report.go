package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int `json:"log_entries"`
	InvalidEntries int `json:"invalid_entries,omitempty"`
	Sessions       int `json:"sessions"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	StageFailure   StageFailureReport   `json:"stage_failure_report"`
	PipelineExit   PipelineExitReport   `json:"pipeline_exit_report"`
	SyntaxErrors   StrCounter           `json:"syntax_errors"`

	sessions map[string]bool
}

// Update folds one entry into the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	if le.SessionID != "" {
		if r.sessions == nil {
			r.sessions = make(map[string]bool)
		}
		if !r.sessions[le.SessionID] {
			r.sessions[le.SessionID] = true
			r.Sessions++
		}
	}

	switch {
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.UnknownCommand != nil:
		r.UnknownCommand.update(le.UnknownCommand)
	case le.StageFailure != nil:
		r.StageFailure.update(le.StageFailure)
	case le.PipelineExit != nil:
		r.PipelineExit.update(le.PipelineExit)
	case le.SyntaxError != nil:
		r.SyntaxErrors.Increment(le.SyntaxError.Error)
	default:
		r.InvalidEntries++
	}
}

type RunCommandReport struct {
	// Paths of resolved external commands.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Names of commands as typed.
	CommandNames StrCounter `json:"command_names"`
	Builtins     int        `json:"builtins"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if rc.Builtin {
		r.Builtins++
	} else {
		r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	}
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Command) > 0 {
		r.CommandNames.Increment(uc.Command[0])
	}
}

type StageFailureReport struct {
	Failures *PathCounter `json:"failures"`
}

func (r *StageFailureReport) update(sf *StageFailure) {
	if r.Failures == nil {
		r.Failures = NewPathCounter("command", "error")
	}
	name := ""
	if len(sf.Command) > 0 {
		name = sf.Command[0]
	}
	r.Failures.Increment(name, sf.Error)
}

type PipelineExitReport struct {
	Pipelines int        `json:"pipelines"`
	Statuses  StrCounter `json:"statuses"`
	// Stage counts of the pipelines that ran.
	Lengths StrCounter `json:"lengths"`
}

func (r *PipelineExitReport) update(pe *PipelineExit) {
	r.Pipelines++
	r.Statuses.Increment(strconv.Itoa(pe.Status))
	r.Lengths.Increment(strconv.Itoa(pe.Stages))
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
