package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	session := NewJsonLinesLogRecorder(&buf).NewSession()

	events := []LogType{
		&RunCommand{Command: []string{"cat", "f"}, ResolvedCommandPath: "/bin/cat"},
		&RunCommand{Command: []string{"echo", "hi"}, Builtin: true},
		&UnknownCommand{Command: []string{"nope"}},
		&StageFailure{Command: []string{"cat"}, Error: "broken"},
		&PipelineExit{Stages: 2, Status: 0},
		&PipelineExit{Stages: 1, Status: 127},
		&SyntaxError{Line: "echo 'a", Error: "unterminated quote"},
	}
	for _, ev := range events {
		require.NoError(t, session.Record(ev))
	}

	var report Report
	require.NoError(t, ReadJSONLinesLog(&buf, report.Update))

	assert.Equal(t, len(events), report.LogEntries)
	assert.Equal(t, 1, report.Sessions)
	assert.Equal(t, 0, report.InvalidEntries)
	assert.Equal(t, 1, report.RunCommand.Builtins)
	assert.Equal(t, 1, report.RunCommand.ResolvedCommandPaths.Get("/bin/cat"))
	assert.Equal(t, 1, report.RunCommand.CommandNames.Get("echo"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Get("nope"))
	assert.Equal(t, 2, report.PipelineExit.Pipelines)
	assert.Equal(t, 1, report.PipelineExit.Statuses.Get("127"))
	assert.Equal(t, 1, report.SyntaxErrors.Get("unterminated quote"))

	out, err := json.Marshal(&report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"event":{"command":"cat","error":"broken"}`)
}

func TestJSONLinesRecorder_ProtoJSON(t *testing.T) {
	var buf bytes.Buffer
	session := NewJsonLinesLogRecorder(&buf).NewSession()
	require.NoError(t, session.Record(&PipelineExit{Stages: 3, Status: 141}))

	line := bytes.TrimSpace(buf.Bytes())
	assert.NotContains(t, string(line), "\n")

	var msg structpb.Struct
	require.NoError(t, protojson.Unmarshal(line, &msg))
	exit := msg.Fields["pipeline_exit"].GetStructValue()
	require.NotNil(t, exit)
	assert.Equal(t, 3.0, exit.Fields["stages"].GetNumberValue())
	assert.Equal(t, 141.0, exit.Fields["status"].GetNumberValue())
	assert.NotEmpty(t, msg.Fields["session_id"].GetStringValue())

	var le LogEntry
	require.NoError(t, json.Unmarshal(line, &le))
	require.NotNil(t, le.PipelineExit)
	assert.Equal(t, PipelineExit{Stages: 3, Status: 141}, *le.PipelineExit)
	assert.Positive(t, le.TimestampMicros)
}

func TestReport_InvalidEntry(t *testing.T) {
	var report Report
	require.NoError(t, ReadJSONLinesLog(bytes.NewBufferString(`{"timestamp_micros":1}`+"\n"), report.Update))

	assert.Equal(t, 1, report.LogEntries)
	assert.Equal(t, 1, report.InvalidEntries)
	assert.Equal(t, 0, report.Sessions)
}
