package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
	"github.com/noah-isme/uni-timetable-api/internal/service"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const samplePlan = `{
  "options": {"weekdays": ["MON"], "periodEnd": 12, "maxPerDay": 3},
  "candidates": [
    {"id": "sec-1", "subjectId": "math", "groupId": "cs-1", "roomId": "room-1", "hours": 2},
    {"id": "sec-2", "subjectId": "physics", "groupId": "cs-2", "roomId": "room-1", "hours": 2},
    {"id": "sec-3", "subjectId": "chem", "roomId": "room-1", "hours": 7}
  ],
  "existing": []
}`

func TestGenerateCommand(t *testing.T) {
	planPath := writeFile(t, "plan.json", samplePlan)
	outPath := filepath.Join(t.TempDir(), "result.json")

	_, err := runCLI(t, "generate", "--input", planPath, "--out", outPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result scheduler.Result
	require.NoError(t, json.Unmarshal(raw, &result))

	require.Len(t, result.Committed, 2)
	assert.Equal(t, "sec-1", result.Committed[0].CandidateID)
	assert.Equal(t, scheduler.Span{Start: 1, Size: 4}, result.Committed[0].Span)
	assert.Equal(t, scheduler.Span{Start: 5, Size: 4}, result.Committed[1].Span)
	for _, p := range result.Committed {
		assert.NotEqual(t, scheduler.GeneratedID, p.ID)
		assert.Equal(t, scheduler.Monday, p.Weekday)
	}
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "sec-3", result.Unplaced[0].CandidateID)
	assert.Equal(t, scheduler.ReasonNoFittingPeriod, result.Unplaced[0].Reason)
}

func TestGenerateCommandWritesStdout(t *testing.T) {
	planPath := writeFile(t, "plan.json", samplePlan)

	out, err := runCLI(t, "generate", "-i", planPath, "--variant", "exam")
	require.NoError(t, err)
	assert.Contains(t, out, `"committed"`)
}

func TestGenerateCommandRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "generate", "--input", writeFile(t, "plan.json", samplePlan), "--variant", "lecture")
	assert.ErrorContains(t, err, "unknown variant")

	_, err = runCLI(t, "generate", "--input", writeFile(t, "plan.json", `{"options": {"weekdays": ["someday"]}}`))
	assert.ErrorContains(t, err, "decode plan options")

	_, err = runCLI(t, "generate", "--input", writeFile(t, "plan.json", `{"options": {"periodStart": 9, "periodEnd": 3}}`))
	assert.Error(t, err)

	_, err = runCLI(t, "generate")
	assert.Error(t, err, "input flag is required")
}

func TestGridCommandCSV(t *testing.T) {
	placements := `[
  {"id": "p1", "candidateId": "sec-1", "subjectId": "math", "weekday": "MONDAY", "span": {"start": 1, "size": 4}, "roomId": "room-1"},
  {"id": "p2", "candidateId": "sec-2", "subjectId": "physics", "weekday": "MONDAY", "span": {"start": 3, "size": 2}, "roomId": "room-2"},
  {"id": "p3", "candidateId": "sec-3", "subjectId": "bio", "weekday": "SATURDAY", "span": {"start": 5, "size": 2}}
]`
	out, err := runCLI(t, "grid", "--input", writeFile(t, "placements.json", placements), "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "day,"))
	assert.Contains(t, out, "MONDAY,1,4,08:00,10:00,math,room-1,true,0")
	assert.Contains(t, out, "MONDAY,3,4,09:00,10:00,physics,room-2,true,1")
	assert.Contains(t, out, "SATURDAY,5,6,10:00,11:00,bio,,false,-1")
}

func TestGridCommandAcceptsGenerateResult(t *testing.T) {
	planPath := writeFile(t, "plan.json", samplePlan)
	resultPath := filepath.Join(t.TempDir(), "result.json")
	_, err := runCLI(t, "generate", "--input", planPath, "--out", resultPath)
	require.NoError(t, err)

	pdfPath := filepath.Join(t.TempDir(), "grid.pdf")
	_, err = runCLI(t, "grid", "--input", resultPath, "--format", "pdf", "--out", pdfPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestGridCommandRejectsUnknownFormat(t *testing.T) {
	_, err := runCLI(t, "grid", "--input", writeFile(t, "p.json", "[]"), "--format", "docx")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestTokenCommand(t *testing.T) {
	out, err := runCLI(t, "token", "--user", "ops-1", "--role", "admin", "--secret", "s3cret")
	require.NoError(t, err)

	claims, err := service.NewTokenService("s3cret").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.UserID)
	assert.EqualValues(t, "ADMIN", claims.Role)
}
