package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jetprop/internal/trace"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRun_Text(t *testing.T) {
	out, err := execute(t, "run", filepath.Join("testdata", "expgrowth.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "program: expgrowth\n")
	assert.Contains(t, out, "order: 1\n")
	assert.Contains(t, out, "output y shape=[2]\n")
	assert.Contains(t, out, "  primal: 1 2.718281828459045\n")
	assert.Contains(t, out, "  series[0]: 1 2.718281828459045\n")
	assert.NotContains(t, out, "call:")
}

func TestRun_JSON(t *testing.T) {
	out, err := execute(t, "run", "--format", "json", filepath.Join("testdata", "expgrowth.yaml"))
	require.NoError(t, err)

	var report struct {
		Program string `json:"program"`
		Hash    string `json:"hash"`
		Order   int    `json:"order"`
		Outputs []struct {
			Name   string      `json:"name"`
			Shape  []int       `json:"shape"`
			Primal []float64   `json:"primal"`
			Series [][]float64 `json:"series"`
		} `json:"outputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "expgrowth", report.Program)
	assert.NotEmpty(t, report.Hash)
	assert.Equal(t, 1, report.Order)
	require.Len(t, report.Outputs, 1)
	assert.Equal(t, "y", report.Outputs[0].Name)
	assert.Equal(t, []int{2}, report.Outputs[0].Shape)
	require.Len(t, report.Outputs[0].Series, 1)
	assert.InDelta(t, 2.718281828459045, report.Outputs[0].Primal[1], 1e-12)
}

func TestRun_RecordsTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Database:    db,
		Tokens:      trace.NewFixedGenerator("call-test"),
	}
	require.NoError(t, runProgram(opts, filepath.Join("testdata", "expgrowth.yaml"), cmd))
	assert.Contains(t, buf.String(), "call: call-test\n")

	out, err := execute(t, "trace", db)
	require.NoError(t, err)
	assert.Contains(t, out, "[call-test #1] exp order=1 in=[[2]] out=[2]\n")
	assert.Contains(t, out, "1 applications\n")

	out, err = execute(t, "trace", "--call", "no-such-token", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 applications\n")
}

func TestRun_MissingProgram(t *testing.T) {
	_, err := execute(t, "run", filepath.Join("testdata", "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_PropagationFailure(t *testing.T) {
	_, err := execute(t, "run", filepath.Join("testdata", "tanh.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorContains(t, err, "propagation failed")
}

func TestValidate_Text(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "expgrowth.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "program expgrowth is valid\n")
	assert.Contains(t, out, "  inputs: 1\n")
	assert.Contains(t, out, "  steps: 1\n")
	assert.Contains(t, out, "  order: 1\n")
}

func TestValidate_JSON(t *testing.T) {
	out, err := execute(t, "validate", "--format", "json", filepath.Join("testdata", "expgrowth.yaml"))
	require.NoError(t, err)

	var report validateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, "expgrowth", report.Program)
}

func TestValidate_InvalidProgram(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join("testdata", "badarity.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorContains(t, err, "add expects 2 operands")
}

func TestTest_Pass(t *testing.T) {
	out, err := execute(t, "test", filepath.Join("testdata", "expgrowth-pass.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS expgrowth-pass\n")
	assert.Contains(t, out, "1 scenarios, 0 failed\n")
}

func TestTest_Fail(t *testing.T) {
	out, err := execute(t, "test",
		filepath.Join("testdata", "expgrowth-pass.yaml"),
		filepath.Join("testdata", "expgrowth-fail.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PASS expgrowth-pass\n")
	assert.Contains(t, out, "FAIL expgrowth-fail\n")
	assert.Contains(t, out, "2 scenarios, 1 failed\n")
}

func TestTest_JSONReport(t *testing.T) {
	out, err := execute(t, "test", "--format", "json",
		filepath.Join("testdata", "expgrowth-fail.yaml"))
	require.Error(t, err)

	var reports []scenarioReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Passed)
	assert.Contains(t, reports[0].Error, "expgrowth-fail")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "validate", "--format", "xml", filepath.Join("testdata", "expgrowth.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad input")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "failed", errors.New("inner"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
