package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(args []string, stdin string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "script.dx")
	require.NoError(t, os.WriteFile(name, []byte(src), 0644))
	return name
}

func TestRunExpression(t *testing.T) {
	code, out, _ := runCLI([]string{"-e", "1+2"}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "3\n", out)

	code, out, _ = runCLI([]string{"-e", `"a" . StrLen("xyz")`}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a3\n", out)

	code, _, errOut := runCLI([]string{"-e", "(1"}, "")
	assert.Equal(t, ERR_EVAL, code)
	assert.NotEmpty(t, errOut)
}

func TestRunExitCodes(t *testing.T) {
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("float_format: \"%q\"\n"), 0644))

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  int
	}{
		{"version", []string{"-v"}, "", 0},
		{"unknown flag", []string{"-nope"}, "", ERR_FATAL},
		{"bad config", []string{"-c", badConfig, "-e", "1"}, "", ERR_CONFIG},
		{"missing script", []string{"-f", filepath.Join(t.TempDir(), "absent.dx")}, "", ERR_FILE},
		{"watch without script", []string{"-w"}, "", ERR_FATAL},
		{"syntax error", []string{"-f", writeScript(t, "x := (1\n")}, "", ERR_SYNTAX},
		{"unknown function", []string{"-f", writeScript(t, "x := NoSuchFunc(1)\n")}, "", ERR_SYNTAX},
		{"runtime error", []string{"-f", writeScript(t, "x := 1 +\n")}, "", ERR_EVAL},
		{"stdin script", nil, "y := 2\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(tt.args, tt.stdin)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunScriptOutput(t *testing.T) {
	name := writeScript(t, "Echo hi\nn := 6 * 7\nEcho %n%\n")
	code, out, _ := runCLI([]string{"-f", name}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi\n42\n", out)

	code, out, _ = runCLI(nil, "Echo from stdin\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "from stdin\n", out)
}

func TestRunListFunctions(t *testing.T) {
	code, out, _ := runCLI([]string{"-l"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "StrLen(")
	assert.Contains(t, out, "SubStr(")
}
