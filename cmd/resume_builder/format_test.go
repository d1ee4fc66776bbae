package main

import (
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateCommand(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"month year", []string{"format-date", "2024-03"}, "Mar 2024"},
		{"year mode", []string{"format-date", "2024-03", "--mode", "year"}, "2024"},
		{"open range", []string{"format-date", "2020-01", ""}, "Jan 2020 - Present"},
		{"raw fallback", []string{"format-date", "not-a-date"}, "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := exec.Command(binaryPath, tt.args...).CombinedOutput()
			require.NoError(t, err, string(output))
			assert.Equal(t, tt.want, strings.TrimSpace(string(output)))
		})
	}
}

func TestFormatDateCommand_UnknownMode(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "format-date", "2024-03", "--mode", "weekday").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "unknown date mode")
}

func TestFormatLinkCommand(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "format-link", "github.com/foo", "--fallback", "GitHub").CombinedOutput()

	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), `"href": "https://github.com/foo"`)
	assert.Contains(t, string(output), `"label": "github.com/foo"`)
}

func TestFormatLinkCommand_Blank(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "format-link", "   ").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "link is blank")
}

func TestCategorizeCommand(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "categorize", "--skills", "Python, Docker, Mysql").CombinedOutput()

	require.NoError(t, err, string(output))
	assert.Equal(t,
		"Languages: Python\nDatabases: Mysql\nTools & Technologies: Docker\n",
		string(output))
}

func TestCategorizeCommand_MissingSkills(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "categorize").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"skills\" not set")
}

func TestReviewCommand_MissingInputFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "review").CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"in\" not set")
}
