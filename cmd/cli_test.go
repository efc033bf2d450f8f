package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeConfig points data.path at a year of Chicago/rock history and returns the config file.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("BIT_event_date,venue_city,genre,venue_score\n")
	for day := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC); day.Before(time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC)); day = day.AddDate(0, 0, 1) {
		score := 0.4
		if day.Weekday() == time.Friday {
			score = 0.7
		}
		fmt.Fprintf(&b, "%s,Chicago,rock,%.2f\n", day.Format("2006-01-02"), score)
	}
	dataPath := filepath.Join(dir, "merged_data.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(b.String()), 0o644))

	configPath := filepath.Join(dir, "gigcast.yaml")
	content := fmt.Sprintf("data:\n  path: %s\nredis:\n  password: hunter2\n", dataPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestConfigView(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "config", "view", "--config", writeConfig(t))
	require.NoError(t, err)

	assert.Contains(t, output, "forecast.horizon_days: 365")
	assert.Contains(t, output, "report.future_after: 2018-12-13")
	assert.Contains(t, output, "redis.password: ********")
	assert.NotContains(t, output, "hunter2")
}

func TestConfigView_InvalidConfig(t *testing.T) {
	t.Setenv("GIGCAST_DATA_SOURCE", "parquet")
	_, err := executeCommand(NewRootCmd(), "config", "view", "--config", writeConfig(t))
	assert.Error(t, err)
}

func TestReport_RequiresCityAndGenre(t *testing.T) {
	_, err := executeCommand(NewRootCmd(), "report", "--config", writeConfig(t), "--city", "Chicago")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--city and --genre are required")
}

func TestReport_ExportAndReload(t *testing.T) {
	configPath := writeConfig(t)
	exportPath := filepath.Join(t.TempDir(), "chicago-rock.json")

	output, err := executeCommand(NewRootCmd(), "report", "--config", configPath,
		"--city", "Chicago", "--genre", "rock", "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Recommendations for Chicago / rock")
	assert.Contains(t, output, "The best day of the week to play is **Friday**")
	assert.FileExists(t, exportPath)

	reloaded, err := executeCommand(NewRootCmd(), "report", "--config", configPath, "--from-forecast", exportPath)
	require.NoError(t, err)
	assert.Contains(t, reloaded, "The best day of the week to play is **Friday**")
}

func TestReport_NoData(t *testing.T) {
	_, err := executeCommand(NewRootCmd(), "report", "--config", writeConfig(t), "--city", "Atlantis", "--genre", "polka")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data available")
}
