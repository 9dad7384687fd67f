package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "distlab", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite history")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"compile"}, {"validate"}, {"eval"}, {"sample"}, {"glm"},
		{"gp"}, {"gp", "predict"}, {"gp", "lml"}, {"gp", "fit"},
		{"test"}, {"history"}, {"replay"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		path  []string
		flags []string
	}{
		{[]string{"compile"}, []string{"output"}},
		{[]string{"eval"}, []string{"run"}},
		{[]string{"sample"}, []string{"run", "draws", "seed", "values"}},
		{[]string{"glm"}, []string{"run", "function", "seed"}},
		{[]string{"test"}, []string{"update", "filter"}},
		{[]string{"history"}, []string{"run", "spec", "family", "function", "status", "limit"}},
		{[]string{"replay"}, []string{"run"}},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		for _, name := range tt.flags {
			assert.NotNil(t, sub.Flags().Lookup(name), "%v --%s", tt.path, name)
		}
	}

	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)
	assert.Equal(t, "o", compileCmd.Flags().Lookup("output").Shorthand)

	predictCmd, _, err := cmd.Find([]string{"gp", "predict"})
	require.NoError(t, err)
	assert.NotNil(t, predictCmd.InheritedFlags().Lookup("run"))
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, "--format", "xml", "validate", modelSpecs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := tempDB(t)
	cfgPath := writeFile(t, dir, "distlab.toml", "db = \""+dbPath+"\"\n")

	_, _, err := runCLI(t, "--config", cfgPath, "eval", modelSpecs, "income", "mean", "--run", "from-config")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "from-config")
}

func TestConfigFile_Invalid(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "distlab.toml", "draws = -1\n")

	_, _, err := runCLI(t, "--config", cfgPath, "validate", modelSpecs)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "draws must be positive")
}

func TestDBFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	fileDB := filepath.Join(dir, "file.db")
	flagDB := filepath.Join(dir, "flag.db")
	cfgPath := writeFile(t, dir, "distlab.toml", "db = \""+fileDB+"\"\n")

	_, _, err := runCLI(t, "--config", cfgPath, "--db", flagDB, "eval", modelSpecs, "coin", "mean")
	require.NoError(t, err)

	assert.FileExists(t, flagDB)
	assert.NoFileExists(t, fileDB)
}
