package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"chat", "serve", "resolve", "sports"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "odds-chat", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestChatCommand_Flags(t *testing.T) {
	flag := chatCmd.Flags().Lookup("user")
	require.NotNil(t, flag)
	assert.Equal(t, "cli", flag.DefValue)

	require.NotNil(t, chatCmd.Flags().Lookup("reset"))
}

func TestSportsCommand_Flags(t *testing.T) {
	flag := sportsCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)

	require.NotNil(t, sportsCmd.Flags().Lookup("refresh"))
}

func TestResolveCommand_RequiresMessage(t *testing.T) {
	assert.Error(t, resolveCmd.Args(resolveCmd, nil))
	assert.NoError(t, resolveCmd.Args(resolveCmd, []string{"nba", "odds"}))
}
