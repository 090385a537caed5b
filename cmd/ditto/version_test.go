package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	originalVersion, originalCommitSHA := Version, CommitSHA
	t.Cleanup(func() {
		Version, CommitSHA = originalVersion, originalCommitSHA
		versionCmd.SetOut(nil)
	})

	Version = "1.0.0"
	CommitSHA = "abc123"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "version=1.0.0 commit=abc123\n", out.String())
}

func TestSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "emoji", "version"})

	var emojiNames []string
	for _, c := range emojiCmd.Commands() {
		emojiNames = append(emojiNames, c.Name())
	}
	assert.ElementsMatch(t, []string{"sweep", "stats"}, emojiNames)
}
