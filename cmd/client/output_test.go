package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantArgs []string
	}{
		{"no args", nil, commandSync, nil},
		{"flags only", []string{"-s", "localhost:8080"}, commandSync, []string{"-s", "localhost:8080"}},
		{"trailing command", []string{"-s", "localhost:8080", "upload"}, commandUpload, []string{"-s", "localhost:8080"}},
		{"command alone", []string{"status"}, commandStatus, []string{}},
		{"flag value named like a command", []string{"-u", "download"}, commandSync, []string{"-u", "download"}},
		{"equals form", []string{"-u=alice", "download"}, commandDownload, []string{"-u=alice"}},
		{"unknown word", []string{"-s", "x", "nope"}, commandSync, []string{"-s", "x", "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := splitCommand(tt.args)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
