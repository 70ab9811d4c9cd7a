package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-collection-sync/models"
)

const (
	commandSync     = "sync"
	commandStatus   = "status"
	commandUpload   = "upload"
	commandDownload = "download"
)

var commands = []string{commandSync, commandStatus, commandUpload, commandDownload}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	progressStyle = lipgloss.NewStyle().Faint(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// splitCommand takes a trailing command word off args. Flags stay in place
// for the config parser. The default command is sync.
func splitCommand(args []string) (string, []string) {
	if n := len(args); n > 0 && slices.Contains(commands, args[n-1]) {
		// "-u sync" means a user named sync
		if n == 1 || !isValueFlag(args[n-2]) {
			return args[n-1], args[:n-1]
		}
	}
	return commandSync, args
}

func isValueFlag(arg string) bool {
	if !strings.HasPrefix(arg, "-") || strings.Contains(arg, "=") {
		return false
	}
	switch strings.TrimLeft(arg, "-") {
	case "a", "s", "d", "dir", "col", "c", "config", "token-sign-key", "token-issuer",
		"token-duration", "request-timeout", "u", "p", "sync-interval", "chunk-size":
		return true
	}
	return false
}

func progressLine(p models.NormalSyncProgress) string {
	return fmt.Sprintf("%-22s sent %d/%d  received %d/%d",
		p.Stage.String(), p.RemoteUpdate, p.RemoteRemove, p.LocalUpdate, p.LocalRemove)
}

// report prints the outcome of a sync or status call.
func report(out models.SyncOutput, err error) {
	if err != nil {
		reportError(err)
		return
	}

	if out.ServerMessage != "" {
		fmt.Println(boxStyle.Render(out.ServerMessage))
	}

	switch out.Required {
	case models.NoChanges:
		fmt.Println(okStyle.Render("collection is up to date"))
	case models.NormalSyncRequired:
		fmt.Println(okStyle.Render("collection synced"))
	case models.FullSyncRequired:
		var dirs []string
		if out.UploadOK {
			dirs = append(dirs, commandUpload)
		}
		if out.DownloadOK {
			dirs = append(dirs, commandDownload)
		}
		fmt.Println(warnStyle.Render("full sync required"))
		fmt.Println(titleStyle.Render("run again with one of: " + strings.Join(dirs, ", ")))
	}
}

func reportDone(what string, err error) {
	if err != nil {
		reportError(err)
		return
	}
	fmt.Println(okStyle.Render(what + " completed"))
}

func reportError(err error) {
	var syncErr *models.SyncError
	if errors.As(err, &syncErr) {
		fmt.Fprintln(os.Stderr, errorStyle.Render(syncErr.Kind.String()+": ")+syncErr.Info)
		if syncErr.RequiresFullSync() {
			fmt.Fprintln(os.Stderr, warnStyle.Render("the next sync will ask for a full upload or download"))
		}
		return
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
}
