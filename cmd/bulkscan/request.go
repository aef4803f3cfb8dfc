package main

import (
	"errors"
	"strings"

	"bulkscan/internal/core/command"
	"bulkscan/internal/services/bulk/domain"

	"github.com/spf13/cobra"
)

// requestFlags describe a run when no raw command argument is given
type requestFlags struct {
	mode         string
	userID       int64
	groupID      int64
	uploadTreeID int64
	licenseRefID int64
	text         string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.mode, "mode", "add", "add or remove the license on matching files")
	fs.Int64Var(&f.userID, "user", 0, "user id recorded on each decision")
	fs.Int64Var(&f.groupID, "group", 0, "group id of the requesting user")
	fs.Int64Var(&f.uploadTreeID, "upload-tree", 0, "upload tree item that selects the upload")
	fs.Int64Var(&f.licenseRefID, "license", 0, "license ref id to add or remove")
	fs.StringVar(&f.text, "text", "", "reference text to search for")
}

// request builds the RunRequest from a raw scheduler argument or, without one, from flags
func (f *requestFlags) request(args []string) (domain.RunRequest, error) {
	if len(args) > 0 {
		return command.Decode(args[0])
	}

	var mode domain.Mode
	switch strings.ToLower(strings.TrimSpace(f.mode)) {
	case "add", "b":
		mode = domain.ModeAdd
	case "remove", "n":
		mode = domain.ModeRemove
	default:
		return domain.RunRequest{}, domain.Fail(domain.ErrMalformedRequest, errors.New("--mode must be add or remove"))
	}

	req := domain.RunRequest{
		Mode:          mode,
		UserID:        f.userID,
		GroupID:       f.groupID,
		UploadTreeID:  f.uploadTreeID,
		LicenseRefID:  f.licenseRefID,
		ReferenceText: f.text,
	}
	// round-trip so flags and raw commands share one set of rules
	raw, err := command.Encode(req)
	if err != nil {
		return domain.RunRequest{}, err
	}
	return command.Decode(raw)
}
