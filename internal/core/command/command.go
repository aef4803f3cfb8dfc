// Package command decodes and encodes the scheduler's bulk command string.
//
// The wire form is a single argument whose fields are separated by ASCII EM (0x19):
//
//	mode, userId, groupId, uploadTreeId, licenseRefId, referenceText[, ...]
//
// mode is "B" (add) or "N" (remove). Fields after the sixth are ignored.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"bulkscan/internal/platform/validate"
	"bulkscan/internal/services/bulk/domain"
)

// Delimiter separates command fields
const Delimiter = validate.CommandDelimiter

const (
	tagAdd    = "B"
	tagRemove = "N"

	minFields = 6
)

// Decode parses raw into a validated RunRequest. Every failure wraps domain.ErrMalformedRequest
func Decode(raw string) (domain.RunRequest, error) {
	fields := strings.Split(raw, Delimiter)
	if len(fields) < minFields {
		return domain.RunRequest{}, malformed("expected at least %d fields, got %d", minFields, len(fields))
	}

	var req domain.RunRequest
	switch fields[0] {
	case tagAdd:
		req.Mode = domain.ModeAdd
	case tagRemove:
		req.Mode = domain.ModeRemove
	default:
		return domain.RunRequest{}, malformed("unknown mode %q", fields[0])
	}

	ids := [...]struct {
		name string
		dst  *int64
	}{
		{"user_id", &req.UserID},
		{"group_id", &req.GroupID},
		{"upload_tree_id", &req.UploadTreeID},
		{"license_ref_id", &req.LicenseRefID},
	}
	for i, id := range ids {
		n, err := strconv.ParseInt(strings.TrimSpace(fields[i+1]), 10, 64)
		if err != nil {
			return domain.RunRequest{}, malformed("%s: %q is not an integer", id.name, fields[i+1])
		}
		*id.dst = n
	}

	req.ReferenceText = fields[5]
	if strings.TrimSpace(req.ReferenceText) == "" {
		return domain.RunRequest{}, malformed("reference_text is blank")
	}

	if err := validate.Struct(req); err != nil {
		_, msg := validate.FieldAndMessage(err)
		return domain.RunRequest{}, malformed("%s", msg)
	}
	return req, nil
}

// Encode renders req in wire form. It fails for requests that would not decode back to req
func Encode(req domain.RunRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		_, msg := validate.FieldAndMessage(err)
		return "", malformed("%s", msg)
	}
	if strings.TrimSpace(req.ReferenceText) == "" {
		return "", malformed("reference_text is blank")
	}

	tag := tagAdd
	if req.Mode == domain.ModeRemove {
		tag = tagRemove
	}
	return strings.Join([]string{
		tag,
		strconv.FormatInt(req.UserID, 10),
		strconv.FormatInt(req.GroupID, 10),
		strconv.FormatInt(req.UploadTreeID, 10),
		strconv.FormatInt(req.LicenseRefID, 10),
		req.ReferenceText,
	}, Delimiter), nil
}

func malformed(format string, args ...any) error {
	return domain.Fail(domain.ErrMalformedRequest, fmt.Errorf(format, args...))
}
