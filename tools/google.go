package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modumentor/bridge/errors"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GmailTool gives the agent read access to the user's Gmail account.
// Authentication uses Application Default Credentials; without them the
// tool constructs lazily and reports unavailability from its probe.
type GmailTool struct {
	svc *gmail.Service
}

func (t *GmailTool) Name() string { return "gmail" }
func (t *GmailTool) Description() string {
	return "Reads Gmail account information and recent message subjects. Args: query (string, optional Gmail search query)."
}

func (t *GmailTool) service(ctx context.Context) (*gmail.Service, error) {
	if t.svc != nil {
		return t.svc, nil
	}
	svc, err := gmail.NewService(ctx, option.WithScopes(gmail.GmailReadonlyScope))
	if err != nil {
		return nil, errors.Wrapf(err, "gmail service unavailable (are Google credentials configured?)")
	}
	t.svc = svc
	return svc, nil
}

func (t *GmailTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	svc, err := t.service(ctx)
	if err != nil {
		return "", err
	}

	query, _ := args["query"].(string)
	call := svc.Users.Messages.List("me").MaxResults(5)
	if query != "" {
		call = call.Q(query)
	}
	list, err := call.Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "failed to list Gmail messages")
	}

	if len(list.Messages) == 0 {
		return "No matching messages found", nil
	}

	var subjects []string
	for _, m := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", m.Id).Format("metadata").MetadataHeaders("Subject").Context(ctx).Do()
		if err != nil {
			continue
		}
		for _, h := range msg.Payload.Headers {
			if h.Name == "Subject" {
				subjects = append(subjects, h.Value)
			}
		}
	}
	return fmt.Sprintf("Found %d message(s). Subjects: %s", len(list.Messages), strings.Join(subjects, "; ")), nil
}

func (t *GmailTool) ProbeQuery() string { return "email functionality" }

func (t *GmailTool) Probe(ctx context.Context) (string, error) {
	svc, err := t.service(ctx)
	if err != nil {
		return "", err
	}
	profile, err := svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "gmail credentials present but profile lookup failed")
	}
	return fmt.Sprintf("Gmail tool is available for %s", profile.EmailAddress), nil
}

// SheetsTool gives the agent read access to Google Sheets.
type SheetsTool struct {
	svc *sheets.Service
}

func (t *SheetsTool) Name() string { return "sheets" }
func (t *SheetsTool) Description() string {
	return "Reads values from a Google Sheet. Args: spreadsheet_id (string), range (string, e.g. 'Sheet1!A1:C10')."
}

func (t *SheetsTool) service(ctx context.Context) (*sheets.Service, error) {
	if t.svc != nil {
		return t.svc, nil
	}
	svc, err := sheets.NewService(ctx, option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, errors.Wrapf(err, "sheets service unavailable (are Google credentials configured?)")
	}
	t.svc = svc
	return svc, nil
}

func (t *SheetsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	id, idOk := args["spreadsheet_id"].(string)
	readRange, rangeOk := args["range"].(string)
	if !idOk || !rangeOk {
		return "", errors.New("missing or invalid 'spreadsheet_id' or 'range' arguments")
	}

	svc, err := t.service(ctx)
	if err != nil {
		return "", err
	}
	values, err := svc.Spreadsheets.Values.Get(id, readRange).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "failed to read range '%s'", readRange)
	}

	var b strings.Builder
	for _, row := range values.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "The requested range is empty", nil
	}
	return b.String(), nil
}

func (t *SheetsTool) ProbeQuery() string { return "spreadsheet access" }

// Probe only verifies that a service can be constructed; reading an actual
// spreadsheet needs an id the probe does not have.
func (t *SheetsTool) Probe(ctx context.Context) (string, error) {
	if _, err := t.service(ctx); err != nil {
		return "", err
	}
	return "Sheets tool is available and credentials are configured", nil
}
