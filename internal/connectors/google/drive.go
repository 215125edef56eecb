package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/geosync-cli/internal/logger"
)

// Drive MIME types of interest.
const (
	MimeTypeFolder      = "application/vnd.google-apps.folder"
	MimeTypeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimeTypeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// listPageSize is the Drive files.list page size.
const listPageSize = 100

// DriveClient wraps the Drive API with rate limiting for folder and
// spreadsheet enumeration.
type DriveClient struct {
	svc     *drive.Service
	limiter *RateLimiter
}

// NewDriveClient creates a rate-limited Drive client.
func NewDriveClient(svc *drive.Service, limiter *RateLimiter) *DriveClient {
	return &DriveClient{svc: svc, limiter: limiter}
}

// ListProviderFolders returns all subfolders of the source folder, one
// per provider, following pagination until the API reports no further
// page token.
func (c *DriveClient) ListProviderFolders(ctx context.Context, folderID string) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", folderID, MimeTypeFolder)
	return c.listAll(ctx, query, "nextPageToken, files(id, name)")
}

// ListSpreadsheets returns all spreadsheets directly inside a folder
// (flat layout), following pagination.
func (c *DriveClient) ListSpreadsheets(ctx context.Context, folderID string) ([]*drive.File, error) {
	query := fmt.Sprintf(
		"'%s' in parents and (mimeType = '%s' or mimeType = '%s') and trashed = false",
		folderID, MimeTypeGoogleSheet, MimeTypeXLSX,
	)
	return c.listAll(ctx, query, "nextPageToken, files(id, name, mimeType)")
}

// FindMainDataSheet locates the "Main DATA" spreadsheet in a provider
// folder, falling back to the first spreadsheet present. Returns
// ErrNoSpreadsheet when the folder holds none.
func (c *DriveClient) FindMainDataSheet(ctx context.Context, folderID string) (*drive.File, error) {
	files, err := c.ListSpreadsheets(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSpreadsheet
	}

	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), "main data") {
			return f, nil
		}
	}
	return files[0], nil
}

// listAll runs a files.list query through every page.
func (c *DriveClient) listAll(ctx context.Context, query, fields string) ([]*drive.File, error) {
	var all []*drive.File
	pageToken := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := c.svc.Files.List().
			Q(query).
			Fields(googleapi.Field(fields)).
			PageSize(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			if IsRateLimited(err) {
				c.limiter.RecordRateLimitError(0)
			}
			return nil, WrapError(err)
		}

		all = append(all, res.Files...)
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
		logger.Debug("drive: fetching next page (%d files so far)", len(all))
	}

	return all, nil
}

// ProviderNameFromSheet derives a provider name from a flat-layout
// spreadsheet filename, stripping the extension and trailing
// "Main DATA"-style suffixes (e.g. "Acme Main DATA.xlsx" -> "Acme").
func ProviderNameFromSheet(sheetName string) string {
	name := sheetName
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name = name[:len(name)-len(".xlsx")]
	}
	lower := strings.ToLower(name)
	for _, suffix := range []string{"main data", "main", "data"} {
		if strings.HasSuffix(lower, suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)])
			break
		}
	}
	return name
}
