package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes needed for reading Drive folders and Sheets contents. The sync
// pipeline is strictly read-only against the source.
var Scopes = []string{
	drive.DriveReadonlyScope,
	sheets.SpreadsheetsReadonlyScope,
}

// ServiceAccountTokenSource loads a service-account key file and returns
// a TokenSource scoped for read-only Drive and Sheets access. The key is
// downloaded from the Google Cloud Console; the source folder must be
// shared with the service account's email.
func ServiceAccountTokenSource(ctx context.Context, keyFile string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	cfg, err := googleauth.JWTConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	return cfg.TokenSource(ctx), nil
}

// NewDriveService creates a Google Drive API service using the provided
// TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithTokenSource(ts))
}

// NewSheetsService creates a Google Sheets API service using the
// provided TokenSource.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource) (*sheets.Service, error) {
	return sheets.NewService(ctx, option.WithTokenSource(ts))
}
