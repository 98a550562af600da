package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need from the environment.
// Loaded once at startup and passed to constructors; nothing reads the
// environment after Load returns.
type Config struct {
	ListenAddr string

	// "sqlite" (default) or "sheets"
	StoreBackend string
	SQLitePath   string

	// Google credentials, shared by the sheets store and the drive blobs
	CredentialsFile string
	SpreadsheetID   string
	DriveFolderID   string

	// "dir" (default) or "drive"
	BlobBackend string
	BlobRoot    string

	AdminKey   string
	ServiceURL string

	// Named zone used for submission filenames
	Timezone *time.Location
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Load(): no .env file found, using process environment")
	}

	cfg := Config{
		ListenAddr:      getenv("RECORDER_LISTEN_ADDR", ":8080"),
		StoreBackend:    getenv("RECORDER_STORE_BACKEND", "sqlite"),
		SQLitePath:      getenv("RECORDER_SQLITE_PATH", "./dialect_recorder.db"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SpreadsheetID:   os.Getenv("RECORDER_SPREADSHEET_ID"),
		DriveFolderID:   os.Getenv("RECORDER_DRIVE_FOLDER_ID"),
		BlobBackend:     getenv("RECORDER_BLOB_BACKEND", "dir"),
		BlobRoot:        getenv("RECORDER_BLOB_ROOT", "./data/recordings"),
		AdminKey:        os.Getenv("RECORDER_ADMIN_KEY"),
		ServiceURL:      getenv("RECORDER_APP_URL", "http://localhost:8080"),
	}

	switch cfg.StoreBackend {
	case "sqlite", "sheets":
	default:
		return Config{}, fmt.Errorf("Load(): unknown RECORDER_STORE_BACKEND %q", cfg.StoreBackend)
	}
	switch cfg.BlobBackend {
	case "dir", "drive":
	default:
		return Config{}, fmt.Errorf("Load(): unknown RECORDER_BLOB_BACKEND %q", cfg.BlobBackend)
	}
	if cfg.StoreBackend == "sheets" && cfg.SpreadsheetID == "" {
		return Config{}, fmt.Errorf("Load(): RECORDER_SPREADSHEET_ID required for the sheets backend")
	}
	if cfg.BlobBackend == "drive" && cfg.DriveFolderID == "" {
		return Config{}, fmt.Errorf("Load(): RECORDER_DRIVE_FOLDER_ID required for the drive backend")
	}

	tzName := getenv("RECORDER_TIMEZONE", "Asia/Dhaka")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("Load(): bad RECORDER_TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
