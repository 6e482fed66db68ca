package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/CloneWith/storageengine/internal/cloud/fakecloud"
	"github.com/CloneWith/storageengine/internal/hostuser"
	"github.com/CloneWith/storageengine/internal/logger"
	"github.com/CloneWith/storageengine/pkg/config"
	"github.com/CloneWith/storageengine/pkg/storagemanager"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

var (
	demoWorkspace string
	demoParentDir string
)

var demoCmd = &cobra.Command{
	Use:   "demo <file>",
	Short: "Run an upload against the in-memory fake cloud backend and print progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		db, err := openDatabase(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		users := hostuser.New(demoWorkspace, demoWorkspace, cfg.Engine.AppRoot, db)
		cloud := fakecloud.New()

		mgrCfg := storagemanager.DefaultConfig()
		mgrCfg.RecoveryWarmup = cfg.Engine.RecoveryWarmup
		mgrCfg.RecoveryLimit = cfg.Engine.RecoveryLimit
		mgrCfg.Uploader.MinChunkSize = cfg.Engine.MinChunkSize

		ctx := context.Background()
		mgr, err := storagemanager.New(ctx, mgrCfg, users, cloud)
		if err != nil {
			return fmt.Errorf("start manager: %w", err)
		}
		defer mgr.Close()

		url, fileID, stream, err := mgr.CreateUpload(ctx, demoWorkspace, demoParentDir, args[0])
		if err != nil {
			return fmt.Errorf("create upload: %w", err)
		}
		cmd.Printf("uploading %s -> %s (file id %s)\n", args[0], url, fileID)

		if stream == nil {
			cmd.Println("upload already complete")
			return nil
		}

		for event := range stream {
			switch event.State {
			case uploadmodel.StateUploading:
				cmd.Printf("  progress: %.1f%%\n", event.Progress*100)
			case uploadmodel.StateFinished:
				cmd.Println("  finished")
				return nil
			case uploadmodel.StateError:
				return fmt.Errorf("upload failed: %s", event.ErrorMsg)
			}
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoWorkspace, "workspace", "demo-workspace", "Workspace ID to attribute the upload to")
	demoCmd.Flags().StringVar(&demoParentDir, "parent-dir", "/demo", "Remote parent directory key")
}

// openDatabase opens the GORM handle the demo's UserService hands the
// facade, creating the parent directory for a file-backed path.
func openDatabase(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}
