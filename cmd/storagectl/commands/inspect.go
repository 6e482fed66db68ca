package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CloneWith/storageengine/pkg/config"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
	"github.com/CloneWith/storageengine/pkg/uploadstore"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <workspace> <parent-dir> <file-id>",
	Short: "Print the durable upload record for (workspace, parent-dir, file-id)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := uploadstore.New(&uploadstore.Config{Path: cfg.Database.Path})
		if err != nil {
			return fmt.Errorf("open upload store: %w", err)
		}

		id := uploadmodel.RecordIdentity{
			WorkspaceID: args[0],
			ParentDir:   args[1],
			FileID:      args[2],
		}

		record, err := store.SelectUploadFile(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("lookup record: %w", err)
		}

		var partsDone int
		if record.UploadID != "" {
			parts, err := store.SelectUploadParts(cmd.Context(), record.UploadID)
			if err != nil {
				return fmt.Errorf("lookup parts: %w", err)
			}
			partsDone = len(parts)
		}

		cmd.Printf("file id:        %s\n", record.FileID)
		cmd.Printf("workspace:      %s\n", record.WorkspaceID)
		cmd.Printf("parent dir:     %s\n", record.ParentDir)
		cmd.Printf("upload id:      %s\n", record.UploadID)
		cmd.Printf("content type:   %s\n", record.ContentType)
		cmd.Printf("chunk size:     %d bytes\n", record.ChunkSize)
		cmd.Printf("parts complete: %d/%d\n", partsDone, record.NumChunk)
		cmd.Printf("completed:      %t\n", record.IsFinish)
		return nil
	},
}
