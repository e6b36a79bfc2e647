package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/db"
)

// backupCmd represents the backup command.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the invoice database",
	Long: `Write a consistent snapshot of the invoice database to the backups
directory under the working root. Run at least monthly.

Example:
  densho-reconcile backup`,
	Run: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	cfg := loadConfig()
	pathResolver, conn := openDatabase(cfg)
	defer conn.Close()

	now := time.Now()
	dest := pathResolver.GetBackupPath(now)

	slog.Info("Backing up database", "from", conn.GetPath(), "to", dest)
	err := conn.Backup(ctx, dest)
	exitOnError(err, "failed to back up database")

	if err := conn.SetMetadata(ctx, db.MetaLastBackupAt, now.Format(time.RFC3339)); err != nil {
		slog.Warn("Failed to record backup time", "error", err)
	}

	fmt.Printf("Backup written: %s\n", dest)
}
