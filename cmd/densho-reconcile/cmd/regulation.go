package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/regulation"
)

var regulationOutput string

// regulationCmd represents the regulation command.
var regulationCmd = &cobra.Command{
	Use:   "regulation",
	Short: "Generate the 事務処理規程 document",
	Long: `Generate the internal rules for preventing correction and deletion of
electronic transaction data (電子取引データの訂正及び削除の防止に関する事務処理規程)
as an HTML file. The storage folder named by DRIVE_FOLDER_NAME is filled in.

The file is written to the working root unless --output is given.

Example:
  densho-reconcile regulation
  densho-reconcile regulation --output ./規程.html`,
	Run: runRegulation,
}

func init() {
	regulationCmd.Flags().StringVarP(&regulationOutput, "output", "o", "", "Output HTML file")
}

func runRegulation(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := newPathResolver(cfg)

	dest := regulationOutput
	if dest == "" {
		dest = filepath.Join(pathResolver.GetRoot(), regulation.FileName)
	}

	var buf bytes.Buffer
	err := regulation.Render(&buf, regulation.Params{
		DriveFolderName: cfg.Storage.DriveFolderName,
		EnactedOn:       time.Now(),
	})
	exitOnError(err, "failed to render regulation")

	err = pathResolver.EnsureParentDir(dest)
	exitOnError(err, "failed to create output directory")

	err = os.WriteFile(dest, buf.Bytes(), 0644)
	exitOnError(err, "failed to write regulation")

	slog.Info("Regulation generated", "path", dest, "folder", cfg.Storage.DriveFolderName)
	fmt.Printf("Regulation written: %s\n", dest)
}
