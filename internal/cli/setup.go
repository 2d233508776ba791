package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fmueller/voxkey/internal/download"
	"github.com/fmueller/voxkey/internal/hotkey"
	"github.com/fmueller/voxkey/internal/whisper"
)

func newSetupCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download the speech model and check input permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			resolved, err := whisper.ResolveModel(app.model, modelDir)
			if err != nil {
				return err
			}
			if resolved.IsCustomPath {
				return fmt.Errorf("setup expects a named model; got custom path %s", resolved.Path)
			}

			if !resolved.NeedsDownload {
				if err := download.VerifyFileChecksum(resolved.Path, resolved.SHA256); err != nil {
					app.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("model", resolved.Name), zap.Error(err))
					resolved.NeedsDownload = true
				}
			}

			if resolved.NeedsDownload {
				app.log().Info("downloading model", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
				if err := download.DownloadFile(cmd.Context(), download.Options{
					URL:            resolved.URL,
					Destination:    resolved.Path,
					ExpectedSHA256: resolved.SHA256,
					NoProgress:     app.noProgress,
					Logger:         app.log(),
				}); err != nil {
					return fmt.Errorf("download model %s: %w", resolved.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s installed at %s\n", resolved.Name, resolved.Path)
			} else {
				app.log().Info("model already present", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s already present at %s\n", resolved.Name, resolved.Path)
			}

			reportInputAccess(cmd)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)

	return cmd
}

func reportInputAccess(cmd *cobra.Command) {
	if runtime.GOOS != "linux" {
		return
	}

	if hotkey.CanReadInputDevices() {
		fmt.Fprintln(cmd.OutOrStdout(), "Input devices readable: global hotkey available.")
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cannot read /dev/input: the global hotkey will not work.")
	fmt.Fprintln(cmd.OutOrStdout(), "Add yourself to the input group and log in again:")
	fmt.Fprintln(cmd.OutOrStdout(), "  sudo usermod -aG input $USER")
	fmt.Fprintln(cmd.OutOrStdout(), "Until then, voxkey falls back to the terminal toggle.")
}
