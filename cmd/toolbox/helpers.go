package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"toolbox/internal/config"
	"toolbox/internal/conversion"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readUploads loads each path as an uploaded file named by its base name.
func readUploads(paths []string) ([]conversion.UploadedFile, error) {
	files := make([]conversion.UploadedFile, 0, len(paths))
	for _, raw := range paths {
		path, err := config.ExpandPath(raw)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", raw, err)
		}
		files = append(files, conversion.UploadedFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

// resolveOutputPath picks where an artifact named name is written. An empty
// output means the working directory; an existing directory keeps name.
func resolveOutputPath(output, name string) (string, error) {
	if output == "" {
		return name, nil
	}
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		return filepath.Join(expanded, name), nil
	}
	return expanded, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatDurationMS(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}

func formatTimestamp(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
