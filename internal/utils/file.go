package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// OutputPrefix names the per-run folder created under the input folder
const OutputPrefix = "processed_"

// TimestampLayout is the timestamp format used in output folder names
const TimestampLayout = "2006-01-02_15-04-05"

// InputExtensions are the file types picked up from an input folder
var InputExtensions = []string{"jpg", "jpeg", "png", "tif", "tiff", "psd", "psb"}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", dir)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has one of the input extensions
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	for _, imgExt := range InputExtensions {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// ListImageFiles lists the image files directly inside dir, sorted by name.
// Subfolders are not descended into, so earlier output folders are skipped.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if IsImageFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputFolder returns the default per-run output folder for inputDir
func OutputFolder(inputDir string, now time.Time) string {
	return filepath.Join(inputDir, OutputPrefix+now.Format(TimestampLayout))
}

// OutputPath is the JPEG written for inputFile: same base name, .jpg extension
func OutputPath(outputDir, inputFile string) string {
	base := filepath.Base(inputFile)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".jpg")
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}
