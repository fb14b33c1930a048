package util

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// TempSuffix marks a chapter folder that is still being filled.
const TempSuffix = "_tmp"

type InfoLogger interface {
	Infof(string, ...any)
}

// SetupInterruptHandler removes unfinished chapter folders under outputDir
// when the process is interrupted.
func SetupInterruptHandler(outputDir string, log InfoLogger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Infof("Interrupt received. Cleaning up...\n")

		CleanupUnfinishedTempFolders(outputDir, log)
		RemoveIfEmpty(outputDir, log)

		os.Exit(1)
	}()
}

func CleanupUnfinishedTempFolders(outputDir string, log InfoLogger) []string {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil
	}

	var removed []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), TempSuffix) {
			continue
		}

		full := filepath.Join(outputDir, e.Name())
		if err := os.RemoveAll(full); err != nil {
			log.Infof("Error cleaning up %s: %v\n", full, err)
			continue
		}
		removed = append(removed, full)
		log.Infof("Removed %s\n", full)
	}

	return removed
}

func RemoveIfEmpty(dir string, log InfoLogger) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	if err := os.Remove(dir); err != nil {
		return false
	}
	log.Infof("Removed empty output folder: %s\n", dir)

	return true
}
