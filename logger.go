package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gocomment/internal/logging"
)

var logFile *os.File

// setupLogging installs the process logger. Output goes to stdout and to
// logs/<kind>-<timestamp>.log, kind being debug or overlay.
func setupLogging(debug bool) {
	logDir := "logs"
	var w io.Writer = os.Stdout
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("could not create log directory: %v", err)
	} else {
		kind := "overlay"
		if debug {
			kind = "debug"
		}
		ts := time.Now().Format("20060102-150405")
		path := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", kind, ts))
		if f, err := os.Create(path); err == nil {
			logFile = f
			w = io.MultiWriter(os.Stdout, f)
		} else {
			log.Printf("could not create log file: %v", err)
		}
	}
	l := logging.New(w, debug)
	logging.Set(l)
	log.SetOutput(l.StandardLog().Writer())
	log.SetFlags(0)
}

func closeLogging() {
	logging.Set(nil)
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func logError(format string, v ...interface{}) {
	logging.Error(fmt.Sprintf(format, v...))
}

func logWarn(format string, v ...interface{}) {
	logging.Warn(fmt.Sprintf(format, v...))
}

func logDebug(format string, v ...interface{}) {
	logging.Debug(fmt.Sprintf(format, v...))
}
