package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// LogRequest represents a single logging request
type LogRequest struct {
	Message    string
	Fields     map[string]any // snapshot of fields at request time
	Timestamp  time.Time
	SourceLine int
	Level      int  // RFC 5424 log level (0-7)
	IsJSON     bool // format at time of request
	IsError    bool
}

const logQueueSize = 256

// logging state, process wide
var logQueue chan LogRequest
var logWorkerRunning bool
var workerMutex sync.Mutex
var outMutex sync.Mutex
var logPending sync.WaitGroup

var loggingEnabled = true
var jsonLoggingEnabled bool
var logMinLevel = LOG_WARNING
var logOut io.Writer = os.Stderr
var logFile string

// logLevelToString converts log level number to string name
func logLevelToString(level int) string {
	switch level {
	case LOG_EMERG:
		return "emerg"
	case LOG_ALERT:
		return "alert"
	case LOG_CRIT:
		return "crit"
	case LOG_ERR:
		return "error"
	case LOG_WARNING:
		return "warn"
	case LOG_NOTICE:
		return "notice"
	case LOG_INFO:
		return "info"
	case LOG_DEBUG:
		return "debug"
	default:
		return "unknown"
	}
}

func logLevelFromString(s string) (int, bool) {
	for l := LOG_EMERG; l <= LOG_DEBUG; l++ {
		if logLevelToString(l) == s {
			return l, true
		}
	}
	return LOG_WARNING, false
}

// configureLogging applies the logging part of a Config. An empty log
// file means standard error.
func configureLogging(cfg *Config) error {
	flushLog()
	outMutex.Lock()
	defer outMutex.Unlock()

	jsonLoggingEnabled = cfg.LogJSON
	if l, ok := logLevelFromString(cfg.LogLevel); ok {
		logMinLevel = l
	}
	if cfg.LogFile == logFile {
		return nil
	}
	if c, ok := logOut.(io.Closer); ok && logOut != os.Stderr {
		c.Close()
	}
	logFile = cfg.LogFile
	if logFile == "" {
		logOut = os.Stderr
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logOut = os.Stderr
		logFile = ""
		return fmt.Errorf("cannot open log file: %w", err)
	}
	logOut = f
	return nil
}

// startLogWorker starts the background logging worker
func startLogWorker() {
	if logWorkerRunning {
		return
	}
	logQueue = make(chan LogRequest, logQueueSize)
	logWorkerRunning = true
	q := logQueue
	go func() {
		for request := range q {
			processLogRequest(request)
			logPending.Done()
		}
	}()
}

// stopLogWorker drains and stops the background logging worker
func stopLogWorker() {
	flushLog()
	workerMutex.Lock()
	defer workerMutex.Unlock()
	if logQueue != nil && logWorkerRunning {
		close(logQueue)
		logQueue = nil
	}
	logWorkerRunning = false
}

// flushLog waits until every queued request has been written.
func flushLog() {
	logPending.Wait()
}

// queueLogRequest hands a request to the worker
func queueLogRequest(request LogRequest) {
	if !loggingEnabled && !request.IsError {
		return
	}
	if request.Level > logMinLevel {
		return
	}
	workerMutex.Lock()
	if !logWorkerRunning || logQueue == nil {
		startLogWorker()
	}
	logPending.Add(1)
	logQueue <- request
	workerMutex.Unlock()
}

// processLogRequest handles a single log request
func processLogRequest(request LogRequest) {
	outMutex.Lock()
	defer outMutex.Unlock()
	out := logOut

	if request.IsJSON {
		entry := make(map[string]any, len(request.Fields)+4)
		for k, v := range request.Fields {
			entry[k] = v
		}
		entry["message"] = request.Message
		entry["timestamp"] = request.Timestamp.Format(time.RFC3339)
		entry["level"] = logLevelToString(request.Level)
		if request.IsError && request.SourceLine > 0 {
			entry["source_line"] = request.SourceLine
		}
		jsonBytes, err := json.Marshal(entry)
		if err == nil {
			plog_direct(out, string(jsonBytes))
			return
		}
	}

	var message string
	switch {
	case request.IsError && request.SourceLine > 0:
		message = fmt.Sprintf("ERROR (line %d): %s", request.SourceLine, request.Message)
	case request.IsError:
		message = fmt.Sprintf("ERROR: %s", request.Message)
	default:
		message = fmt.Sprintf("%s: %s", logLevelToString(request.Level), request.Message)
	}
	for k, v := range request.Fields {
		message += fmt.Sprintf(" %s=%v", k, v)
	}
	plog_direct(out, request.Timestamp.Format("2006-01-02 15:04:05")+" "+message)
}

// plog_direct writes one line to the destination (used by queue processor)
func plog_direct(out io.Writer, message string) {
	if _, err := io.WriteString(out, message+"\n"); err != nil {
		log.Println(err)
	}
}

// plog queues an informational message.
func plog(level int, message string, fields map[string]any) {
	queueLogRequest(LogRequest{
		Message:   message,
		Fields:    fields,
		IsJSON:    jsonLoggingEnabled,
		Level:     level,
		Timestamp: time.Now(),
	})
}

// logError queues an error message tied to a script line.
func logError(line int, message string, fields map[string]any) {
	queueLogRequest(LogRequest{
		Message:    message,
		Fields:     fields,
		IsJSON:     jsonLoggingEnabled,
		IsError:    true,
		SourceLine: line,
		Level:      LOG_ERR,
		Timestamp:  time.Now(),
	})
}
