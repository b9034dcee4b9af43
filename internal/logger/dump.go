package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	dumpMu  sync.Mutex
	dumpLog *log.Logger
)

// SetMessageWriter enables dumping of assembled messages to w; nil disables it.
func SetMessageWriter(w io.Writer) {
	dumpMu.Lock()
	defer dumpMu.Unlock()
	if w == nil {
		dumpLog = nil
		return
	}
	dumpLog = log.New(w, "", log.LstdFlags)
}

// LogMessage writes a message body framed with its trade id and unit number.
func LogMessage(tradeID, unit, body string) {
	dumpMu.Lock()
	logger := dumpLog
	dumpMu.Unlock()
	if logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[MESSAGE]")
	if tradeID != "" {
		b.WriteString("[")
		b.WriteString(tradeID)
		b.WriteString("]")
	}
	if unit != "" {
		b.WriteString("[unit ")
		b.WriteString(unit)
		b.WriteString("]")
	}
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("=====\n")
	logger.Print(b.String())
}
