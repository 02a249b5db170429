package tools

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

func LogOutput(val ...interface{}) {
	if isEnabled {
		glog.InfoDepth(1, formatOutput(val...))
	}
}

func formatOutput(val ...interface{}) string {
	msg := fmt.Sprintln(val...)
	msg = msg[:len(msg)-1]
	if printTimestamp {
		return "[" + time.Now().Format("2006-01-02 15.04:05.000") + "] " + msg
	}
	return msg
}
