package badger

import (
	"fmt"
	"strings"

	"github.com/safing/portstore/log"
)

// logger routes badger's internal logging into the log package.
type logger struct {
	name string
}

func (l *logger) format(msg string, args ...interface{}) string {
	return fmt.Sprintf("database/badger: %s: %s", l.name, strings.TrimSpace(fmt.Sprintf(msg, args...)))
}

func (l *logger) Errorf(msg string, args ...interface{}) {
	log.Error(l.format(msg, args...))
}

func (l *logger) Warningf(msg string, args ...interface{}) {
	log.Warning(l.format(msg, args...))
}

func (l *logger) Infof(msg string, args ...interface{}) {
	log.Debug(l.format(msg, args...))
}

func (l *logger) Debugf(msg string, args ...interface{}) {
	log.Trace(l.format(msg, args...))
}
