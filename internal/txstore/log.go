package txstore

import (
	"log"
	"os"
)

// logger is the minimal logging seam this package needs: one *log.Logger
// per Runtime, defaulting to stderr the same way the teacher's
// scheduler.go and cmd/server/main.go log directly through the standard
// library rather than a structured-logging dependency.
type logger struct {
	*log.Logger
}

func defaultLogger() *logger {
	return &logger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// SetLogger replaces the runtime's logger. A nil logger is not accepted;
// pass a *log.Logger writing to io.Discard to silence diagnostics.
func (rt *Runtime) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	rt.log = &logger{Logger: l}
}
