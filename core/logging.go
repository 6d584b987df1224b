package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

// log is the package-level logger used by every component. It defaults to
// discarding output so importing core as a library stays silent unless the
// embedding application opts in via SetLogger.
var log = logrus.New()

func init() {
	log.SetOutput(io.Discard)
}

// SetLogger installs l as the package-wide logger. Pass nil to restore the
// silent default.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
		return
	}
	log = l
}
