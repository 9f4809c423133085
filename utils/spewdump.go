package utils

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// LogDump writes a dump at debug level, skipping the work otherwise.
func LogDump(msg string, a ...interface{}) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	logrus.Debugf("%s\n%s", msg, spewConfig.Sdump(a...))
}
