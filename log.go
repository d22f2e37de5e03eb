package ircd

import "github.com/sirupsen/logrus"

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger. The default is the logrus
// standard logger.
func SetLogger(l logrus.FieldLogger) {
	log = l
}
