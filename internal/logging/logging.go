// Package logging provides a standardized logrus wrapper shared by the
// routing, storage, and reception packages so that structured log fields
// stay consistent across the module.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Helper provides standardized logging functionality for a package.
type Helper struct {
	function string
	fields   logrus.Fields
}

// New creates a new logger helper scoped to a package and function.
func New(pkg, function string) *Helper {
	return &Helper{
		function: function,
		fields: logrus.Fields{
			"function": function,
			"package":  pkg,
		},
	}
}

// WithField adds a custom field to the logger.
func (l *Helper) WithField(key string, value interface{}) *Helper {
	l.fields[key] = value
	return l
}

// WithFields adds multiple custom fields to the logger.
func (l *Helper) WithFields(fields logrus.Fields) *Helper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}

// Debug logs a debug message.
func (l *Helper) Debug(message string) {
	logrus.WithFields(l.fields).Debug(message)
}

// Info logs an info message.
func (l *Helper) Info(message string) {
	logrus.WithFields(l.fields).Info(message)
}

// Warn logs a warning message.
func (l *Helper) Warn(message string) {
	logrus.WithFields(l.fields).Warn(message)
}

