package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrorHandler logs the underlying error and returns a wrapped one carrying
// the caller's message, which is the text handlers surface to clients.
func ErrorHandler(err error, message string) error {
	if err == nil {
		return nil
	}
	Logger.WithFields(logrus.Fields{
		"error": err.Error(),
	}).Error(message)
	return fmt.Errorf("%s: %w", message, err)
}
