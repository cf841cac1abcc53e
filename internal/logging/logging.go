package logging

import "go.uber.org/zap"

// New creates the service logger.
func New() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger.Sugar()
}
