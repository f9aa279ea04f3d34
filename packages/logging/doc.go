// Package logging builds the zap loggers used across urlmock.
//
// Every component takes a *zap.Logger through a WithLogger option and falls
// back to Nop when none is given, so logging is always optional:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "debug",
//	    Format: logging.FormatJSON,
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
package logging
