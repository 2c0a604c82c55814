// Package logger provides logging facilities for the gitdrip application.
//
// It defines the Logger interface used throughout the codebase and a default
// implementation backed by zerolog. Internal debug messages flow into a
// structured sink (a JSON log file, or a console writer on stderr), while
// user-facing messages are printed as single plain lines so an operator
// tailing the output can reconstruct the cycle history without consulting
// git logs.
//
// The message types split across two audiences:
//
//   - Info, Warning, Error: internal, structured, only recorded when debug
//     logging is enabled (errors and verbose-mode warnings also reach the user)
//   - InfoToUser, WarningToUser, Success, StatusMessage: always printed
//
// Basic usage:
//
//	log := logger.New(cfg.Debug, cfg.LogFile, !cfg.Quiet)
//	defer log.Close()
//	log.InfoToUser("watching %s", cfg.RepoPath)
package logger
