// Package utils holds the ambient plumbing shared by relkit commands.
//
// ConfigurationLoader layers defaults, the embedded configuration, an optional
// file and RELKIT_ environment variables through Viper. LoggerFactory builds the
// zap logger in structured or console form. FlushingWriter keeps streamed
// subprocess output visible while a release step is running.
package utils
