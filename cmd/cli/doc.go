// Package cli constructs the relkit command-line interface: the Cobra root
// command, the layered Viper configuration with its embedded defaults, the zap
// logger, and the release and versions subcommands.
package cli
