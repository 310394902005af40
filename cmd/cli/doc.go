// Package cli builds the wpsvn command-line interface: the Cobra root command
// with its persistent logging and configuration flags, the layered Viper
// configuration, and the sync subcommand.
package cli
