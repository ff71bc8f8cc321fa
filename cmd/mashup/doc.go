// Command mashup builds audio mashups from search results.
//
// Invoked with four positional arguments it runs the pipeline in the
// foreground:
//
//	mashup <SearchTerm> <Count> <ClipSeconds> <OutputFile>
//
// Subcommands run the HTTP daemon (serve), inspect job history (jobs),
// query a running daemon (status), report external binaries (deps), and
// manage configuration (config init, config validate).
package main
