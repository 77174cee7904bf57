package version

// Version is the release tag stamped into --version output.
var Version = "0.2.0"
