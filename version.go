package portgraph

// Version is the release of the module, reported by the CLI and the servers.
const Version = "0.3.0"
