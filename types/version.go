package types

// Version is the canonical project version.
// The CLI, the run report, and completion events all share this constant.
const Version = "0.3.0"
