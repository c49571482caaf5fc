package types

// Version is the canonical project version.
// The CLI and the wire protocol docs reference this constant.
const Version = "0.3.0"
