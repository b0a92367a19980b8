package stoker

// Version is the stoker release version.
const Version = "0.1.0"
