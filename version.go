package kinema

// Version is the module release. Release builds override it with
// -ldflags "-X github.com/aretw0/kinema.Version=...".
var Version = "0.3.0-dev"
