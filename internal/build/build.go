package build

// Version of the binary, set at build time with
// -ldflags "-X github.com/xtding233/buffon-needle/internal/build.Version=..."
var Version = "0.0.0"
