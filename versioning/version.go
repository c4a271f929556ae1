package versioning

// Populated through ldflags at build time.
var (
	Version   string
	Commit    string
	Branch    string
	BuildTime string
)
