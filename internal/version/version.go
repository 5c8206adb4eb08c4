package version

// Version is the current release of gtt-print.
const Version = "0.3.0"

func FullVersion() string {
	return "v" + Version
}
