package buildinfo

const Graffiti = " _   _ ____                        \n| \\ | | __ )  __ _ _   _  ___  ___ \n|  \\| |  _ \\ / _` | | | |/ _ \\/ __|\n| |\\  | |_) | (_| | |_| |  __/\\__ \\\n|_| \\_|____/ \\__,_|\\__, |\\___||___/\n                   |___/           \n\n"

// Set with -ldflags "-X github.com/go-sod/nbayes/internal/buildinfo.BuildTag=..."
var (
	BuildTag string = "v0.0.0"
	Name     string = "NBAYES"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
