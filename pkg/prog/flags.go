package prog

import "flag"

// FlagSet wraps a [flag.FlagSet], and provides methods for registering flags
// shared by multiple subprograms.
type FlagSet struct {
	*flag.FlagSet
	bridge *BridgeFlags
	json   *bool
}

// BridgeFlags keeps the flags describing how to run the evaluation bridge.
// Negative Port and empty DB mean "not set on the command line"; the rc file
// value, or the built-in default, applies then.
type BridgeFlags struct {
	// Port the bridge server listens on. 0 lets the OS pick a port.
	Port int
	// Path to the evaluation history database. Empty disables history.
	DB string
	// Path to the rc file. Empty uses no rc file.
	RC string
}

// Bridge returns the flags describing how to run the evaluation bridge,
// registering them on first use. The flags are shared by the REPL and control
// subprograms.
func (fs *FlagSet) Bridge() *BridgeFlags {
	if fs.bridge == nil {
		var bf BridgeFlags
		fs.IntVar(&bf.Port, "port", -1,
			"Port for the bridge server to listen on (default from the rc file, or 9000)")
		fs.StringVar(&bf.DB, "db", "",
			"Path to the evaluation history database")
		fs.StringVar(&bf.RC, "rc", "", "Path to the rc file")
		fs.bridge = &bf
	}
	return fs.bridge
}

// JSON returns a pointer to the value of the shared -json flag, registering it
// on first use.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"Show the output from -buildinfo or -version in JSON")
		fs.json = &json
	}
	return fs.json
}
