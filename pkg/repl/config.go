package repl

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the port the bridge server listens on when neither the rc
// file nor the -port flag specifies one.
const DefaultPort = 9000

// DefaultQuitSentinel is the input that terminates the REPL when no other
// sentinel is configured.
const DefaultQuitSentinel = "(exit)"

// Config keeps the configuration of a REPL session, read from the rc file.
type Config struct {
	// Port the bridge server listens on.
	Port int `yaml:"port"`
	// Path to the evaluation history database. Empty disables history.
	DB string `yaml:"db"`
	// Input that terminates the session.
	QuitSentinel string `yaml:"quit-sentinel"`
	// How long one evaluation may take. Zero means no limit.
	EvalTimeout Duration `yaml:"eval-timeout"`
}

// DefaultConfig returns the configuration used when there is no rc file.
func DefaultConfig() Config {
	return Config{Port: DefaultPort, QuitSentinel: DefaultQuitSentinel}
}

// ReadConfig reads the YAML rc file at the given path, applying its values on
// top of the defaults. Unknown keys are errors, to catch typos in the file.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return DefaultConfig(), fmt.Errorf("parse rc file %s: %w", path, err)
	}
	return cfg, nil
}

// Duration wraps time.Duration so that it unmarshals from a Go duration
// string like "10s".
type Duration time.Duration

// UnmarshalYAML implements [yaml.Unmarshaler].
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	err := node.Decode(&s)
	if err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}
