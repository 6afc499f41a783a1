// Package output builds termenv outputs with the colour profile rules used
// across kiln.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// NoColor reports whether NO_COLOR is set.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// ColorProfile returns Ascii under NO_COLOR and the detected terminal profile otherwise.
func ColorProfile() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns Ascii under NO_COLOR and plain ANSI otherwise.
// CI logs use it so colours survive without a TTY.
func ColorProfileANSI() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates a termenv.Output using ColorProfile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile creates a termenv.Output with a custom profile selector.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
