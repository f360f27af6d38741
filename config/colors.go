package config

import (
	"os"

	"github.com/muesli/termenv"
)

const badFileName = "_bad_file_name_"

// ColorProfile returns the richest color profile stream supports, Ascii when
// stream cannot show colors. NO_COLOR and CLICOLOR_FORCE are honored.
func ColorProfile(stream *os.File) termenv.Profile {
	if !EnableColorOutput(stream) {
		return termenv.Ascii
	}
	return termenv.NewOutput(stream).EnvColorProfile()
}
