// Command recook-extract recovers structured JSON from raw model output.
//
// It reads the text from a file argument or stdin, extracts a value of the
// requested shape and prints the same envelope the edge functions return:
//
//	{"success":true,"data":...}
//	{"success":false,"error":"could not interpret response","reason":"...","snippet":"..."}
//
// Flags can also be set through RECOOK_* environment variables or a .env file
// in the working directory, e.g. RECOOK_REPAIR=true.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
