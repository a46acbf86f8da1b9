// Package translate formats user facing text for the current locale.
package translate

import (
	"log"
	"slices"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

var locales []string

func init() {
	var err error
	locales, err = locale.GetLocales()
	if err != nil {
		log.Printf("pbrain: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Locales returns the user's preferred locales, en-US if none were found.
func Locales() []string {
	return slices.Clone(locales)
}
