// Package locale detects the user's preferred language from the process
// environment.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Detect returns the best-guess language tag for the current process,
// derived from the POSIX locale environment variables.
func Detect() (language.Tag, error) {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v, ok := os.LookupEnv(name)
		if !ok || len(v) == 0 {
			continue
		}
		if v == "C" || v == "POSIX" {
			continue
		}
		// strip encoding/modifier suffixes: zh_CN.UTF-8@pinyin -> zh_CN
		if i := strings.IndexAny(v, ".@"); i != -1 {
			v = v[:i]
		}
		v = strings.ReplaceAll(v, "_", "-")
		tag, err := language.Parse(v)
		if err != nil {
			continue
		}
		return tag, nil
	}
	return language.AmericanEnglish, nil
}
