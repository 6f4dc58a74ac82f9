// Package image handles browser container image selection.
package image

import (
	"fmt"
	"sort"
)

// DefaultVideoImage is the recorder container image.
const DefaultVideoImage = "selenium/video:ffmpeg-4.3.1-20231004"

// standalone maps a browser family to its standalone Selenium image.
var standalone = map[string]string{
	"firefox": "selenium/standalone-firefox:4.13.0-20231004",
	"chrome":  "selenium/standalone-chrome:4.13.0-20231004",
}

// Resolve determines the image to use for a browser family.
// An explicit override wins; otherwise the browser name selects a
// standalone image from the table. Unknown browsers are a configuration
// error, reported before any container is created.
func Resolve(browserName, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if browserName == "" {
		return "", fmt.Errorf("capabilities missing browserName")
	}
	img, ok := standalone[browserName]
	if !ok {
		return "", fmt.Errorf("no image known for browser %q (supported: %v)", browserName, Browsers())
	}
	return img, nil
}

// Browsers returns the supported browser families, sorted.
func Browsers() []string {
	names := make([]string, 0, len(standalone))
	for name := range standalone {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Override replaces the image for a browser family. Used by config
// loading to apply user-pinned image tags.
func Override(browserName, img string) {
	if browserName != "" && img != "" {
		standalone[browserName] = img
	}
}
