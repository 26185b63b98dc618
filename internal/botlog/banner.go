package botlog

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// BannerWidth is the width of the `=` rules framing interactive banners.
const BannerWidth = 80

func Rule() string {
	return strings.Repeat("=", BannerWidth)
}

// Center pads text so it renders centered within the banner width. Emoji and
// wide runes count by display width, not byte length.
func Center(text string) string {
	w := runewidth.StringWidth(text)
	if w >= BannerWidth {
		return text
	}
	return strings.Repeat(" ", (BannerWidth-w)/2) + text
}
