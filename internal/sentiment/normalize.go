package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func StripTags(input string) string {
	return tagPattern.ReplaceAllString(input, " ")
}

// Normalize turns a pasted review (HTML fragments, markdown, links) into plain text
// suitable for scoring. Whitespace is collapsed to single spaces.
func Normalize(input string) string {
	text := RemoveLinks(StripTags(input))
	rendered := blackfriday.Run([]byte(text), blackfriday.WithNoExtensions())
	text = html.UnescapeString(StripTags(string(rendered)))

	return strings.Join(strings.Fields(text), " ")
}
