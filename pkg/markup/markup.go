// Package markup converts loosely structured model output into styled HTML.
//
// Render applies a fixed, order-sensitive sequence of rewrites: headings,
// bullets, list wrapping, paragraph splitting, inline emphasis, and finally
// presentation classes. Input that already contains block markup is returned
// unchanged.
package markup

import (
	"regexp"
	"strings"
)

// Class attributes injected into rendered elements.
const (
	ParagraphTag = `<p class="my-paragraph" dir="ltr">`
	ListTag      = `<ul class="list-disc list-inside">`
	StrongTag    = `<strong class="font-bold">`
	Heading2Tag  = `<h2 class="text-xl font-bold mb-4">`
	Heading3Tag  = `<h3 class="text-lg font-semibold mb-2">`
	PreWrapSpan  = `<span style="white-space: pre-wrap;">`
)

var passthroughTokens = []string{"<p>", "<div>", "<ul>"}

var (
	headingPattern   = regexp.MustCompile(`(?m)^([A-Z][A-Z \t]*):[ \t]*$`)
	bulletPattern    = regexp.MustCompile(`(?m)^- (.+)$`)
	listRunPattern   = regexp.MustCompile(`(?s)<li>.*?</li>(?:\s*<li>.*?</li>)*`)
	paragraphBreak   = regexp.MustCompile(`\n{2,}`)
	strongEmPattern  = regexp.MustCompile(`\*\*\*([^*\n]+)\*\*\*`)
	boldPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern    = regexp.MustCompile(`\*([^*\n]+)\*`)
	listBlockPattern = regexp.MustCompile(`(?s)<ul>.*?</ul>`)
	headLinePattern  = regexp.MustCompile(`^<h3>[^\n]*</h3>$`)
	listItemInner    = regexp.MustCompile(`(?s)(<li[^>]*>)(.*?)(</li>)`)
	paragraphInner   = regexp.MustCompile(`(?s)(<p[^>]*>)(.*?)(</p>)`)
)

// IsMarkup reports whether text already contains block-level markup.
func IsMarkup(text string) bool {
	for _, tok := range passthroughTokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// Render converts raw text to styled HTML. Text for which IsMarkup is true
// is returned byte-for-byte unchanged.
func Render(text string) string {
	if IsMarkup(text) {
		return text
	}
	return Style(Convert(text))
}

// Convert turns raw text into unstyled HTML: <h3>, <ul>/<li>, <p>, <strong>, <em>.
func Convert(text string) string {
	html := strings.ReplaceAll(text, "\r\n", "\n")

	html = headingPattern.ReplaceAllString(html, "<h3>$1</h3>")
	html = bulletPattern.ReplaceAllString(html, "<li>$1</li>")
	html = listRunPattern.ReplaceAllString(html, "<ul>$0</ul>")
	html = paragraphs(html)

	// Triple markers resolve before bold, and bold before italic, or the
	// leftover asterisks would pair across tags.
	html = strongEmPattern.ReplaceAllString(html, "<strong><em>$1</em></strong>")
	html = boldPattern.ReplaceAllString(html, "<strong>$1</strong>")
	html = italicPattern.ReplaceAllString(html, "<em>$1</em>")

	return html
}

// Style injects presentation classes and wraps paragraph and list-item
// contents in a whitespace-preserving span.
func Style(html string) string {
	html = strings.NewReplacer(
		"<p>", ParagraphTag,
		"<ul>", ListTag,
		"<strong>", StrongTag,
		"<h2>", Heading2Tag,
		"<h3>", Heading3Tag,
	).Replace(html)

	wrap := "${1}" + PreWrapSpan + "${2}</span>${3}"
	html = listItemInner.ReplaceAllString(html, wrap)
	html = paragraphInner.ReplaceAllString(html, wrap)

	return html
}

// paragraphs wraps loose text in <p>. A <ul> run is emitted whole even when
// its items are separated by blank lines, and heading lines at the top of
// a chunk stand on their own.
func paragraphs(html string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range listBlockPattern.FindAllStringIndex(html, -1) {
		textBlocks(&sb, html[last:loc[0]])
		sb.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}
	textBlocks(&sb, html[last:])
	return sb.String()
}

func textBlocks(sb *strings.Builder, text string) {
	for _, chunk := range paragraphBreak.Split(text, -1) {
		chunk = strings.Trim(chunk, "\n")
		for strings.HasPrefix(chunk, "<h3>") {
			line, rest, _ := strings.Cut(chunk, "\n")
			if !headLinePattern.MatchString(line) {
				break
			}
			sb.WriteString(line)
			chunk = strings.TrimLeft(rest, "\n")
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(chunk)
		sb.WriteString("</p>")
	}
}
