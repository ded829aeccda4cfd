package generator

import (
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

var minifier = func() *minify.M {
	m := minify.New()
	m.Add("text/html", &mhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}()

// Optimize minifies rendered HTML. On any minifier failure the original
// markup is returned unchanged; optimization is best-effort and must never
// fail a compilation.
func Optimize(htmlStr string) string {
	out, err := minifier.String("text/html", htmlStr)
	if err != nil {
		return htmlStr
	}
	return out
}
