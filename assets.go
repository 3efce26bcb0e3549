// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// AssembleDocument wraps rendered body HTML with its CSS and signal JS,
// per spec.md §4.4 "Final document assembly" / §6 "Asset naming". In
// inline mode (assetPrefix == "") it returns the body HTML followed by
// <style>/<script> elements holding verbatim content (no <html>/<head>
// wrapper is added) and a nil asset map. In
// separated-assets mode it returns a document with <link>/<script src>
// elements injected into <head> and before </body>, adapted from html.go's
// NewHtmlProcessor (there, driven by esbuild's on-disk output files; here,
// by the compiler's own in-memory CSS/JS text), plus the named asset map
// itself.
func AssembleDocument(bodyHTML, css, js, assetPrefix string) (document string, assets map[string]string, err error) {
	if assetPrefix == "" {
		var b strings.Builder
		b.WriteString(bodyHTML)
		if css != "" {
			b.WriteString("<style>")
			b.WriteString(css)
			b.WriteString("</style>")
		}
		if js != "" {
			b.WriteString("<script>")
			b.WriteString(js)
			b.WriteString("</script>")
		}
		return b.String(), nil, nil
	}

	assets = make(map[string]string)
	doc, err := html.Parse(strings.NewReader("<html><head></head><body>" + bodyHTML + "</body></html>"))
	if err != nil {
		return "", nil, err
	}
	head := htmlquery.FindOne(doc, "//head")
	body := htmlquery.FindOne(doc, "//body")

	if css != "" {
		name := "van-" + contentHash(css) + ".css"
		assets[name] = css
		link := &html.Node{
			Type: html.ElementNode,
			Data: "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: assetPrefix + name},
			},
		}
		head.AppendChild(link)
	}
	if js != "" {
		name := "van-" + contentHash(js) + ".js"
		assets[name] = js
		script := &html.Node{
			Type: html.ElementNode,
			Data: "script",
			Attr: []html.Attribute{
				{Key: "src", Val: assetPrefix + name},
			},
		}
		body.AppendChild(script)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", nil, err
	}
	return buf.String(), assets, nil
}
