package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

type htmlPage struct {
	Title  string
	Author string
	Text   string
}

// parseHTML extracts the title, the author meta tag and the visible text of
// an HTML page.
func parseHTML(body io.Reader) (htmlPage, error) {
	var page htmlPage
	tokenizer := html.NewTokenizer(body)
	var textBuilder strings.Builder
	skipDepth := 0
	inTitle := false

	for {
		tokenType := tokenizer.Next()

		switch tokenType {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				page.Title = collapseSpace(page.Title)
				page.Text = collapseSpace(textBuilder.String())
				return page, nil
			}
			return page, tokenizer.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script", "style", "noscript", "template":
				if tokenType == html.StartTagToken {
					skipDepth++
				}
			case "title":
				inTitle = tokenType == html.StartTagToken
			case "meta":
				if strings.EqualFold(attr(token, "name"), "author") {
					page.Author = strings.TrimSpace(attr(token, "content"))
				}
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "script", "style", "noscript", "template":
				if skipDepth > 0 {
					skipDepth--
				}
			case "title":
				inTitle = false
			}

		case html.TextToken:
			data := string(tokenizer.Text())
			if inTitle {
				page.Title += data
				continue
			}
			if skipDepth == 0 {
				if text := strings.TrimSpace(data); text != "" {
					textBuilder.WriteString(text)
					textBuilder.WriteByte(' ')
				}
			}
		}
	}
}

func attr(token html.Token, key string) string {
	for _, a := range token.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
