package document

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pkg/errors"
)

// FromHTML converts pasted HTML into canonical markdown text, which can
// then be fed through Decode like any other external change
func FromHTML(html string) (string, error) {
	converter := htmltomarkdown.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert HTML to markdown")
	}
	return markdown, nil
}
