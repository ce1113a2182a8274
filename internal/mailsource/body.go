package mailsource

import (
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ExtractText reduces a raw message to the text the parser scans: the
// subject line followed by the decoded text/plain part. MIME decoding
// handles transfer encodings and charsets; anything that is not parseable
// as a MIME message (such as a pre-extracted local file) passes through
// unchanged.
func ExtractText(raw []byte) string {
	reader, err := mail.CreateReader(strings.NewReader(string(raw)))
	if err != nil {
		return string(raw)
	}
	defer reader.Close()

	subject, _ := reader.Header.Subject()

	var plain, fallback string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		if contentType == "text/plain" {
			plain = string(body)
			break
		}
		if fallback == "" {
			fallback = string(body)
		}
	}

	if plain == "" {
		plain = fallback
	}
	if plain == "" {
		return string(raw)
	}
	if subject == "" {
		return plain
	}
	return fmt.Sprintf("Subject: %s\n\n%s", subject, plain)
}
