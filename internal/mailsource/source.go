// Package mailsource abstracts where confirmation messages come from: a
// remote IMAP mailbox or a local directory of message files. Both produce
// string identifiers consumed by the same downstream pipeline.
package mailsource

import "time"

// Source lists and fetches raw messages.
//
// List returns identifiers ordered by the underlying source; a zero since
// means no lower bound. Fetch resolves one batch of identifiers to raw
// message bytes in a single bulk request. Implementations are not safe for
// concurrent calls; the orchestrator issues one call at a time.
type Source interface {
	List(since time.Time) ([]string, error)
	Fetch(ids []string) (map[string][]byte, error)
	Close() error
}
