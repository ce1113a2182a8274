package mailsource

import (
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"steam-ledger/internal/batch"
	"steam-ledger/internal/config"
	"steam-ledger/internal/logging"
)

// Connection retry bounds. Authentication and folder selection may fail
// transiently; exhausting the attempts is fatal for the run.
const (
	DefaultConnectAttempts = 12
	DefaultRetryDelay      = 5 * time.Second
)

// IMAPOptions configures an IMAPSource.
type IMAPOptions struct {
	Address    string // mailbox login / account address
	Server     string // server host, optionally host:port (default port 993)
	Folder     string // mailbox folder, e.g. "INBOX"
	FromFilter string // sender filter applied to the listing search
	SecretID   string // credential-provider key for the mailbox password
	MarkSeen   bool   // fetch without BODY.PEEK, marking messages read

	// Zero values fall back to DefaultConnectAttempts/DefaultRetryDelay.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// IMAPSource fetches confirmation messages over IMAPS. Message identifiers
// are mailbox UIDs rendered as decimal strings.
type IMAPSource struct {
	opts   IMAPOptions
	creds  config.CredentialProvider
	logger logging.Logger
	client *imapclient.Client
}

// NewIMAP creates an IMAP-backed source. The credential provider is
// consulted lazily on first connect.
func NewIMAP(opts IMAPOptions, creds config.CredentialProvider, logger logging.Logger) *IMAPSource {
	if opts.Folder == "" {
		opts.Folder = "INBOX"
	}
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = DefaultConnectAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &IMAPSource{
		opts:   opts,
		creds:  creds,
		logger: logger,
	}
}

// connect dials, authenticates and selects the folder, retrying a bounded
// number of times with a fixed delay. The established client is kept for
// subsequent calls.
func (s *IMAPSource) connect() error {
	if s.client != nil {
		return nil
	}

	secret, err := s.creds.GetSecret(s.opts.SecretID, s.opts.Address)
	if err != nil {
		return fmt.Errorf("resolve mailbox credential: %w", err)
	}

	addr := s.opts.Server
	if !strings.Contains(addr, ":") {
		addr += ":993"
	}

	var lastErr error
	for attempt := 1; attempt <= s.opts.ConnectAttempts; attempt++ {
		client, err := s.dial(addr, secret)
		if err == nil {
			s.client = client
			return nil
		}
		lastErr = err
		s.logger.WithError(err).Warn("mailbox connection attempt failed",
			logging.Field{Key: logging.FieldAttempt, Value: attempt})
		if attempt < s.opts.ConnectAttempts {
			time.Sleep(s.opts.RetryDelay)
		}
	}
	return fmt.Errorf("connect to %s after %d attempts: %w", addr, s.opts.ConnectAttempts, lastErr)
}

func (s *IMAPSource) dial(addr, secret string) (*imapclient.Client, error) {
	client, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{ServerName: strings.Split(addr, ":")[0]},
	})
	if err != nil {
		return nil, fmt.Errorf("imap connect %s: %w", addr, err)
	}
	if err := client.Login(s.opts.Address, secret).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap login %s: %w", s.opts.Address, err)
	}
	if _, err := client.Select(s.opts.Folder, nil).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("imap select %s: %w", s.opts.Folder, err)
	}
	return client, nil
}

// List returns the UIDs of messages matching the sender filter, bounded
// below by since when non-zero.
func (s *IMAPSource) List(since time.Time) ([]string, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{}
	if s.opts.FromFilter != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: s.opts.FromFilter},
		}
	}
	if !since.IsZero() {
		criteria.Since = since
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	uids := searchData.AllUIDs()
	ids := make([]string, len(uids))
	for i, uid := range uids {
		ids[i] = strconv.FormatUint(uint64(uid), 10)
	}

	s.logger.Debug("listed mailbox messages",
		logging.Field{Key: logging.FieldFolder, Value: s.opts.Folder},
		logging.Field{Key: logging.FieldCount, Value: len(ids)})
	return ids, nil
}

// Fetch bulk-fetches one batch of UIDs. The request is compacted into
// seq-set ranges; an oversized batch rejected by the server surfaces as an
// error (a configuration problem, not retried).
func (s *IMAPSource) Fetch(ids []string) (map[string][]byte, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}

	uidSet, err := uidSetFromIDs(ids)
	if err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{Peek: !s.opts.MarkSeen}
	fetchCmd := s.client.Fetch(uidSet, &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})

	buffers, err := fetchCmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	messages := make(map[string][]byte, len(buffers))
	for _, buf := range buffers {
		content := buf.FindBodySection(bodySection)
		id := strconv.FormatUint(uint64(buf.UID), 10)
		if len(content) == 0 {
			s.logger.Warn("empty body, skipping",
				logging.Field{Key: logging.FieldMessageID, Value: id})
			continue
		}
		messages[id] = content
	}
	return messages, nil
}

// Close logs out and drops the connection.
func (s *IMAPSource) Close() error {
	if s.client == nil {
		return nil
	}
	client := s.client
	s.client = nil
	if err := client.Logout().Wait(); err != nil {
		client.Close()
		return fmt.Errorf("imap logout: %w", err)
	}
	return client.Close()
}

// uidSetFromIDs converts a batch of decimal UID strings into a compacted
// UID set, merging contiguous runs into ranges.
func uidSetFromIDs(ids []string) (imap.UIDSet, error) {
	var set imap.UIDSet
	compacted := batch.Compact(ids)
	if compacted == "" {
		return set, fmt.Errorf("empty id batch")
	}
	for _, token := range strings.Split(compacted, batch.Separator) {
		bounds := strings.SplitN(token, batch.RangeSeparator, 2)
		start, err := strconv.ParseUint(bounds[0], 10, 32)
		if err != nil {
			return set, fmt.Errorf("non-numeric message id %q for IMAP source: %w", token, err)
		}
		if len(bounds) == 1 {
			set.AddNum(imap.UID(start))
			continue
		}
		end, err := strconv.ParseUint(bounds[1], 10, 32)
		if err != nil {
			return set, fmt.Errorf("non-numeric message id %q for IMAP source: %w", token, err)
		}
		set.AddRange(imap.UID(start), imap.UID(end))
	}
	return set, nil
}
