package database

import (
	"fmt"
	"net/url"
	"strings"
)

// buildConnectionString generates a modernc.org/sqlite DSN from options.
// Pragmas are passed as _pragma parameters so every pooled connection gets them.
func (opts *SQLiteOptions) buildConnectionString() string {
	params := url.Values{}

	// busy_timeout goes first so later pragmas wait on locks
	if opts.BusyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout))
	}
	if opts.ForeignKeys {
		params.Add("_pragma", "foreign_keys(1)")
	} else {
		params.Add("_pragma", "foreign_keys(0)")
	}
	if opts.Journal != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", opts.Journal))
	}
	if opts.Synchronous != "" {
		params.Add("_pragma", fmt.Sprintf("synchronous(%s)", opts.Synchronous))
	}
	if opts.CacheSize != 0 {
		params.Add("_pragma", fmt.Sprintf("cache_size(%d)", opts.CacheSize))
	}
	if opts.TxLock != "" {
		params.Set("_txlock", opts.TxLock)
	}
	if opts.Cache != "" {
		params.Set("cache", string(opts.Cache))
	}
	if opts.Mode != "" {
		params.Set("mode", opts.Mode)
	}

	connStr := opts.Path
	if !strings.HasPrefix(connStr, "file:") {
		connStr = "file:" + connStr
	}
	if encoded := params.Encode(); encoded != "" {
		connStr += "?" + encoded
	}

	return connStr
}
