// Package testutil provides an in-memory database and a recording mailer
// for tests.
package testutil

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/database"
	"github.com/yukikurage/timewise-api/internal/mailer"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends. The pool is limited to one connection so every query sees the
// same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

// Recorder is a Mailer that keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []mailer.Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.messages...)
}

// Last returns the most recent message.
func (r *Recorder) Last(t *testing.T) mailer.Message {
	t.Helper()
	msgs := r.Messages()
	require.NotEmpty(t, msgs, "no mail was sent")
	return msgs[len(msgs)-1]
}

var tokenParam = regexp.MustCompile(`[?&]token=([^\s&]+)`)

// TokenFromMail extracts the token query parameter from a mailed link.
func TokenFromMail(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := tokenParam.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, "mail body has no token link")
	tok, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return tok
}
