package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/storage/sqlite"
)

// syncBuffer is a bytes.Buffer safe for a command writing while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// writeTestConfig writes a config for lucas and luis and returns its path and the
// database path it points at.
func writeTestConfig(t *testing.T, redisAddr string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "house.db")

	content := fmt.Sprintf(`
[storage]
db_path = %q

[auth]
jwt_secret = "test-secret"

[notify]
redis_addr = %q

[log]
level = "error"

[[members]]
id = "lucas"
name = "Lucas"

[[members]]
id = "luis"
name = "Luis"
`, dbPath, redisAddr)

	path := filepath.Join(dir, "housesplit.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, dbPath
}

func execute(t *testing.T, ctx context.Context, out *syncBuffer, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.ExecuteContext(ctx)
}

func seedExpense(t *testing.T, dbPath string) {
	t.Helper()
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	e := models.Expense{
		Amount:       decimal.NewFromInt(60),
		Payer:        "lucas",
		Participants: []models.MemberID{"lucas", "luis"},
		Split:        models.EqualSplit{},
		Period:       "2025-03",
		Category:     "utilities",
	}
	require.NoError(t, store.CreateExpense(context.Background(), &e))
}

func TestHashPIN(t *testing.T) {
	var out syncBuffer
	require.NoError(t, execute(t, context.Background(), &out, "hash-pin", "4321"))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("4321")))

	assert.Error(t, execute(t, context.Background(), &syncBuffer{}, "hash-pin", "43"))
}

func TestReport(t *testing.T) {
	configPath, dbPath := writeTestConfig(t, "")
	seedExpense(t, dbPath)

	var out syncBuffer
	require.NoError(t, execute(t, context.Background(), &out, "report", "--config", configPath, "--period", "2025-03"))

	got := out.String()
	assert.Contains(t, got, "2025-03")
	assert.Contains(t, got, "Lucas")
	assert.Contains(t, got, "+30.00")
	assert.Contains(t, got, "-30.00")
	assert.Contains(t, got, "pending")
}

func TestReport_RejectsBadPeriod(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")
	err := execute(t, context.Background(), &syncBuffer{}, "report", "--config", configPath, "--period", "March")
	assert.ErrorIs(t, err, models.ErrInvalidPeriod)
}

func TestWatch_RequiresRedis(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")
	err := execute(t, context.Background(), &syncBuffer{}, "watch", "--config", configPath, "--period", "2025-03")
	assert.ErrorIs(t, err, errNoRedis)
}

func TestWatch_RerendersOnChange(t *testing.T) {
	mr := miniredis.RunT(t)
	configPath, dbPath := writeTestConfig(t, mr.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(t, ctx, &out, "watch", "--config", configPath, "--period", "2025-03")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Nothing to settle")
	}, 5*time.Second, 20*time.Millisecond)

	seedExpense(t, dbPath)
	publisher, err := notify.Dial(ctx, mr.Addr(), "")
	require.NoError(t, err)
	defer publisher.Close()

	// Changes for other months are ignored.
	require.NoError(t, publisher.Publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpCreated, Period: "2025-04"}))
	require.NoError(t, publisher.Publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpCreated, Period: "2025-03"}))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "1 of 1 transfers outstanding")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
