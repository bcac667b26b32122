package integration

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

var userSeq int64

// TestRegistration builds a valid registration payload with a unique email
func TestRegistration(suffix string) map[string]interface{} {
	n := atomic.AddInt64(&userSeq, 1)
	return map[string]interface{}{
		"first_name":    "Teste",
		"last_name":     suffix,
		"email":         TestEmail(suffix, n),
		"password":      "TestPassword123!",
		"phone":         "923000000",
		"birth_date":    "1992-06-01",
		"province":      "Luanda",
		"municipality":  "Belas",
		"neighborhood":  "Benfica",
		"services":      []string{"limpeza"},
		"contract_type": "diarista",
		"availability":  "full_time",
	}
}

// TestEmail generates a unique test email address
func TestEmail(suffix string, n int64) string {
	return fmt.Sprintf("test-%d-%d-%s@example.com", time.Now().Unix(), n, suffix)
}

// PromoteToRole elevates a user directly in the database. There is no API
// path to mint the first admin, production bootstraps it from the
// environment.
func (ts *TestServer) PromoteToRole(ctx context.Context, email, role string) error {
	tag, err := ts.DB.Pool.Exec(ctx, "UPDATE users SET role = $1 WHERE email = $2", role, email)
	if err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("no user with email %s", email)
	}
	return nil
}
