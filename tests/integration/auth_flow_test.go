package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDB *TestDB
	ts     *TestServer
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = SetupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up test database: %v\n", err)
		os.Exit(1)
	}

	ts = NewTestServer(testDB.DB)

	code := m.Run()

	ts.Close()
	_ = testDB.Teardown(ctx)
	os.Exit(code)
}

// resetState wipes all mutable data before a test runs.
func resetState(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.CleanupTables(context.Background()))
}

// registerUser registers a fresh account and returns its client, user id
// and credentials. The register endpoint also signs the client in.
func registerUser(t *testing.T, suffix string) (client *Client, userID, email, password string) {
	t.Helper()

	client = ts.NewClient()
	payload := TestRegistration(suffix)

	resp, err := client.Do(http.MethodPost, "/auth/register", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user struct {
		ID string `json:"id"`
	}
	require.NoError(t, ParseJSONResponse(resp, &user))
	require.NotEmpty(t, user.ID)

	return client, user.ID, payload["email"].(string), payload["password"].(string)
}

// registerAdmin registers an account and elevates it. The existing session
// picks the new role up on the next request because sessions resolve the
// user fresh every time.
func registerAdmin(t *testing.T, suffix string) (*Client, string) {
	t.Helper()

	client, userID, email, _ := registerUser(t, suffix)
	require.NoError(t, ts.PromoteToRole(context.Background(), email, "admin"))
	return client, userID
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	resetState(t)

	client, userID, email, password := registerUser(t, "lifecycle")

	// The registration response signed us in.
	resp, err := client.Do(http.MethodGet, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, ParseJSONResponse(resp, &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, email, me.Email)

	resp, err = client.Do(http.MethodPost, "/auth/logout", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Do(http.MethodGet, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A fresh login restores access.
	resp, err = client.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Do(http.MethodGet, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginFailuresAreUniform(t *testing.T) {
	resetState(t)

	_, _, email, _ := registerUser(t, "uniform")

	attacker := ts.NewClient()

	wrongPassword, err := attacker.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "WrongPassword123!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	wrongCode, err := GetErrorCode(wrongPassword)
	require.NoError(t, err)

	unknownEmail, err := attacker.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "WrongPassword123!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	unknownCode, err := GetErrorCode(unknownEmail)
	require.NoError(t, err)

	// Wrong password and unknown account must be indistinguishable.
	assert.Equal(t, wrongCode, unknownCode)
}

func TestSuspensionBlocksLoginAndRevokesSessions(t *testing.T) {
	resetState(t)

	victim, victimID, victimEmail, victimPassword := registerUser(t, "victim")
	admin, _ := registerAdmin(t, "moderator")

	resp, err := admin.Do(http.MethodPut, "/admin/users/"+victimID+"/status", map[string]string{
		"status": "suspended",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The victim's existing session died with the suspension.
	resp, err = victim.Do(http.MethodGet, "/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// And they cannot sign back in.
	resp, err = victim.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    victimEmail,
		"password": victimPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	resetState(t)

	first, _, email, password := registerUser(t, "rotate")

	// Second browser session for the same account.
	second := ts.NewClient()
	resp, err := second.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = first.Do(http.MethodPost, "/auth/change-password", map[string]string{
		"current_password": password,
		"new_password":     "RotatedSecret456!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Both sessions are gone, the new password works.
	for _, c := range []*Client{first, second} {
		resp, err = c.Do(http.MethodGet, "/auth/me", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err = second.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "RotatedSecret456!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPasswordRecoveryFlow(t *testing.T) {
	resetState(t)

	client, _, email, oldPassword := registerUser(t, "recovery")
	resp, err := client.Do(http.MethodPost, "/auth/logout", nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Do(http.MethodPost, "/auth/recover", map[string]string{
		"email": email,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	sent := ts.EmailService.GetLastEmail()
	require.NotNil(t, sent)
	assert.Equal(t, email, sent.To)
	require.NotEmpty(t, sent.Token)

	resp, err = client.Do(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":        sent.Token,
		"new_password": "RecoveredSecret789!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The token is single use.
	resp, err = client.Do(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":        sent.Token,
		"new_password": "AnotherSecret000!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": oldPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Do(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "RecoveredSecret789!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRecoveryForUnknownEmailLooksIdentical(t *testing.T) {
	resetState(t)

	before := len(ts.EmailService.SentEmails)

	client := ts.NewClient()
	resp, err := client.Do(http.MethodPost, "/auth/recover", map[string]string{
		"email": "nobody@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	// Accepted, but nothing was sent.
	assert.Len(t, ts.EmailService.SentEmails, before)
}
