package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portalUserJSON = `{"id":77,"name":"Ana Souza","login":"ana.souza","locationId":9321}`

const caseRecordsPage = `<html><body>
<form id="navbar" action="/portal/case/records">
<input type="hidden" name="javax.faces.ViewState" value="j_id42:records" />
<input type="submit" id="navbar:j_id285" onclick="startDownloadTimer();A4J.AJAX.Submit('navbar')" value="Download" />
</form>
</body></html>`

func TestDoctypesListsFilterTable(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "doctypes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "judgment")
	assert.Contains(t, stdout, "62")
	assert.Contains(t, stdout, "initial-petition")
	assert.Contains(t, stdout, "12")
}

func TestSessionStatusWithoutSavedSession(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "session", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No saved session.")
}

func TestSessionStatusReportsSavedSession(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cookies: 1")
	assert.Contains(t, stdout, "usable")
}

func TestSessionStatusFlagsExpiredSession(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now().Add(-24*time.Hour)))

	stdout, _, err := executeCLI(t, home, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "expired")
}

func TestSessionClearRemovesSavedSession(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "session", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved session removed.")

	stdout, _, err = executeCLI(t, home, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No saved session.")
}

func TestAuthSetRequiresPasswordFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "auth", "set", "--user", "clerk77")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"pass\" not set")
}

func TestAuthSetThenClear(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "auth", "set", "--user", "clerk77", "--pass", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Credentials stored for clerk77")

	raw, err := os.ReadFile(filepath.Join(home, ".docket", "credentials.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "clerk77")

	stdout, _, err = executeCLI(t, home, "auth", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored credentials removed.")

	_, err = os.Stat(filepath.Join(home, ".docket", "credentials.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWhoamiWithoutCredentialsFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials missing")
}

func TestWhoamiUsesSavedSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/portal-api/api/user/current", r.URL.Path)
		assert.Contains(t, r.Header.Get("Cookie"), "JSESSIONID=sess-cli")
		_, _ = w.Write([]byte(portalUserJSON))
	}))
	defer server.Close()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)

	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Authenticated as Ana Souza (ana.souza)")
	assert.Contains(t, stdout, "context id 9321")
}

func TestQueueListShowsPendingQueues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/portal-api/api/user/current":
			_, _ = w.Write([]byte(portalUserJSON))
		case "/portal-api/api/workdesk/queues":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "9321", r.Header.Get("X-Portal-Context"))
			_, _ = w.Write([]byte(`[{"id":4,"name":"Draft Judgment","pendingCount":2},{"id":5,"name":"Archive","pendingCount":0}]`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)

	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "queue", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Draft Judgment  (2 pending)")
	assert.NotContains(t, stdout, "Archive")
}

func TestContextListShowsOperatingContexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/portal-api/api/user/current":
			_, _ = w.Write([]byte(portalUserJSON))
		case "/portal/home":
			_, _ = w.Write([]byte(`<html><body>
<a id="roleForm:roleTable:0:roleLink" href="#">5th Civil Court / Clerk</a>
<a id="roleForm:roleTable:1:roleLink" href="#">2nd Criminal Court / Judge Assistant</a>
</body></html>`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)

	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "context", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0  5th Civil Court / Clerk")
	assert.Contains(t, stdout, "1  2nd Criminal Court / Judge Assistant")
}

func TestPickupListsAvailableBundles(t *testing.T) {
	expires := time.Now().Add(48 * time.Hour).UnixMilli()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/portal-api/api/user/current":
			_, _ = w.Write([]byte(portalUserJSON))
		case "/portal-api/api/docs/v1/downloads/available":
			assert.Equal(t, "77", r.URL.Query().Get("userId"))
			assert.Equal(t, "FIRST_INSTANCE", r.URL.Query().Get("origin"))
			_, _ = fmt.Fprintf(w, `{"availableDownloads":[{"userId":77,"fileName":"bundle-a.zip","downloadHash":"hash-a","expiresAt":%d,"status":"AVAILABLE","items":[{"caseNumber":"0001234-55.2024.8.05.0001"}]}]}`, expires)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)

	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "pickup")
	require.NoError(t, err)
	assert.Contains(t, stdout, "hash-a  bundle-a.zip")
	assert.Contains(t, stdout, "expires in")
	assert.Contains(t, stdout, "covers 0001234-55.2024.8.05.0001")
}

func TestLoginHandshakeWithFlagsSavesSession(t *testing.T) {
	portalSrv, ssoSrv := signOnFixture(t, "clerk77", "hunter2")

	t.Setenv("DOCKET_PORTAL_BASE_URL", portalSrv.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", ssoSrv.URL)
	t.Setenv("DOCKET_FETCH_DELAY_MIN", "1ms")
	t.Setenv("DOCKET_FETCH_DELAY_MAX", "2ms")

	home := t.TempDir()
	stdout, _, err := executeCLI(t, home, "login", "--user", "clerk77", "--pass", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Authenticated as Ana Souza (ana.souza)")

	raw, err := os.ReadFile(filepath.Join(home, ".docket", "session.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "JSESSIONID")
}

func TestLoginHandshakeUsesEnvCredentials(t *testing.T) {
	portalSrv, ssoSrv := signOnFixture(t, "env-clerk", "env-pass")

	t.Setenv("DOCKET_PORTAL_BASE_URL", portalSrv.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", ssoSrv.URL)
	t.Setenv("DOCKET_FETCH_DELAY_MIN", "1ms")
	t.Setenv("DOCKET_FETCH_DELAY_MAX", "2ms")
	t.Setenv("DOCKET_USER", "env-clerk")
	t.Setenv("DOCKET_PASS", "env-pass")

	stdout, _, err := executeCLI(t, t.TempDir(), "login")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Authenticated as Ana Souza")
}

func TestFetchRequiresQueueFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"queue\" not set")
}

func TestFetchRejectsUnknownDocumentType(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "fetch", "--queue", "Draft Judgment", "--type", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestFetchDeferredBundleEndToEnd(t *testing.T) {
	server := deferredPortalServer(t)
	home := t.TempDir()
	dest := t.TempDir()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)
	t.Setenv("DOCKET_FETCH_DELAY_MIN", "1ms")
	t.Setenv("DOCKET_FETCH_DELAY_MAX", "2ms")
	t.Setenv("DOCKET_FETCH_MIN_INITIAL_WAIT", "250ms")
	t.Setenv("DOCKET_FETCH_POLL_INTERVAL", "25ms")
	t.Setenv("DOCKET_FETCH_MAX_WAIT", "5s")

	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, stderr, err := executeCLI(t, home,
		"fetch", "--queue", "Draft Judgment", "--type", "judgment", "--dest", dest)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Batch Retrieval Summary")
	assert.Contains(t, stdout, "Every bundle came home.")
	assert.Contains(t, stderr, "Retrieving 1 cases")

	artifact := filepath.Join(dest, "Draft Judgment", "bundle-a.zip")
	raw, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(raw))

	reports, err := filepath.Glob(filepath.Join(dest, "Draft Judgment", "report-*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	stdout, _, err = executeCLI(t, home, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Draft Judgment")
	assert.Contains(t, stdout, "1/1 downloaded")
}

func TestFetchJSONReportOutput(t *testing.T) {
	server := deferredPortalServer(t)
	home := t.TempDir()
	dest := t.TempDir()

	t.Setenv("DOCKET_PORTAL_BASE_URL", server.URL)
	t.Setenv("DOCKET_PORTAL_SSO_URL", server.URL)
	t.Setenv("DOCKET_FETCH_DELAY_MIN", "1ms")
	t.Setenv("DOCKET_FETCH_DELAY_MAX", "2ms")
	t.Setenv("DOCKET_FETCH_MIN_INITIAL_WAIT", "10ms")
	t.Setenv("DOCKET_FETCH_POLL_INTERVAL", "25ms")
	t.Setenv("DOCKET_FETCH_MAX_WAIT", "5s")

	require.NoError(t, writeSessionFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home,
		"fetch", "--queue", "Draft Judgment", "--type", "judgment", "--dest", dest, "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"Queue\": \"Draft Judgment\"")
	assert.Contains(t, stdout, "\"DOWNLOADED\"")
}

func TestHistoryShowsNothingOnFreshDatabase(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No batches recorded yet.")
}

// deferredPortalServer plays the full deferred retrieval flow: queue listing,
// case enumeration, the form submission answered with a pickup-area reply, the
// pickup listing, and the storage download.
func deferredPortalServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/portal-api/api/user/current":
			_, _ = w.Write([]byte(portalUserJSON))
		case "/portal-api/api/workdesk/queues":
			_, _ = w.Write([]byte(`[{"id":4,"name":"Draft Judgment","pendingCount":1}]`))
		case "/portal-api/api/workdesk/queues/Draft Judgment/false/pending-cases":
			_, _ = w.Write([]byte(`{"count":1,"entities":[{"caseId":5001,"caseNumber":"0001234-55.2024.8.05.0001"}]}`))
		case "/portal-api/api/workdesk/case-access-key/5001":
			_, _ = w.Write([]byte(`"key-abc123"`))
		case "/portal/case/records":
			switch r.Method {
			case http.MethodGet:
				assert.Equal(t, "key-abc123", r.URL.Query().Get("accessKey"))
				_, _ = w.Write([]byte(caseRecordsPage))
			case http.MethodPost:
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "62", r.PostForm.Get("navbar:documentType"))
				_, _ = w.Write([]byte(`<html><body>The documents will be made available in the download area shortly.</body></html>`))
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case "/portal-api/api/docs/v1/downloads/available":
			_, _ = w.Write([]byte(`{"availableDownloads":[{"userId":77,"fileName":"bundle-a.zip","downloadHash":"hash-a","expiresAt":0,"status":"AVAILABLE","items":[{"caseNumber":"0001234-55.2024.8.05.0001"}]}]}`))
		case "/portal-api/api/docs/v2/repository/download-url":
			assert.Equal(t, "hash-a", r.URL.Query().Get("handle"))
			_, _ = fmt.Fprintf(w, "%q", server.URL+"/files/bundle-a.zip")
		case "/files/bundle-a.zip":
			_, _ = w.Write([]byte("zip-bytes"))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

// signOnFixture wires the portal and sign-on hosts of the login redirect
// dance. The sign-on form posts back to the sso host, whose redirect to the
// portal home issues the session cookie.
func signOnFixture(t *testing.T, wantUser, wantPass string) (portalSrv, ssoSrv *httptest.Server) {
	t.Helper()

	portalMux := http.NewServeMux()
	ssoMux := http.NewServeMux()
	portalSrv = httptest.NewServer(portalMux)
	ssoSrv = httptest.NewServer(ssoMux)
	t.Cleanup(portalSrv.Close)
	t.Cleanup(ssoSrv.Close)

	portalMux.HandleFunc("/portal/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ssoSrv.URL+"/auth/realms/court/login", http.StatusFound)
	})
	portalMux.HandleFunc("/portal/home", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "portal-session-1", Path: "/"})
		_, _ = w.Write([]byte("<html>workdesk</html>"))
	})
	portalMux.HandleFunc("/portal-api/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Cookie"), "JSESSIONID=portal-session-1")
		_, _ = w.Write([]byte(portalUserJSON))
	})

	ssoMux.HandleFunc("/auth/realms/court/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><form action="/auth/realms/court/authenticate" method="post"></form></body></html>`))
	})
	ssoMux.HandleFunc("/auth/realms/court/authenticate", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, wantUser, r.Form.Get("username"))
		assert.Equal(t, wantPass, r.Form.Get("password"))
		http.Redirect(w, r, portalSrv.URL+"/portal/home", http.StatusFound)
	})

	return portalSrv, ssoSrv
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSessionFixture(home string, capturedAt time.Time) error {
	configDir := filepath.Join(home, ".docket")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	session := fmt.Sprintf(`version = 1
captured_at = %q

[[cookies]]
name = "JSESSIONID"
value = "sess-cli"
`, capturedAt.UTC().Format(time.RFC3339))

	return os.WriteFile(filepath.Join(configDir, "session.toml"), []byte(session), 0o600)
}
