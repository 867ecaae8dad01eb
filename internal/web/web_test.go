package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitflow/internal/auth"
	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/session"
	"github.com/mmynk/splitflow/internal/splitform"
	"github.com/mmynk/splitflow/internal/storage/sqlite"
)

type testBrowser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestBrowser(t *testing.T) *testBrowser {
	t.Helper()
	return newTestBrowserWithClock(t, nil)
}

func newTestBrowserWithClock(t *testing.T, now splitform.Clock) *testBrowser {
	t.Helper()

	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := New(
		session.NewManager(store, now),
		auth.NewJWTManager("test-secret", time.Hour),
		dashboard.NewBuilder(""),
	)
	require.NoError(t, err)

	server := httptest.NewServer(srv.Router())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testBrowser{t: t, server: server, client: &http.Client{Jar: jar}}
}

func (b *testBrowser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.server.URL + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

// post submits a form and follows the redirect back to the page.
func (b *testBrowser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.server.URL+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func recipientForm(name string, rows ...[4]string) url.Values {
	v := url.Values{"name": {name}}
	for _, r := range rows {
		v.Add("recipient_id", r[0])
		v.Add("recipient_name", r[1])
		v.Add("recipient_address", r[2])
		v.Add("recipient_percentage", r[3])
	}
	return v
}

func TestLanding(t *testing.T) {
	b := newTestBrowser(t)

	code, body := b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Automate Revenue Splitting")
	assert.Contains(t, body, "Connect Wallet")
	assert.Contains(t, body, "Why Choose SplitFlow?")
	assert.Contains(t, body, "Perfect For")
	assert.NotContains(t, body, session.PlaceholderWallet)

	code, body = b.post("/wallet/connect", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, session.PlaceholderWallet)
	assert.Contains(t, body, "Create Your First Split")
	assert.NotContains(t, body, "Connect Wallet")
}

func TestCreateSplitFlow(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)

	_, body := b.post("/splits/new", nil)
	assert.Contains(t, body, "Create Revenue Split")
	assert.Contains(t, body, `name="recipient_id" value="1"`)
	assert.Contains(t, body, `value="create" disabled`)

	form := recipientForm("Team Revenue", [4]string{"1", "Alice", "0xAAA", "60"})
	form.Set("action", "add")
	_, body = b.post("/form", form)
	assert.Equal(t, 2, strings.Count(body, `name="recipient_id"`))
	assert.Contains(t, body, "60%")
	assert.Contains(t, body, `value="Alice"`)

	// Find the new recipient's ID from the page.
	idx := strings.LastIndex(body, `name="recipient_id" value="`)
	require.NotEqual(t, -1, idx)
	rest := body[idx+len(`name="recipient_id" value="`):]
	second := rest[:strings.Index(rest, `"`)]

	form = recipientForm("Team Revenue",
		[4]string{"1", "Alice", "0xAAA", "60"},
		[4]string{second, "Bob", "0xBBB", "40"},
	)
	form.Set("action", "update")
	_, body = b.post("/form", form)
	assert.Contains(t, body, "100%")
	assert.NotContains(t, body, `value="create" disabled`)

	form.Set("action", "create")
	code, body := b.post("/form", form)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "Team Revenue")
	assert.Contains(t, body, "4.6 ETH")
	assert.Contains(t, body, "2.76 ETH received")
	assert.Contains(t, body, "1.84 ETH received")
}

func TestCreateSplit_UnboundedPercentages(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	b.post("/splits/new", nil)

	form := recipientForm("Skewed",
		[4]string{"1", "Alice", "0xAAA", "150"},
	)
	form.Set("action", "add")
	_, body := b.post("/form", form)
	idx := strings.LastIndex(body, `name="recipient_id" value="`)
	require.NotEqual(t, -1, idx)
	rest := body[idx+len(`name="recipient_id" value="`):]
	second := rest[:strings.Index(rest, `"`)]

	form = recipientForm("Skewed",
		[4]string{"1", "Alice", "0xAAA", "150"},
		[4]string{second, "Bob", "0xBBB", "-50"},
	)
	form.Set("action", "create")
	code, body := b.post("/form", form)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "6.9 ETH received")
	assert.Contains(t, body, "-2.3 ETH received")

	code, body = b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "-2.3 ETH received")
}

func TestCreateSplit_FreshFormPlaceholders(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)

	_, body := b.post("/splits/new", nil)
	assert.Contains(t, body, "Add recipients to see preview")
	assert.Contains(t, body, `name="recipient_percentage" value=""`)

	_, body = b.post("/form", recipientForm("Draft", [4]string{"1", "Alice", "", "25"}))
	assert.NotContains(t, body, "Add recipients to see preview")
	assert.Contains(t, body, "No address")
	assert.Contains(t, body, `name="recipient_percentage" value="25"`)

	_, body = b.post("/form", recipientForm("Draft", [4]string{"1", "Alice", "0xAAA", "0"}))
	assert.Contains(t, body, `name="recipient_percentage" value=""`)
	assert.Contains(t, body, "Add recipients to see preview")
}

func TestSubmitForm_DuplicateIDsKeepTheirOwnValues(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	b := newTestBrowserWithClock(t, func() time.Time { return fixed })
	b.post("/wallet/connect", nil)
	b.post("/splits/new", nil)

	// A frozen clock gives both added recipients the same ID.
	form := url.Values{"action": {"add"}}
	b.post("/form", form)
	_, body := b.post("/form", form)
	dup := strconv.FormatInt(fixed.UnixMilli(), 10)
	require.Equal(t, 2, strings.Count(body, `name="recipient_id" value="`+dup+`"`))

	form = recipientForm("Dupes",
		[4]string{"1", "Alice", "0xAAA", "50"},
		[4]string{dup, "Bob", "0xBBB", "30"},
		[4]string{dup, "Carol", "0xCCC", "20"},
	)
	_, body = b.post("/form", form)
	assert.Contains(t, body, `value="Bob"`)
	assert.Contains(t, body, `value="Carol"`)
	assert.Contains(t, body, "100%")
	assert.NotContains(t, body, `value="create" disabled`)
}

func TestCreateSplit_NotAtHundredStaysOnForm(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	b.post("/splits/new", nil)

	form := recipientForm("Almost", [4]string{"1", "Alice", "0xAAA", "99"})
	form.Set("action", "create")
	code, body := b.post("/form", form)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Create Revenue Split")
	assert.Contains(t, body, "99%")
	assert.Contains(t, body, `value="create" disabled`)
}

func TestBackDiscardsForm(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	b.post("/splits/new", nil)
	b.post("/form", recipientForm("Draft", [4]string{"1", "Alice", "", "10"}))

	_, body := b.post("/splits/back", nil)
	assert.Contains(t, body, "Create Your First Split")

	_, body = b.post("/splits/new", nil)
	assert.NotContains(t, body, `value="Draft"`)
}

func TestOpenCreateSplit_WithoutWallet(t *testing.T) {
	b := newTestBrowser(t)

	code, body := b.post("/splits/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Connect Wallet")
	assert.NotContains(t, body, "Create Revenue Split")
}

func createSplit(t *testing.T, b *testBrowser, name, recipient string) {
	t.Helper()
	b.post("/splits/new", nil)
	form := recipientForm(name, [4]string{"1", recipient, "0x" + recipient, "100"})
	form.Set("action", "create")
	_, body := b.post("/form", form)
	require.Contains(t, body, "Dashboard")
}

func TestDashboard_TabsAndSelection(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	createSplit(t, b, "First", "Alice")
	time.Sleep(2 * time.Millisecond)
	createSplit(t, b, "Second", "Bob")

	_, body := b.get("/")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "4.6 ETH received")

	_, body = b.post("/dashboard/tab/transactions", nil)
	assert.Contains(t, body, "1.5 ETH")
	assert.Contains(t, body, "0.8 ETH")
	assert.Contains(t, body, "2.3 ETH")
	assert.Contains(t, body, "Distributed")

	code, _ := b.post("/dashboard/tab/settings", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = b.post("/dashboard/select/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDashboard_SelectShowsOwnRecipients(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	createSplit(t, b, "First", "Alice")
	time.Sleep(2 * time.Millisecond)
	createSplit(t, b, "Second", "Bob")

	_, body := b.get("/")
	idx := strings.Index(body, `action="/dashboard/select/`)
	require.NotEqual(t, -1, idx)
	// The second form in the split list belongs to "Second".
	rest := body[idx+1:]
	idx = strings.Index(rest, `action="/dashboard/select/`)
	require.NotEqual(t, -1, idx)
	rest = rest[idx+len(`action="/dashboard/select/`):]
	secondID := rest[:strings.Index(rest, `"`)]

	_, body = b.post("/dashboard/select/"+secondID, nil)
	detail := body[strings.Index(body, "Contract:"):]
	assert.Contains(t, detail, "Bob")
	assert.NotContains(t, detail, "Alice")
}

func TestSplitQR(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)
	createSplit(t, b, "First", "Alice")

	_, body := b.get("/")
	idx := strings.Index(body, `src="/splits/`)
	require.NotEqual(t, -1, idx)
	rest := body[idx+len(`src="`):]
	path := rest[:strings.Index(rest, `"`)]

	resp, err := b.client.Get(b.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	code, _ := b.get("/splits/unknown/qr.png")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvalidCookieStartsNewSession(t *testing.T) {
	b := newTestBrowser(t)
	b.post("/wallet/connect", nil)

	u, err := url.Parse(b.server.URL)
	require.NoError(t, err)
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: CookieName, Value: "garbage", Path: "/"}})

	_, body := b.get("/")
	assert.Contains(t, body, "Connect Wallet")
}
