package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubprotocols(t *testing.T) {
	for name, tc := range map[string]struct {
		lines    []string
		expected []string
	}{
		"absent": {
			lines:    nil,
			expected: nil,
		},
		"empty": {
			lines:    []string{""},
			expected: nil,
		},
		"single": {
			lines:    []string{"graphql-ws"},
			expected: []string{"graphql-ws"},
		},
		"list with whitespace": {
			lines:    []string{" graphql-ws ,graphql-transport-ws,  ,foo"},
			expected: []string{"graphql-ws", "graphql-transport-ws", "foo"},
		},
		"multiple header lines": {
			lines:    []string{"graphql-ws", "graphql-transport-ws"},
			expected: []string{"graphql-ws", "graphql-transport-ws"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			header := http.Header{}

			for _, line := range tc.lines {
				header.Add("Sec-WebSocket-Protocol", line)
			}

			assert.Equal(t, tc.expected, Subprotocols(header))
		})
	}
}

func TestSelect(t *testing.T) {
	for name, tc := range map[string]struct {
		protocols []string
		expected  Binding
	}{
		"absent":                {nil, BindingModern},
		"unrelated only":        {[]string{"foo", "bar"}, BindingModern},
		"modern":                {[]string{"graphql-transport-ws"}, BindingModern},
		"modern with unrelated": {[]string{"foo", "graphql-transport-ws"}, BindingModern},
		"legacy":                {[]string{"graphql-ws"}, BindingLegacy},
		"legacy with unrelated": {[]string{"graphql-ws", "foo"}, BindingLegacy},
		"both, legacy first":    {[]string{"graphql-ws", "graphql-transport-ws"}, BindingModern},
		"both, modern first":    {[]string{"graphql-transport-ws", "graphql-ws"}, BindingModern},
		"legacy, other casing":  {[]string{"GraphQL-WS"}, BindingLegacy},
		"both, other casing":    {[]string{"graphql-ws", "GRAPHQL-TRANSPORT-WS"}, BindingModern},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Select(tc.protocols))
		})
	}
}

func TestBindingString(t *testing.T) {
	assert.Equal(t, "graphql-transport-ws", BindingModern.String())
	assert.Equal(t, "graphql-ws", BindingLegacy.String())
}

func TestNewRequiresHandlers(t *testing.T) {
	_, err := New(nil, http.NotFoundHandler())

	assert.ErrorIs(t, err, ErrHandlerRequired)

	_, err = New(http.NotFoundHandler(), nil)

	assert.ErrorIs(t, err, ErrHandlerRequired)
}

type recordingHandler struct {
	calls int
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++

	w.WriteHeader(http.StatusSwitchingProtocols)
}

func newRecordingRouter(t *testing.T) (*Router, *recordingHandler, *recordingHandler) {
	modern, legacy := &recordingHandler{}, &recordingHandler{}

	r, err := New(modern, legacy)

	require.NoError(t, err)

	return r, modern, legacy
}

func newUpgradeRequest(protocols ...string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.Header.Set("Connection", "keep-alive, Upgrade")
	r.Header.Set("Upgrade", "websocket")

	for _, p := range protocols {
		r.Header.Add("Sec-WebSocket-Protocol", p)
	}

	return r
}

func TestRouterPlainRequest(t *testing.T) {
	r, modern, legacy := newRecordingRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(method, "/graphql", nil))

		body, err := io.ReadAll(w.Result().Body)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, body)
	}

	assert.Zero(t, modern.calls)
	assert.Zero(t, legacy.calls)
}

func TestRouterDispatch(t *testing.T) {
	for name, tc := range map[string]struct {
		protocols []string
		expected  Binding
	}{
		"legacy":      {[]string{"graphql-ws"}, BindingLegacy},
		"modern":      {[]string{"graphql-transport-ws"}, BindingModern},
		"both":        {[]string{"graphql-ws, graphql-transport-ws"}, BindingModern},
		"absent":      {nil, BindingModern},
		"whitespace":  {[]string{"  graphql-ws  "}, BindingLegacy},
		"split lines": {[]string{"graphql-ws", "graphql-transport-ws"}, BindingModern},
	} {
		t.Run(name, func(t *testing.T) {
			r, modern, legacy := newRecordingRouter(t)

			req := newUpgradeRequest(tc.protocols...)

			assert.Equal(t, tc.expected, r.Route(req))

			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusSwitchingProtocols, w.Code)

			if tc.expected == BindingLegacy {
				assert.Equal(t, 1, legacy.calls)
				assert.Zero(t, modern.calls)
			} else {
				assert.Equal(t, 1, modern.calls)
				assert.Zero(t, legacy.calls)
			}
		})
	}
}

func TestIsUpgrade(t *testing.T) {
	assert.True(t, IsUpgrade(newUpgradeRequest()))

	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.False(t, IsUpgrade(r))

	r.Header.Set("Connection", "upgrade")
	r.Header.Set("Upgrade", "h2c")

	assert.False(t, IsUpgrade(r))
}
