package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chomnr/brute-go/internal/model"
	"github.com/chomnr/brute-go/internal/sink"
)

func TestHandleAttackAdd_AcceptsValidEvent(t *testing.T) {
	ch := make(chan model.Event, 1)
	s := sink.New(ch)
	handler := handleAttackAdd(s)

	body := bytes.NewBufferString(`{"username":"root","password":"toor","ip_address":"8.8.8.8","protocol":"SSH"}`)
	req := httptest.NewRequest(http.MethodPost, "/brute/attack/add", body)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	select {
	case e := <-ch:
		assert.Equal(t, "root", e.Username)
	default:
		t.Fatal("expected event enqueued")
	}
}

func TestHandleAttackAdd_RejectsPrivateIP(t *testing.T) {
	ch := make(chan model.Event, 1)
	s := sink.New(ch)
	handler := handleAttackAdd(s)

	body := bytes.NewBufferString(`{"username":"root","password":"toor","ip_address":"192.168.1.1","protocol":"SSH"}`)
	req := httptest.NewRequest(http.MethodPost, "/brute/attack/add", body)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "private")
	assert.Empty(t, ch)
}

type fakeIncrementer struct {
	table string
	key   string
	delta int64
}

func (f *fakeIncrementer) UpsertLeaderboard(ctx context.Context, table, key string, delta int64) (model.LeaderboardRow, error) {
	f.table, f.key, f.delta = table, key, delta
	return model.LeaderboardRow{Key: key, Amount: delta}, nil
}

func TestHandleProtocolIncrement_BumpsTopProtocol(t *testing.T) {
	inc := &fakeIncrementer{}
	handler := handleProtocolIncrement(inc)

	body := bytes.NewBufferString(`{"protocol":"SSH","amount":3}`)
	req := httptest.NewRequest(http.MethodPost, "/brute/protocol/increment", body)
	rec := httptest.NewRecorder()

	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "top_protocol", inc.table)
	assert.Equal(t, "SSH", inc.key)
	assert.Equal(t, int64(3), inc.delta)
}

func TestHandleDecoyLogin_AlwaysReturns200(t *testing.T) {
	ch := make(chan model.Event, 1)
	s := sink.New(ch)
	handler := handleDecoyLogin(s, "HTTP")

	body := bytes.NewBufferString(`{"username":"admin","password":"admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.RemoteAddr = "8.8.8.8:12345"
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	select {
	case e := <-ch:
		assert.Equal(t, "HTTP", e.Protocol)
		assert.Equal(t, "8.8.8.8", e.IP)
	default:
		t.Fatal("expected event enqueued for public source ip")
	}
}

func TestHandleDecoyLogin_Returns200EvenOnPrivateIP(t *testing.T) {
	ch := make(chan model.Event, 1)
	s := sink.New(ch)
	handler := handleDecoyLogin(s, "HTTP")

	body := bytes.NewBufferString(`{"username":"admin","password":"admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ch, "rejected validation must not enqueue an event")
}

func TestQueryLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/brute/stats/attack?limit=25", nil)
	assert.Equal(t, 25, queryLimit(req))

	req = httptest.NewRequest(http.MethodGet, "/brute/stats/attack", nil)
	assert.Equal(t, 0, queryLimit(req))

	req = httptest.NewRequest(http.MethodGet, "/brute/stats/attack?limit=abc", nil)
	assert.Equal(t, 0, queryLimit(req))
}
