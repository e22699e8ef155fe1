package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/akormin/logoorder/internal/attach"
	handler "github.com/akormin/logoorder/internal/handler/http"
	"github.com/akormin/logoorder/internal/ident"
	"github.com/akormin/logoorder/internal/payment"
	"github.com/akormin/logoorder/internal/repository/memory"
	"github.com/akormin/logoorder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubServer struct {
	*httptest.Server

	orders     map[string]Order
	failList   atomic.Bool
	lastStatus string
	lastToken  string
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()

	s := &stubServer{
		orders: map[string]Order{
			"1": {ID: "1", Name: "Ann", Email: "a@x.com", OrderType: "logo", Details: "blue theme",
				Filenames: []string{"a.png"}, Status: "pending_payment"},
			"2": {ID: "2", Name: "Bob", Email: "b@x.com", OrderType: "banner", Details: "red",
				Filenames: []string{}, Status: "paid", Verified: true},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		if s.failList.Load() {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(s.orders)
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		order, ok := s.orders[r.PathValue("id")]
		if !ok {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(order)
	})
	mux.HandleFunc("POST /orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		s.lastToken = r.Header.Get("Authorization")
		order, ok := s.orders[r.PathValue("id")]
		if !ok {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		req := struct {
			Status string `json:"status"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			http.Error(w, "no status provided", http.StatusBadRequest)
			return
		}
		order.Status = req.Status
		s.orders[order.ID] = order
		s.lastStatus = req.Status
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /orders/{id}/verify", func(w http.ResponseWriter, r *http.Request) {
		order, ok := s.orders[r.PathValue("id")]
		if !ok {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"verified": order.Status == "paid"})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
	})
	mux.HandleFunc("GET /static/uploads/order_1_logo/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png bytes"))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestClient_ListAndGet(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	api := NewClient(srv.URL)

	orders, err := api.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "Ann", orders["1"].Name)

	order, err := api.GetOrder(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, order.Filenames)

	_, err = api.GetOrder(ctx, "42")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_UpdateStatusSendsToken(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	api := NewClient(srv.URL)

	require.NoError(t, api.Login(ctx, "admin", "secret"))
	require.NoError(t, api.UpdateStatus(ctx, "1", "in_progress"))

	assert.Equal(t, "in_progress", srv.lastStatus)
	assert.Equal(t, "Bearer tok123", srv.lastToken)

	err := api.UpdateStatus(ctx, "1", "")
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestClient_FetchAttachment(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	api := NewClient(srv.URL)

	order, err := api.GetOrder(ctx, "1")
	require.NoError(t, err)

	data, err := api.FetchAttachment(ctx, order, "a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	_, err = api.FetchAttachment(ctx, order, "missing.png")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSyncer_RefreshKeepsSnapshotOnError(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	syncer := NewSyncer(NewClient(srv.URL))

	require.NoError(t, syncer.Refresh(ctx))
	require.Len(t, syncer.Orders(), 2)

	// a failing poll is reported but the previous view survives
	srv.failList.Store(true)
	err := syncer.Refresh(ctx)
	require.Error(t, err)
	assert.Len(t, syncer.Orders(), 2)

	srv.failList.Store(false)
	require.NoError(t, syncer.Refresh(ctx))
	assert.Len(t, syncer.Orders(), 2)
}

func TestSyncer_StageAndCommit(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	syncer := NewSyncer(NewClient(srv.URL))

	require.NoError(t, syncer.Refresh(ctx))

	syncer.StageStatus("1", "in_progress")
	staged, ok := syncer.StagedStatus("1")
	require.True(t, ok)
	assert.Equal(t, "in_progress", staged)

	// the snapshot still shows the server state until commit
	order, err := syncer.Select(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "pending_payment", order.Status)

	require.NoError(t, syncer.Commit(ctx, "1"))

	// commit re-polled the authoritative state
	_, ok = syncer.StagedStatus("1")
	assert.False(t, ok)
	for _, got := range syncer.Orders() {
		if got.ID == "1" {
			assert.Equal(t, "in_progress", got.Status)
		}
	}

	// nothing staged, nothing to commit
	assert.Error(t, syncer.Commit(ctx, "2"))
}

// TestClient_AttachmentRoundTripSanitizedType runs the client against the
// real handler stack with an order type that needs sanitizing: the server
// stores the namespace with the sanitized type, and the client must resolve
// attachments through the same convention.
func TestClient_AttachmentRoundTripSanitizedType(t *testing.T) {
	ctx := context.Background()
	uploadsRoot := t.TempDir()

	repo := memory.NewOrderRepository()
	svc := service.NewOrderService(repo, attach.NewManager(uploadsRoot), memory.NewSequenceAllocator(), payment.NewTrusting())
	orderHandler := handler.NewOrderHandler(svc, ident.StrategySequence)

	router := chi.NewRouter()
	router.Post("/orders", orderHandler.CreateOrder())
	router.Get("/orders", orderHandler.ListOrders())
	router.Get("/orders/{id}", orderHandler.GetOrder())
	router.Handle("/static/uploads/*",
		http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(uploadsRoot))))

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range map[string]string{
		"name":       "Ann",
		"email":      "a@x.com",
		"order_type": "flyer design",
		"details":    "blue theme",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("images", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/orders", mw.FormDataContentType(), body)
	require.NoError(t, err)
	created := struct {
		ID string `json:"id"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	api := NewClient(ts.URL)

	order, err := api.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "flyer design", order.OrderType)
	require.Equal(t, []string{"a.png"}, order.Filenames)

	data, err := api.FetchAttachment(ctx, order, "a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	dir := t.TempDir()
	syncer := NewSyncer(api)
	require.NoError(t, syncer.DownloadAll(ctx, dir))

	got, err := os.ReadFile(filepath.Join(dir, "order_"+created.ID+"_flyer_design", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), got)
}

func TestSyncer_DownloadAll(t *testing.T) {
	ctx := context.Background()
	srv := newStubServer(t)
	syncer := NewSyncer(NewClient(srv.URL))

	dir := t.TempDir()
	require.NoError(t, syncer.DownloadAll(ctx, dir))

	data, err := os.ReadFile(filepath.Join(dir, "order_1_logo", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	// order 2 has no attachments, so no directory appears for it
	_, err = os.Stat(filepath.Join(dir, "order_2_banner"))
	assert.True(t, os.IsNotExist(err))
}
