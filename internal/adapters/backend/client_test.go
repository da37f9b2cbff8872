package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/pkg/logging"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL+"/", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/camera/get-all", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[
			{"id":1,"cameraName":"Gate","cameraType":"EO","latitude":"24.345","longitude":"54.12","azimuth":"10.00"},
			{"id":"cam-2","cameraName":"Dock","cameraType":"IR","latitude":"-1","longitude":"2","azimuth":"0"}
		]`))
	}))
	defer srv.Close()

	cams, err := testClient(srv.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, domain.CameraID("1"), cams[0].ID)
	assert.Equal(t, domain.CameraEO, cams[0].CameraType)
	assert.Equal(t, "24.345", cams[0].Latitude)
	assert.Equal(t, domain.CameraID("cam-2"), cams[1].ID)
}

func TestClient_List_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	cams, err := testClient(srv.URL).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cams)
	assert.Empty(t, cams)
}

func TestClient_GetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/camera/get-by-id/7", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"id":7,"cameraName":"Mast","latitude":"0","longitude":"0","azimuth":"45.00"}`))
	}))
	defer srv.Close()

	cam, err := testClient(srv.URL).GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Mast", cam.CameraName)
	assert.Equal(t, domain.CameraID("7"), cam.ID)
}

func TestClient_GetByID_NotFound(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"404":   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
		"empty": func(w http.ResponseWriter, _ *http.Request) {},
		"null":  func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("null")) },
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := testClient(srv.URL).GetByID(context.Background(), "99")
			assert.True(t, errors.Is(err, domain.ErrCameraNotFound), "got %v", err)
		})
	}
}

func TestClient_Save_OmitsID(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/camera/save", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Save(context.Background(), &domain.Camera{
		ID: "5", CameraName: "New", CameraType: domain.Camera360,
		Latitude: "1", Longitude: "2", Azimuth: "3",
	})
	require.NoError(t, err)
	_, hasID := got["id"]
	assert.False(t, hasID)
	assert.Equal(t, "360", got["cameraType"])
}

func TestClient_Update_Partial(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/camera/update", r.URL.Path)
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).Update(context.Background(), domain.CameraPatch{ID: "12", Azimuth: "44.99"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"azimuth":"44.99"}`, string(raw))
}

func TestClient_Update_ServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Update(context.Background(), domain.CameraPatch{ID: "1", Azimuth: "1.00"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "db down", se.Body)
	assert.Equal(t, 1, calls, "failed updates are not retried")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).List(context.Background())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.Error(t, testClient(srv.URL).Ping(context.Background()))
}

func TestClient_PropagatesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx := logging.WithRequest(context.Background(), "req-42")
	_, err := testClient(srv.URL).List(ctx)
	require.NoError(t, err)
}
