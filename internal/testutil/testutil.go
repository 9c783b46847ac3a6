package testutil

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Return random free port on 127.0.0.1 address
func RandomPort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:")
	if err != nil {
		return 0, err
	}
	defer ln.Close() // nolint:errcheck

	addr := ln.Addr().(*net.TCPAddr)
	return addr.Port, nil
}

// FakeLMS serves the Moodle enrollment web service for the given
// user -> course ids mapping. Closed at test end.
func FakeLMS(t *testing.T, enrollments map[int64][]int64) *httptest.Server {
	t.Helper()

	type course struct {
		ID        int64  `json:"id"`
		ShortName string `json:"shortname"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webservice/rest/server.php" {
			http.NotFound(w, r)
			return
		}

		var userID int64
		_, err := fmt.Sscanf(r.URL.Query().Get("userid"), "%d", &userID)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"exception": "invalid_parameter_exception", "errorcode": "invalidparameter", "message": "Invalid parameter"}`))
			return
		}

		courses := make([]course, 0)
		for _, id := range enrollments[userID] {
			courses = append(courses, course{ID: id, ShortName: fmt.Sprintf("course-%d", id)})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(courses)
	}))
	t.Cleanup(srv.Close)

	return srv
}

// FakeOrigin serves media assets by full path, protected by the origin token.
// Closed at test end.
func FakeOrigin(t *testing.T, token string, assets map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.URL.Query().Get("token") != token {
			http.Error(w, "origin: bad credential", http.StatusForbidden)
			return
		}

		body, ok := assets[r.URL.Path]
		if !ok {
			http.Error(w, "origin: no such object", http.StatusNotFound)
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, ".m3u8"):
			w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		case strings.HasSuffix(r.URL.Path, ".ts"):
			w.Header().Set("Content-Type", "video/MP2T")
		}

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}
