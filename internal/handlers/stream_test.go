package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, url string, cookie *http.Cookie, courseID string, moduleID string) (access string, refresh string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url+"/api/video/token?courseId="+courseID+"&moduleId="+moduleID, nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, body := doRequest(t, req)
	require.Equalf(t, http.StatusOK, resp.StatusCode, "token issuance failed. Body: %s", body)

	var issued struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &issued))

	return issued.Token, issued.RefreshToken
}

func Test_StreamHandler(t *testing.T) {
	t.Parallel()

	enrollments := map[int64][]int64{7: {2, 5}}
	assets := map[string]string{
		"/courses/2/modules/9/index.m3u8": "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=800000\n720p.m3u8\n",
		"/courses/2/modules/9/720p.m3u8":  "#EXTM3U\n#EXTINF:6.0,\nseg-001.ts\n",
		"/courses/2/modules/9/seg-001.ts": "\x47fake-ts-payload",
		"/courses/5/modules/1/index.m3u8": "#EXTM3U\n",
	}

	t.Run("round trip issue then stream", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=master&file=index.m3u8&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		assert.Equal(t, assets["/courses/2/modules/9/index.m3u8"], body)
		assert.Equal(t, "application/vnd.apple.mpegurl", resp.Header.Get("Content-Type"))
		assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	})

	t.Run("segment content type", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=segment&file=seg-001.ts&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, assets["/courses/2/modules/9/seg-001.ts"], body)
		assert.Equal(t, "video/MP2T", resp.Header.Get("Content-Type"))
	})

	t.Run("missing fields", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		tests := []struct {
			name  string
			query string
		}{
			{"no token", "type=master&file=index.m3u8&courseId=2&moduleId=9"},
			{"no type", "token=" + token + "&file=index.m3u8&courseId=2&moduleId=9"},
			{"no file", "token=" + token + "&type=master&courseId=2&moduleId=9"},
			{"no course", "token=" + token + "&type=master&file=index.m3u8&moduleId=9"},
			{"no module", "token=" + token + "&type=master&file=index.m3u8&courseId=2"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, err := http.NewRequest(http.MethodGet, url+"/api/video/stream?"+tt.query, nil)
				require.NoError(t, err)

				resp, body := doRequest(t, req)
				require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			})
		}
	})

	t.Run("bogus asset type", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=bogus&file=index.m3u8&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"error": "service_error", "message": "type must be one of master, playlist, segment"}`, body)
	})

	t.Run("wrong signature token", func(t *testing.T) {
		url, _ := serveApp(t, enrollments, assets)

		// Syntactically valid JWT signed with another key
		foreign := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
			"eyJ1aWQiOjcsImNpZCI6MiwibWlkIjo5LCJleHAiOjQ4NzA1NzYwMDB9." +
			"x1vacOb0l7kmZVV6PVcNX1w0sF3zr9WNSP2vDEnMRyE"

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+foreign+"&type=master&file=index.m3u8&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"error": "service_error", "message": "Access token is not valid"}`, body)
	})

	t.Run("refresh token rejected at stream", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		_, refresh := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		// A refresh token lives 7 days, it must never open the stream itself
		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+refresh+"&type=master&file=index.m3u8&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"error": "service_error", "message": "Access token is not valid"}`, body)
	})

	t.Run("scope mismatch", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		// User is enrolled in course 5 too, the token still must not open it
		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=master&file=index.m3u8&courseId=5&moduleId=1", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusForbidden, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"error": "service_error", "message": "Token does not grant access to this resource"}`, body)
	})

	t.Run("origin 404 passthrough", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=segment&file=missing.ts&courseId=2&moduleId=9", nil)
		require.NoError(t, err)

		resp, body := doRequest(t, req)

		require.Equalf(t, http.StatusNotFound, resp.StatusCode, "origin status should be propagated. Body: %s", body)
		require.JSONEq(t, `{"error": "service_error", "message": "Asset not found or access denied"}`, body)
		require.NotContains(t, body, "no such object", "origin error detail must not leak")
	})

	t.Run("cors preflight", func(t *testing.T) {
		url, _ := serveApp(t, enrollments, assets)

		req, err := http.NewRequest(http.MethodOptions, url+"/api/video/stream", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://player.example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")

		resp, _ := doRequest(t, req)

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "GET")
	})

	t.Run("cors headers on stream response", func(t *testing.T) {
		url, auth := serveApp(t, enrollments, assets)
		token, _ := issueToken(t, url, sessionCookie(t, auth, 7), "2", "9")

		req, err := http.NewRequest(http.MethodGet,
			url+"/api/video/stream?token="+token+"&type=playlist&file=720p.m3u8&courseId=2&moduleId=9", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://player.example.com")

		resp, _ := doRequest(t, req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
