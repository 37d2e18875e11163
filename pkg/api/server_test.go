package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/smf"
	"github.com/james-see/soundpalette/pkg/sysex/devices"
)

var gsReset = []byte{0xF0, 0x41, 0x10, 0x42, 0x12, 0x40, 0x00, 0x7F, 0x00, 0x41, 0xF7}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewServer(devices.Default(), converter.DefaultOptions()).Router()
}

func do(t *testing.T, r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return do(t, r, req)
}

func postFile(t *testing.T, r http.Handler, path, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(t, r, req)
}

func TestHealth(t *testing.T) {
	r := newRouter()
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := do(t, r, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestProfiles(t *testing.T) {
	r := newRouter()
	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /profiles = %d", w.Code)
	}
	var resp struct {
		Profiles []ProfileInfo `json:"profiles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Profiles) != 3 || resp.Profiles[0].Key != "gs" || resp.Profiles[0].Model != "42" {
		t.Errorf("profiles = %+v", resp.Profiles)
	}
}

func TestParameters(t *testing.T) {
	r := newRouter()
	tests := []struct {
		path  string
		code  int
		count int
	}{
		{"/api/v1/profiles/sc55/parameters", http.StatusOK, devices.DisplayLetters + devices.DisplayDotRows},
		{"/api/v1/profiles/gs/parameters?block=Patch%20Common", http.StatusOK, 31},
		{"/api/v1/profiles/d50/parameters", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d", w.Code, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var resp struct {
				Parameters []ParameterInfo `json:"parameters"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Parameters) != tt.count {
				t.Errorf("got %d parameters, want %d", len(resp.Parameters), tt.count)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	r := newRouter()
	tests := []struct {
		name string
		body BuildRequest
		code int
		hex  string
	}{
		{"reverb by label", BuildRequest{Parameter: "Reverb Macro", Value: "Hall 1"}, http.StatusOK, "F0 41 10 42 12 40 01 30 03 0C F7"},
		{"reverb by number", BuildRequest{Profile: "gs", Parameter: "REVERB MACRO", Value: "3"}, http.StatusOK, "F0 41 10 42 12 40 01 30 03 0C F7"},
		{"request", BuildRequest{Parameter: "Reverb Macro", Request: true}, http.StatusOK, "F0 41 10 42 11 40 01 30 00 00 01 0E F7"},
		{"out of range", BuildRequest{Parameter: "Reverb Macro", Value: "8"}, http.StatusUnprocessableEntity, ""},
		{"bad label", BuildRequest{Parameter: "Reverb Macro", Value: "Cathedral"}, http.StatusUnprocessableEntity, ""},
		{"unknown parameter", BuildRequest{Parameter: "NO SUCH THING", Value: "1"}, http.StatusBadRequest, ""},
		{"unknown profile", BuildRequest{Profile: "d50", Parameter: "Reverb Macro", Value: "1"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/v1/build", tt.body)
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d: %s", w.Code, tt.code, w.Body)
			}
			if tt.hex == "" {
				return
			}
			var resp BuildResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Hex != tt.hex {
				t.Errorf("hex = %s, want %s", resp.Hex, tt.hex)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	r := newRouter()
	w := postJSON(t, r, "/api/v1/inspect", InspectRequest{Hex: "F0 41 10 42 12 40 01 30 03 0C F7"})
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", w.Code, w.Body)
	}
	var resp InspectResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Status != "valid" {
		t.Fatalf("response = %+v", resp)
	}
	if want := "Roland: Device 10h, Roland GS: Data set 1: Patch Common § REVERB MACRO => 03 = 3 [Hall 1]"; resp.Messages[0].Description != want {
		t.Errorf("description = %q", resp.Messages[0].Description)
	}

	w = postFile(t, r, "/api/v1/inspect", "reset.syx", gsReset)
	if w.Code != http.StatusOK {
		t.Fatalf("file upload code = %d: %s", w.Code, w.Body)
	}

	w = postJSON(t, r, "/api/v1/inspect", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request code = %d", w.Code)
	}
}

func TestConvert(t *testing.T) {
	r := newRouter()
	w := postFile(t, r, "/api/v1/convert/syx2midi?spacing=96", "reset.syx", append(append([]byte{}, gsReset...), gsReset...))
	if w.Code != http.StatusOK {
		t.Fatalf("syx2midi code = %d: %s", w.Code, w.Body)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=reset.mid" {
		t.Errorf("Content-Disposition = %q", got)
	}
	f, err := smf.Import(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if f.Collection.Len() != 2 || f.Collection.Entries[1].Tick != 96 {
		t.Errorf("converted file: %s", f.Summary())
	}

	w = postFile(t, r, "/api/v1/convert/midi2syx", "reset.mid", w.Body.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("midi2syx code = %d: %s", w.Code, w.Body)
	}
	if w.Body.Len() != 2*len(gsReset) {
		t.Errorf("midi2syx returned %d bytes", w.Body.Len())
	}

	w = postFile(t, r, "/api/v1/convert/midi2syx", "junk.mid", []byte("junk"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("junk code = %d", w.Code)
	}
}
