package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeIBM struct {
	srv             *httptest.Server
	translatedText  atomic.Value
	translatorCalls atomic.Int32
	sttCalls        atomic.Int32
	sttStatus       int
}

func newFakeIBM(t *testing.T) *fakeIBM {
	t.Helper()
	f := &fakeIBM{sttStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"access_token":"token-%s","token_type":"Bearer","expires_in":3600}`, r.FormValue("apikey"))
	})
	mux.HandleFunc("POST /stt/v1/recognize", func(w http.ResponseWriter, r *http.Request) {
		f.sttCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-s2t-key" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if f.sttStatus != http.StatusOK {
			w.WriteHeader(f.sttStatus)
			fmt.Fprint(w, `{"error":"recognition failed"}`)
			return
		}
		fmt.Fprint(w, `{"result_index":0,"results":[
			{"final":true,"alternatives":[{"transcript":"hello","confidence":0.9}]},
			{"final":true,"alternatives":[{"transcript":"world","confidence":0.8}]}
		]}`)
	})
	mux.HandleFunc("POST /lt/v3/translate", func(w http.ResponseWriter, r *http.Request) {
		f.translatorCalls.Add(1)
		var req struct {
			Text    []string `json:"text"`
			ModelID string   `json:"model_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.translatedText.Store(strings.Join(req.Text, "|") + "@" + req.ModelID)
		fmt.Fprint(w, `{"translations":[{"translation":"halo dunia"}],"word_count":2,"character_count":11}`)
	})
	mux.HandleFunc("GET /lt/v3/identifiable_languages", func(w http.ResponseWriter, r *http.Request) {
		f.translatorCalls.Add(1)
		fmt.Fprint(w, `{"languages":[{"language":"id","name":"Indonesian"}]}`)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	t.Setenv("IAM_URL", f.srv.URL)
	t.Setenv("S2T_APIKEY", "s2t-key")
	t.Setenv("S2T_URL", f.srv.URL+"/stt")
	t.Setenv("LT_APIKEY", "lt-key")
	t.Setenv("LT_URL", f.srv.URL+"/lt")
	return f
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestMissingArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := realMain(nil, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr.String(), "usage: s2t") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun(t *testing.T) {
	f := newFakeIBM(t)
	audio := writeAudio(t)

	var stdout, stderr bytes.Buffer
	if code := realMain([]string{audio}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}

	if got := f.translatedText.Load(); got != "hello world@en-id" {
		t.Errorf("translator received %v", got)
	}
	out := stdout.String()
	for _, want := range []string{
		"Transcription result (" + audio + "):\nhello world\n",
		"Supported languages:\n",
		"Translation result (en-id):\nhalo dunia\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestRunJSONOutput(t *testing.T) {
	newFakeIBM(t)
	t.Setenv("LIST_LANGUAGES", "false")

	var stdout bytes.Buffer
	if code := realMain([]string{"-o", "json", writeAudio(t)}, &stdout, io.Discard); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	var got struct {
		Translation struct {
			Text string `json:"text"`
		} `json:"translation"`
		Languages []any `json:"languages"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, stdout.String())
	}
	if got.Translation.Text != "halo dunia" || len(got.Languages) != 0 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestUnknownOutputFormatMakesNoRemoteCalls(t *testing.T) {
	f := newFakeIBM(t)

	var stdout bytes.Buffer
	if code := realMain([]string{"-o", "xml", writeAudio(t)}, &stdout, io.Discard); code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if n := f.sttCalls.Load(); n != 0 {
		t.Errorf("speech-to-text called %d times", n)
	}
	if n := f.translatorCalls.Load(); n != 0 {
		t.Errorf("translator called %d times", n)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestTranscriptionFailureSkipsTranslator(t *testing.T) {
	f := newFakeIBM(t)
	f.sttStatus = http.StatusBadRequest

	var stdout, stderr bytes.Buffer
	if code := realMain([]string{writeAudio(t)}, &stdout, &stderr); code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if n := f.translatorCalls.Load(); n != 0 {
		t.Errorf("translator called %d times", n)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	if !strings.Contains(stderr.String(), "recognition failed") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestMissingFile(t *testing.T) {
	newFakeIBM(t)

	var stderr bytes.Buffer
	if code := realMain([]string{filepath.Join(t.TempDir(), "nope.mp3")}, io.Discard, &stderr); code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
}

func TestMissingConfig(t *testing.T) {
	t.Setenv("S2T_APIKEY", "")
	t.Setenv("LT_APIKEY", "")

	if code := realMain([]string{"a.mp3"}, io.Discard, io.Discard); code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
}
