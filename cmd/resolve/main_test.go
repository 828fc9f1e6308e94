package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	archiveSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "KTLX20230615_123456_V06"):
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "KTLX20230615_999999_V06"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer archiveSrv.Close()

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NEXRAD_BASE_URL", archiveSrv.URL+"/")
	t.Setenv("GOES_BASE_URL", archiveSrv.URL+"/")

	tests := []struct {
		name     string
		args     []string
		code     int
		stdout   string
		exitCode int
	}{
		{"resolved", []string{"-archive", "nexrad", "KTLX20230615_123456_V06"}, exitResolved, archiveSrv.URL + "/2023/06/15/KTLX/KTLX20230615_123456_V06\n", -1},
		{"not found", []string{"-archive", "nexrad", "KTLX20230615_000000_V06"}, exitNotFound, "", -1},
		{"invalid", []string{"-archive", "goes", "KTLX20230615_123456_V06"}, exitInvalid, "", -1},
		{"transport failure", []string{"KTLX20230615_999999_V06"}, exitFailure, "", 1},
		{"missing filename", []string{"-archive", "goes"}, exitUsage, "", -1},
		{"unknown archive", []string{"-archive", "landsat", "x"}, exitUsage, "", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			exitCode := -1

			code := run(context.Background(), tt.args, &stdout, &stderr, func(c int) { exitCode = c })

			assert.Equal(t, tt.code, code, stderr.String())
			assert.Equal(t, tt.stdout, stdout.String())
			assert.Equal(t, tt.exitCode, exitCode)
		})
	}
}

func TestRun_TransportFailureLogsFatal(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("NEXRAD_BASE_URL", "http://127.0.0.1:1/")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"KTLX20230615_123456_V06"}, &stdout, &stderr, func(int) {})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), `"level":"FATAL"`)
	assert.Contains(t, stderr.String(), "[RESOLVE_ERROR]")
}
