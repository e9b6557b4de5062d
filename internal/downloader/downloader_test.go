package downloader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	gulphttp "github.com/ligustah/gulp/internal/http"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		fileSize  int64
		chunkSize int64
		lengths   []int64
	}{
		{"exact multiple", 200, 100, []int64{100, 100}},
		{"short last chunk", 250, 100, []int64{100, 100, 50}},
		{"single short chunk", 50, 100, []int64{50}},
		{"single exact chunk", 100, 100, []int64{100}},
		{"zero size", 0, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Plan(tt.fileSize, tt.chunkSize)
			if len(chunks) != len(tt.lengths) {
				t.Fatalf("expected %d chunks, got %d", len(tt.lengths), len(chunks))
			}

			var offset int64
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d: index %d", i, c.Index)
				}
				if c.Start != offset {
					t.Errorf("chunk %d: start %d, want %d (gap or overlap)", i, c.Start, offset)
				}
				if c.Length() != tt.lengths[i] {
					t.Errorf("chunk %d: length %d, want %d", i, c.Length(), tt.lengths[i])
				}
				offset = c.End
			}
			if offset != tt.fileSize {
				t.Errorf("chunks cover [0, %d), want [0, %d)", offset, tt.fileSize)
			}
		})
	}
}

// rangeServer serves data with HEAD and strict range request support.
func rangeServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}

		rangeHeader := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
		if rangeHeader == "" {
			w.Write(data)
			return
		}

		parts := strings.SplitN(rangeHeader, "-", 2)
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end, _ := strconv.ParseInt(parts[1], 10, 64)
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}

		w.Header().Set("Content-Range", "bytes "+parts[0]+"-"+parts[1]+"/"+strconv.Itoa(len(data)))
		w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
	}))
}

func testData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func fastHTTP() gulphttp.Options {
	opts := gulphttp.DefaultOptions()
	opts.RetryAttempts = 1
	opts.RetryBackoff = time.Millisecond
	opts.RetryMaxBackoff = 5 * time.Millisecond
	return opts
}

func TestDownloadBasic(t *testing.T) {
	// 250 units of data at 100-unit chunks: two full chunks plus one short
	data := testData(250 * 1024)
	server := rangeServer(t, data)
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Download(context.Background(), server.URL, dest, Options{
		Workers:   4,
		ChunkSize: 100 * 1024,
		HTTP:      fastHTTP(),
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("downloaded file differs from source (%d vs %d bytes)", len(got), len(data))
	}
}

func TestDownloadCreatesParentDir(t *testing.T) {
	data := testData(1024)
	server := rangeServer(t, data)
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "dirs", "out.bin")
	err := Download(context.Background(), server.URL, dest, Options{
		ChunkSize: 512,
		HTTP:      fastHTTP(),
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("downloaded file differs from source")
	}
}

func TestDownloadUnknownSize(t *testing.T) {
	data := testData(64 * 1024)

	// No Content-Length on HEAD: the whole resource comes down in one GET.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		if r.Header.Get("Range") != "" {
			t.Errorf("unexpected range request %q for unknown-size resource", r.Header.Get("Range"))
		}
		w.Write(data)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Download(context.Background(), server.URL, dest, Options{
		ChunkSize: 16 * 1024,
		HTTP:      fastHTTP(),
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("downloaded file differs from source")
	}
}

func TestDownloadChunkFailure(t *testing.T) {
	data := testData(4 * 1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		// Fail the second chunk every time
		if strings.HasPrefix(r.Header.Get("Range"), "bytes=1024-") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		rangeHeader := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
		parts := strings.SplitN(rangeHeader, "-", 2)
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end, _ := strconv.ParseInt(parts[1], 10, 64)
		w.Header().Set("Content-Range", "bytes "+rangeHeader+"/"+strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Download(context.Background(), server.URL, dest, Options{
		Workers:   2,
		ChunkSize: 1024,
		HTTP:      fastHTTP(),
	})
	if err == nil {
		t.Fatal("expected download error, got nil")
	}
	if !strings.Contains(err.Error(), "chunk 1") {
		t.Errorf("expected failing chunk in error, got %v", err)
	}
}

func TestDownloadRejectsNonRangeServer(t *testing.T) {
	data := testData(4 * 1024)

	// Reports a size but ignores Range headers, answering 200 with the
	// full body. Every chunk must fail rather than corrupt the file.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	err := Download(context.Background(), server.URL, dest, Options{
		ChunkSize: 1024,
		HTTP:      fastHTTP(),
	})
	if err == nil {
		t.Fatal("expected download error, got nil")
	}
}
