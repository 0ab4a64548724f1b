package testutils

import (
	"fmt"
	"net/http"

	"github.com/KostasZigo/gitgo/internal/constants"
)

// MockRemote serves the two smart-HTTP endpoints a clone touches: the ref
// advertisement and the pack fetch. Enough protocol for tests, nothing more.
type MockRemote struct {
	// Head is the hash advertised for HEAD; empty means no HEAD line.
	Head string

	// Refs maps ref names to hashes. An empty map advertises an empty
	// repository.
	Refs map[string]string

	// Pack is the raw packfile returned for any fetch request.
	Pack []byte
}

// Handler returns the http.Handler for httptest.NewServer.
func (m *MockRemote) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.InfoRefsPath, m.serveRefs)
	mux.HandleFunc("POST /"+constants.UploadPackService, m.servePack)
	return mux
}

func (m *MockRemote) serveRefs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")

	fmt.Fprint(w, pktLine("# service="+constants.UploadPackService+"\n"))
	fmt.Fprint(w, "0000")

	first := true
	writeRef := func(hash, name string) {
		line := hash + " " + name
		if first {
			// Capability list trails the first ref after a NUL
			line += "\x00side-band-64k"
			first = false
		}
		fmt.Fprint(w, pktLine(line+"\n"))
	}

	if m.Head != "" {
		writeRef(m.Head, constants.Head)
	}
	for name, hash := range m.Refs {
		writeRef(hash, name)
	}

	fmt.Fprint(w, "0000")
}

func (m *MockRemote) servePack(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-git-upload-pack-result")

	fmt.Fprint(w, pktLine("packfile\n"))

	// Side-band data lines, band code 1, chunked
	const chunkSize = 8192
	for start := 0; start < len(m.Pack); start += chunkSize {
		end := min(start+chunkSize, len(m.Pack))
		fmt.Fprint(w, pktLine("\x01"+string(m.Pack[start:end])))
	}

	fmt.Fprint(w, "0000")
}

// pktLine frames one payload with the 4-hex-digit length prefix.
func pktLine(payload string) string {
	return fmt.Sprintf("%04x%s", len(payload)+4, payload)
}
