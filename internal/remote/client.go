package remote

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KostasZigo/gitgo/internal/constants"
)

// Refs is the result of ref discovery against a remote.
type Refs struct {
	// ByName maps advertised ref names (refs/heads/main, refs/tags/v1...)
	// to hex object hashes.
	ByName map[string]string

	// Head is the hash the remote advertises for HEAD - the commit a fresh
	// clone checks out.
	Head string
}

// Client speaks the smart-HTTP transfer protocol: one GET for ref
// discovery, one POST for pack retrieval. Both exchanges are single
// blocking request/response round trips over fully buffered bodies.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: http.DefaultClient}
}

const (
	zeroHash = "0000000000000000000000000000000000000000"

	// capabilitiesRef is the placeholder ref an empty repository advertises.
	capabilitiesRef = "capabilities^{}"
)

// DiscoverRefs asks the remote for its ref advertisement.
// Transport failures are ErrRemoteUnreachable, an unparsable advertisement
// is ErrProtocolError and a repository with nothing to clone is
// ErrEmptyRepository.
func (c *Client) DiscoverRefs(remoteURL string) (*Refs, error) {
	url := strings.TrimSuffix(remoteURL, "/") + constants.InfoRefsPath + "?service=" + constants.UploadPackService

	response, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ref discovery returned status %d", ErrRemoteUnreachable, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ref advertisement: %v", ErrRemoteUnreachable, err)
	}

	refs, err := parseRefAdvertisement(body)
	if err != nil {
		return nil, err
	}

	slog.Debug("Discovered remote refs",
		"url", remoteURL,
		"refs", len(refs.ByName),
		"head", refs.Head)

	return refs, nil
}

// parseRefAdvertisement decodes the pkt-line ref listing.
// Lines before the first flush are service announcements ("# service=...")
// and skipped; each following data line reads "<40-hex> <refname>", with
// the first one optionally carrying a NUL-separated capability list.
func parseRefAdvertisement(body []byte) (*Refs, error) {
	refs := &Refs{ByName: make(map[string]string)}
	reader := newPktReader(body)

	for {
		payload, kind, err := reader.next()
		if err != nil {
			return nil, err
		}
		if kind == pktEnd {
			break
		}
		if kind != pktData {
			continue
		}

		line := strings.TrimSuffix(string(payload), "\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Capabilities trail the first ref line after a NUL
		line, _, _ = strings.Cut(line, "\x00")

		hash, refName, found := strings.Cut(line, " ")
		if !found {
			return nil, fmt.Errorf("%w: ref line %q has no name", ErrProtocolError, line)
		}
		if len(hash) != constants.HashStringLength {
			return nil, fmt.Errorf("%w: ref line %q has no valid hash", ErrProtocolError, line)
		}

		// An empty repository advertises a zero-id capabilities^{} line
		if refName == capabilitiesRef || hash == zeroHash {
			continue
		}
		// Peeled tag entries duplicate the tag ref
		if strings.HasSuffix(refName, "^{}") {
			continue
		}

		if refName == constants.Head {
			refs.Head = hash
			continue
		}
		refs.ByName[refName] = hash
	}

	if len(refs.ByName) == 0 && refs.Head == "" {
		return nil, ErrEmptyRepository
	}

	return refs, nil
}

// FetchPack requests the objects reachable from the wanted hashes and
// returns the raw packfile bytes, side-band framing stripped.
func (c *Client) FetchPack(remoteURL string, wants []string) ([]byte, error) {
	url := strings.TrimSuffix(remoteURL, "/") + "/" + constants.UploadPackService

	request, err := http.NewRequest(http.MethodPost, url, strings.NewReader(buildFetchRequest(wants)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	request.Header.Set("Git-Protocol", "version=2")
	request.Header.Set("Content-Type", "application/x-git-upload-pack-request")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: pack fetch returned status %d", ErrRemoteUnreachable, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pack response: %v", ErrRemoteUnreachable, err)
	}

	return parseFetchResponse(body)
}

// buildFetchRequest assembles the protocol v2 fetch command body: the
// command and no-progress preamble, one want line per hash, then done.
func buildFetchRequest(wants []string) string {
	var request strings.Builder

	request.WriteString(formatPktLine("command=fetch"))
	request.WriteString("0001")
	request.WriteString(formatPktLine("no-progress"))
	for _, want := range wants {
		request.WriteString(formatPktLine("want " + want + "\n"))
	}
	request.WriteString(formatPktLine("done\n"))
	request.WriteString("0000")

	return request.String()
}

// Side-band stream codes inside the packfile section.
const (
	bandPackData = 1
	bandProgress = 2
	bandFatal    = 3
)

// parseFetchResponse demultiplexes the fetch response: pkt-lines up to the
// "packfile" section header, then side-band data lines whose code-1
// payloads concatenate into the pack stream.
func parseFetchResponse(body []byte) ([]byte, error) {
	var pack bytes.Buffer
	reader := newPktReader(body)
	inPackSection := false

	for {
		payload, kind, err := reader.next()
		if err != nil {
			return nil, err
		}
		if kind == pktEnd {
			break
		}
		if kind != pktData {
			continue
		}

		if !inPackSection {
			if strings.TrimSuffix(string(payload), "\n") == "packfile" {
				inPackSection = true
			}
			continue
		}

		if len(payload) == 0 {
			return nil, fmt.Errorf("%w: empty side-band line in packfile section", ErrProtocolError)
		}

		switch payload[0] {
		case bandPackData:
			pack.Write(payload[1:])
		case bandProgress:
			// no-progress was requested; tolerate and drop
		case bandFatal:
			return nil, fmt.Errorf("%w: remote error: %s", ErrProtocolError, bytes.TrimSpace(payload[1:]))
		default:
			return nil, fmt.Errorf("%w: unknown side-band code %d", ErrProtocolError, payload[0])
		}
	}

	if !inPackSection {
		return nil, fmt.Errorf("%w: fetch response has no packfile section", ErrProtocolError)
	}

	return pack.Bytes(), nil
}
