package objects

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/utils"
)

// Represents commit author/committer
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>",
		a.Name,
		a.Email)
}

// Represents a snapshot of the repository
type Commit struct {
	hash         string
	treeHash     string
	parentHashes []string
	author       Author
	committer    Author
	message      string
}

// NewCommit builds a commit pointing at treeHash with zero or more parents.
// Parent order is preserved: the first parent is the primary one. The
// constructor is pure - nothing is read from or written to any store.
func NewCommit(treeHash string, parentHashes []string, message string, author Author) (*Commit, error) {

	parents := make([]string, len(parentHashes))
	copy(parents, parentHashes)

	content := buildCommitContent(treeHash, parents, message, author, author)
	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %v", err)
	}

	committer := author

	return &Commit{
		hash:         hash,
		treeHash:     treeHash,
		parentHashes: parents,
		author:       author,
		committer:    committer,
		message:      message,
	}, nil
}

func NewInitialCommit(treeHash, message string, author Author) (*Commit, error) {
	return NewCommit(treeHash, nil, message, author)
}

// WriteCommit persists the commit after validating that everything it
// references actually exists. Commits must never point at objects the store
// does not hold: a missing tree is ErrDanglingTree, a missing parent is
// ErrDanglingParent.
func WriteCommit(store *ObjectStore, commit *Commit) (string, error) {
	if !store.Exists(commit.treeHash) {
		return "", fmt.Errorf("%w: tree %s", ErrDanglingTree, commit.treeHash)
	}

	for _, parentHash := range commit.parentHashes {
		if !store.Exists(parentHash) {
			return "", fmt.Errorf("%w: parent %s", ErrDanglingParent, parentHash)
		}
	}

	return store.Put(utils.CommitObjectType, commit.Content())
}

// ParseCommit decodes a commit payload. The tree line is mandatory and its
// absence is ErrMalformedObject; parent, author and committer lines may
// appear in any order before the blank line that starts the message.
func ParseCommit(content []byte) (*Commit, error) {
	headers, message, _ := strings.Cut(string(content), "\n\n")

	var treeHash string
	var parentHashes []string
	var author, committer Author

	for line := range strings.Lines(headers) {
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			treeHash = strings.TrimPrefix(line, constants.CommitTreePrefix)
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			parentHashes = append(parentHashes, strings.TrimPrefix(line, constants.CommitParentPrefix))
		case strings.HasPrefix(line, constants.CommitAuthorPrefix):
			author = parseAuthorLine(strings.TrimPrefix(line, constants.CommitAuthorPrefix))
		case strings.HasPrefix(line, constants.CommitCommitterPrefix):
			committer = parseAuthorLine(strings.TrimPrefix(line, constants.CommitCommitterPrefix))
		}
	}

	if treeHash == "" {
		return nil, fmt.Errorf("%w: commit has no tree line", ErrMalformedObject)
	}

	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %v", err)
	}

	return &Commit{
		hash:         hash,
		treeHash:     treeHash,
		parentHashes: parentHashes,
		author:       author,
		committer:    committer,
		message:      message,
	}, nil
}

// parseAuthorLine splits "<name> <email> <unix-seconds> <±HHMM>".
// Identity lines from foreign commits are treated as opaque where they do
// not follow the canonical shape; the name is kept and the rest left zero.
func parseAuthorLine(line string) Author {
	openIdx := strings.IndexByte(line, '<')
	closeIdx := strings.IndexByte(line, '>')
	if openIdx == -1 || closeIdx == -1 || closeIdx < openIdx {
		return Author{Name: line}
	}

	author := Author{
		Name:  strings.TrimSpace(line[:openIdx]),
		Email: line[openIdx+1 : closeIdx],
	}

	fields := strings.Fields(line[closeIdx+1:])
	if len(fields) >= 1 {
		var seconds int64
		if _, err := fmt.Sscanf(fields[0], "%d", &seconds); err == nil {
			author.Timestamp = time.Unix(seconds, 0)
			if len(fields) >= 2 {
				if zone, ok := parseTimezone(fields[1]); ok {
					author.Timestamp = author.Timestamp.In(zone)
				}
			}
		}
	}

	return author
}

// parseTimezone decodes a ±HHMM offset so re-encoded identity lines keep the
// original timezone instead of the local one.
func parseTimezone(field string) (*time.Location, bool) {
	if len(field) != 5 || (field[0] != '+' && field[0] != '-') {
		return nil, false
	}

	var hours, minutes int
	if _, err := fmt.Sscanf(field[1:], "%2d%2d", &hours, &minutes); err != nil {
		return nil, false
	}

	offset := hours*constants.SecondsPerHour + minutes*constants.SecondsPerMinute
	if field[0] == '-' {
		offset = -offset
	}

	return time.FixedZone(field, offset), true
}

func buildCommitContent(treeHash string, parentHashes []string, message string, author, committer Author) []byte {
	var buf bytes.Buffer

	// Tree reference
	fmt.Fprintf(&buf, "tree %s\n", treeHash)

	// Parent references, primary parent first
	for _, parentHash := range parentHashes {
		fmt.Fprintf(&buf, "parent %s\n", parentHash)
	}

	// Author and committer serialize independently: parsed foreign commits
	// keep their original committer identity
	fmt.Fprintf(&buf, "author %s\n", formatAuthorLine(author))

	fmt.Fprintf(&buf, "committer %s\n", formatAuthorLine(committer))

	// Blank line before message
	buf.WriteByte('\n')

	// Commit message
	buf.WriteString(message)

	// Ensure message ends in newLine
	if len(message) > 0 && message[len(message)-1] != '\n' {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func formatAuthorLine(identity Author) string {
	_, timeZoneOffset := identity.Timestamp.Zone()
	timezone := calculateTimezone(timeZoneOffset)
	return fmt.Sprintf("%s <%s> %d %s", identity.Name, identity.Email, identity.Timestamp.Unix(), timezone)
}

func calculateTimezone(offset int) string {
	// offset is in seconds, convert to ±HHMM format
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute

	if minutes < 0 {
		minutes = -minutes
	}

	return fmt.Sprintf("%+03d%02d", hours, minutes)
}

func (c *Commit) Hash() string {
	return c.hash
}

func (c *Commit) TreeHash() string {
	return c.treeHash
}

// ParentHashes returns the parent list in insertion order.
func (c *Commit) ParentHashes() []string {
	return c.parentHashes
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	return buildCommitContent(c.treeHash, c.parentHashes, c.message, c.author, c.committer)
}

func (c *Commit) Size() int {
	return len(c.Content())
}

func (c *Commit) Data() []byte {
	return EncodeObject(utils.CommitObjectType, c.Content())
}

func (c *Commit) IsInitialCommit() bool {
	return len(c.parentHashes) == 0
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parents: %v, author: %s, message: %q}",
		c.hash, c.treeHash, c.parentHashes, c.author.String(), c.message)
}
