package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
	LsTreeCmdName     = "ls-tree"
	WriteTreeCmdName  = "write-tree"
	CommitTreeCmdName = "commit-tree"
	CloneCmdName      = "clone"
)

// Repository directory and file names define the gitgo metadata structure.
const (
	// Gitgo is the repository metadata directory.
	Gitgo = ".gitgo"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: refs/heads/"
)

// Default commit author identity, overridable through the environment.
const (
	AuthorNameEnvVar  = "GITGO_AUTHOR_NAME"
	AuthorEmailEnvVar = "GITGO_AUTHOR_EMAIL"

	DefaultAuthorName  = "gitgo"
	DefaultAuthorEmail = "gitgo@localhost"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ExecPerms is used for checked-out files whose tree entry carries the
	// executable mode.
	ExecPerms os.FileMode = 0755
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Object type prefixes used in object headers and commit metadata.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "

	// CommitCommitterPrefix marks committer metadata in commit objects.
	CommitCommitterPrefix = "committer "
)

// Object format constants.
const (
	// NullByte separates header from content in objects.
	NullByte = '\x00'
)

// Packfile format constants.
const (
	// PackMagic opens every packfile.
	PackMagic = "PACK"

	// PackVersion is the only supported pack stream version.
	PackVersion = 2

	// PackHeaderLength covers magic, version and entry count.
	PackHeaderLength = 12
)

// Smart-HTTP protocol constants.
const (
	// UploadPackService is the ref-advertisement service name.
	UploadPackService = "git-upload-pack"

	// InfoRefsPath is the ref-discovery endpoint relative to the remote URL.
	InfoRefsPath = "/info/refs"
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
