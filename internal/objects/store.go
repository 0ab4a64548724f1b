package objects

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"github.com/KostasZigo/gitgo/internal/constants"
	"github.com/KostasZigo/gitgo/utils"
)

var objectsRelativeFilePath string = filepath.Join(constants.Gitgo, constants.Objects)

// ObjectStore manages content-addressed storage of GitGo objects.
// Objects live under .gitgo/objects/<first 2 hash chars>/<remaining 38>,
// zlib-compressed. The store holds at most one physical copy per address
// and is an explicit handle: nothing here touches global state, so tests
// can run several stores side by side.
type ObjectStore struct {
	repoPath string // Path to repository root
}

func NewObjectStore(repoPath string) *ObjectStore {
	return &ObjectStore{
		repoPath: repoPath,
	}
}

// Put persists content under its computed address and returns that address.
// Writing the same content twice is not an error: the existing object is
// left untouched and its address returned, which is what makes retried
// clones and duplicate pack entries safe.
func (store *ObjectStore) Put(objectType utils.ObjectType, content []byte) (string, error) {
	hash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return "", err
	}

	objectFile := store.objectPath(hash)

	_, err = os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}
	if !(errors.Is(err, fs.ErrNotExist)) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(objectFile), constants.DirPerms); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	compressedData, err := compressData(EncodeObject(objectType, content))
	if err != nil {
		return "", fmt.Errorf("failed to compress object: %w", err)
	}

	// Write to a temp file and rename so an interrupted write never leaves
	// a truncated object under its content address
	tempFile, err := os.CreateTemp(filepath.Dir(objectFile), "tmp-object-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp object file: %w", err)
	}

	if _, err := tempFile.Write(compressedData); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write object file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	if err := os.Chmod(tempFile.Name(), constants.FilePerms); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write object file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), objectFile); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	return hash, nil
}

// Store saves any GitGo object. Convenience wrapper over Put for the
// typed object values produced by the builders.
func (store *ObjectStore) Store(object Object) error {
	objectType, content, err := ParseObject(object.Data())
	if err != nil {
		return err
	}

	hash, err := store.Put(objectType, content)
	if err != nil {
		return err
	}

	if hash != object.Hash() {
		return fmt.Errorf("%w: object reports hash %s, content hashes to %s", ErrIntegrity, object.Hash(), hash)
	}
	return nil
}

// Read retrieves an object by address. A missing object is
// ErrObjectNotFound. The content hash is recomputed on every read and
// compared against the address the object is filed under; any mismatch -
// including an undecompressable file - is ErrIntegrity.
func (store *ObjectStore) Read(hash string) (utils.ObjectType, []byte, error) {
	objectFile := store.objectPath(hash)

	compressedData, err := os.ReadFile(objectFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
		}
		return "", nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}

	data, err := decompressData(compressedData)
	if err != nil {
		return "", nil, fmt.Errorf("%w: object %s does not decompress: %v", ErrIntegrity, hash, err)
	}

	objectType, content, err := ParseObject(data)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w", hash, err)
	}

	actualHash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return "", nil, err
	}
	if actualHash != hash {
		return "", nil, fmt.Errorf("%w: stored as %s, content hashes to %s", ErrIntegrity, hash, actualHash)
	}

	return objectType, content, nil
}

// ReadBlob retrieves a blob object by address.
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	objectType, content, err := store.Read(hash)
	if err != nil {
		return nil, err
	}
	if objectType != utils.BlobObjectType {
		return nil, fmt.Errorf("object %s is a %s, not a blob", hash, objectType)
	}
	return NewBlob(content), nil
}

// Exists checks if an object exists in storage
func (s *ObjectStore) Exists(hash string) bool {
	_, err := os.Stat(s.objectPath(hash))
	return !(errors.Is(err, fs.ErrNotExist))
}

func (store *ObjectStore) objectPath(hash string) string {
	prefix := hash[:constants.HashDirPrefixLength]
	rest := hash[constants.HashDirPrefixLength:]
	return filepath.Join(store.repoPath, objectsRelativeFilePath, prefix, rest)
}

func compressData(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	// Close flushes any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func decompressData(compressedData []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buffer bytes.Buffer
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
