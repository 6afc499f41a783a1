package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal workspace directory.
	KilnDirName = ".kiln"

	// CacheFileName is the name of the persisted compilation cache document.
	CacheFileName = "cache.json"

	// JournalFileName is the name of the build journal database.
	JournalFileName = "journal.db"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "kiln.yaml"

	// EnvFileName is the name of the optional dotenv file next to kiln.yaml.
	EnvFileName = ".env"

	// AmbientDeclarationsFile is the synthetic declarations file injected into type-check hosts.
	AmbientDeclarationsFile = "__kiln_ambient.d.ts"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultKilnPath returns the metadata directory under the project root.
func DefaultKilnPath(root string) string {
	return filepath.Join(root, KilnDirName)
}

// DefaultCachePath returns the default location of the persisted cache.
// It joins root, .kiln and cache.json.
func DefaultCachePath(root string) string {
	return filepath.Join(root, KilnDirName, CacheFileName)
}

// DefaultJournalPath returns the default location of the build journal.
// It joins root, .kiln and journal.db.
func DefaultJournalPath(root string) string {
	return filepath.Join(root, KilnDirName, JournalFileName)
}
